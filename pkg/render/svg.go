package render

import (
	"bytes"
	"fmt"

	"github.com/capicuhq/capicu/pkg/layout"
)

const tileInteractionCSS = `
    .tile-body { transition: stroke-width 0.15s ease; }
    .tile.highlight .tile-body { stroke-width: 3; }`

const tileInteractionJS = `
    document.querySelectorAll('.tile').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

const (
	// defaultFrame* size the canvas when the layout carries no bounds.
	defaultFrameWidth  = 640.0
	defaultFrameHeight = 360.0

	// tileCornerRatio rounds the tile body corners relative to the short
	// edge.
	tileCornerRatio = 0.18

	endpointRingRadius = 6.0
	endpointNudge      = 16.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette   Palette
	table     bool
	endpoints bool
}

// WithPalette selects the color scheme. Default is [Classic].
func WithPalette(p Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithTable draws the table surface behind the tiles. Without it the
// background stays transparent for embedding.
func WithTable() SVGOption { return func(r *svgRenderer) { r.table = true } }

// WithEndpoints marks the open chain ends with dashed rings and their pip
// values, the hint the play-target UI shows.
func WithEndpoints() SVGOption { return func(r *svgRenderer) { r.endpoints = true } }

// RenderSVG draws the layout as an interactive SVG document. Tiles render
// in chain order with pip dots, center dividers, and flip transforms; a
// hover style highlights the tile under the cursor.
func RenderSVG(res layout.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := canvasSize(res)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)

	if r.table {
		renderTable(&buf, w, h, r.palette)
	}
	for _, p := range res.Placements {
		renderTile(&buf, p, r.palette)
	}
	if r.endpoints {
		renderEndpoint(&buf, res.LeftEnd, "left", r.palette)
		renderEndpoint(&buf, res.RightEnd, "right", r.palette)
	}
	renderTileInteraction(&buf)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{palette: Classic()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// canvasSize derives the SVG canvas from the layout bounds, falling back
// to a fixed frame for degenerate results.
func canvasSize(res layout.Result) (w, h float64) {
	w = res.Bounds.MaxX - res.Bounds.MinX
	h = res.Bounds.MaxY - res.Bounds.MinY
	if w <= 0 || h <= 0 {
		return defaultFrameWidth, defaultFrameHeight
	}
	return w, h
}

func renderTable(buf *bytes.Buffer, w, h float64, pal Palette) {
	fmt.Fprintf(buf, `  <rect class="table" x="0" y="0" width="%.1f" height="%.1f" rx="12" fill="%s"/>`+"\n",
		w, h, pal.Table)
}

func renderTile(buf *bytes.Buffer, p layout.Placement, pal Palette) {
	fmt.Fprintf(buf, `  <g id="tile-%s" class="%s"`, p.Tile.Key(), tileClass(p))
	if p.Flip {
		fmt.Fprintf(buf, ` transform="rotate(180 %.1f %.1f)"`, p.CenterX(), p.CenterY())
	}
	buf.WriteString(">\n")

	short := min(p.Width, p.Height)
	fmt.Fprintf(buf, `    <rect class="tile-body" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		p.X, p.Y, p.Width, p.Height, short*tileCornerRatio, pal.TileFill, pal.TileStroke)

	if p.Horizontal {
		renderHorizontalFaces(buf, p, short, pal)
	} else {
		renderVerticalFaces(buf, p, short, pal)
	}

	buf.WriteString("  </g>\n")
}

func tileClass(p layout.Placement) string {
	cls := "tile"
	if p.Double {
		cls += " double"
	}
	if p.Corner {
		cls += " corner"
	}
	return cls
}

// Chain order reads left to right on horizontal tiles: the Left face
// occupies the left half. Arms growing west get Flip from the engine,
// which rotates the whole group.
func renderHorizontalFaces(buf *bytes.Buffer, p layout.Placement, short float64, pal Palette) {
	mx := p.X + p.Width/2
	inset := short * dividerInsetRatio
	fmt.Fprintf(buf, `    <line class="tile-divider" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
		mx, p.Y+inset, mx, p.Y+p.Height-inset, pal.Divider)

	drawPips(buf, p.Tile.Left, p.X+p.Width/4, p.CenterY(), short, pal)
	drawPips(buf, p.Tile.Right, p.X+3*p.Width/4, p.CenterY(), short, pal)
}

// Vertical tiles read top to bottom: the Left face occupies the top half.
func renderVerticalFaces(buf *bytes.Buffer, p layout.Placement, short float64, pal Palette) {
	my := p.Y + p.Height/2
	inset := short * dividerInsetRatio
	fmt.Fprintf(buf, `    <line class="tile-divider" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
		p.X+inset, my, p.X+p.Width-inset, my, pal.Divider)

	drawPips(buf, p.Tile.Left, p.CenterX(), p.Y+p.Height/4, short, pal)
	drawPips(buf, p.Tile.Right, p.CenterX(), p.Y+3*p.Height/4, short, pal)
}

func drawPips(buf *bytes.Buffer, count int, cx, cy, side float64, pal Palette) {
	spread := side * pipSpreadRatio
	radius := side * pipRadiusRatio
	for _, off := range pipOffsets(count) {
		fmt.Fprintf(buf, `    <circle class="pip" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
			cx+off[0]*spread, cy+off[1]*spread, radius, pal.Pip)
	}
}

// renderEndpoint marks an open end: a dashed ring on the connection point
// and the pip value nudged outward along the growth direction.
func renderEndpoint(buf *bytes.Buffer, ep layout.Endpoint, side string, pal Palette) {
	if ep.PipValue == nil {
		return
	}

	fmt.Fprintf(buf, `  <g class="endpoint endpoint-%s">`+"\n", side)
	fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="3 2"/>`+"\n",
		ep.Position.X, ep.Position.Y, endpointRingRadius, pal.Endpoint)

	tx, ty := ep.Position.X, ep.Position.Y
	switch ep.GrowthDirection {
	case layout.East:
		tx += endpointNudge
	case layout.West:
		tx -= endpointNudge
	case layout.South:
		ty += endpointNudge
	case layout.North:
		ty -= endpointNudge
	}
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="12" fill="%s">%d</text>`+"\n",
		tx, ty, pal.Endpoint, *ep.PipValue)
	buf.WriteString("  </g>\n")
}

func renderTileInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", tileInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", tileInteractionJS)
}
