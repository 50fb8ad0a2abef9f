package pipeline

import (
	"fmt"

	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/layout"
	"github.com/capicuhq/capicu/pkg/render"
)

// RenderArtifacts generates output artifacts in the requested formats.
// The board parameter feeds the DOT and JSON formats; when empty it is
// reconstructed from the placement order.
func RenderArtifacts(res layout.Result, b board.Board, opts Options) (map[string][]byte, error) {
	if b.Len() == 0 {
		b = BoardFromResult(res)
	}

	pal, ok := render.PaletteByName(opts.Style)
	if !ok {
		return nil, fmt.Errorf("invalid style: %q", opts.Style)
	}
	svgOpts := buildSVGOptions(pal, opts)

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(res, svgOpts...)
		case FormatPNG:
			data, err = render.ToPNG(render.RenderSVG(res, svgOpts...), opts.Scale)
		case FormatDOT:
			data = []byte(render.ToDOT(b, render.DOTOptions{Detailed: opts.Detailed}))
		case FormatJSON:
			data, err = render.RenderJSON(res,
				render.WithJSONBoard(b),
				render.WithJSONStyle(opts.Style))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions translates pipeline options into SVG renderer options.
func buildSVGOptions(pal render.Palette, opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithPalette(pal)}
	if opts.Table {
		svgOpts = append(svgOpts, render.WithTable())
	}
	if opts.Endpoints {
		svgOpts = append(svgOpts, render.WithEndpoints())
	}
	return svgOpts
}
