package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/domino"
)

// DOTOptions configures chain diagram generation.
type DOTOptions struct {
	// Detailed adds the chain position to each tile label and the matched
	// pip to each connection. When false, tiles show their faces only.
	Detailed bool
}

// ToDOT converts a board to Graphviz DOT format for chain visualization.
// Each tile becomes a record node with one cell per face, connected in
// chain order. The resulting DOT string can be rendered with
// [RenderDOTSVG] or [RenderDOTPNG].
//
// Doubles render with grey fill to mark the spinner tiles.
func ToDOT(b board.Board, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph chain {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=filled, fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for i, t := range b.Tiles {
		label := fmtTileLabel(t, i, opts.Detailed)
		attrs := fmtTileAttrs(t, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", t.Key(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := 0; i+1 < len(b.Tiles); i++ {
		from, to := b.Tiles[i], b.Tiles[i+1]
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", from.Key(), to.Key(), strconv.Itoa(from.Right))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", from.Key(), to.Key())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtTileLabel(t domino.Domino, index int, detailed bool) string {
	label := fmt.Sprintf("%d|%d", t.Left, t.Right)
	if detailed {
		label += fmt.Sprintf("|#%d", index)
	}
	return label
}

func fmtTileAttrs(t domino.Domino, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if t.IsDouble() {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderDOTSVG renders a DOT chain diagram to SVG using Graphviz.
// Returns the SVG bytes ready for display or conversion with [ToPNG].
func RenderDOTSVG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.SVG)
}

// RenderDOTPNG renders a DOT chain diagram straight to PNG using the
// in-process Graphviz rasterizer. No external tools required.
func RenderDOTPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
