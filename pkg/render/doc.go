// Package render turns computed chain layouts into visual output formats.
//
// # Overview
//
// This package contains the sinks at the end of the rendering pipeline. A
// sink transforms a [layout.Result] (and optionally the [board.Board] it
// was computed from) into a final artifact:
//
//   - SVG: the table view with pip dots and hover highlighting
//   - JSON: layout data export for web clients and external tools
//   - DOT: the chain as a Graphviz node-link strip
//   - PNG: raster conversion of either SVG flavor
//
// # SVG Output
//
// [RenderSVG] draws each placement as a rounded tile with a center divider
// and pip dots, honoring orientation and flip transforms from the layout
// engine. Basic usage:
//
//	svg := render.RenderSVG(result,
//	    render.WithPalette(render.Midnight()),
//	    render.WithTable(),
//	    render.WithEndpoints(),
//	)
//
// Options:
//
//   - [WithPalette]: color scheme ([Classic] felt or [Midnight] slate)
//   - [WithTable]: draw the table surface behind the tiles
//   - [WithEndpoints]: mark the open ends with their pip values
//
// # JSON Output
//
// [RenderJSON] exports placements, endpoints, and canvas geometry as a
// pretty-printed document. This is the interchange format the web client
// consumes and the cache stores.
//
// # Chain Diagrams
//
// [ToDOT] produces Graphviz DOT source showing the chain as connected
// record nodes, one per tile. Render it in-process with [RenderDOTSVG] or
// [RenderDOTPNG], or save the source for external Graphviz tools.
//
//	dot := render.ToDOT(b, render.DOTOptions{})
//	svg, err := render.RenderDOTSVG(dot)
//
// # PNG Conversion
//
// DOT diagrams rasterize in-process via [RenderDOTPNG]. The hand-built
// table SVG converts through [ToPNG], which shells out to rsvg-convert
// (librsvg).
//
// [layout.Result]: github.com/capicuhq/capicu/pkg/layout.Result
// [board.Board]: github.com/capicuhq/capicu/pkg/board.Board
package render
