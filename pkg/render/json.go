package render

import (
	"encoding/json"

	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	board *board.Board
	style string
}

// WithJSONBoard attaches the source board so the output records the chain
// in shorthand notation. Without this the document carries geometry only.
func WithJSONBoard(b board.Board) JSONOption {
	return func(r *jsonRenderer) { r.board = &b }
}

// WithJSONStyle records the palette name (e.g. "classic", "midnight") in
// the output for round-trip rendering.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

type jsonOutput struct {
	Board      string             `json:"board,omitempty"`
	Style      string             `json:"style,omitempty"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Scale      float64            `json:"scale"`
	Tiles      int                `json:"tiles"`
	Placements []layout.Placement `json:"placements"`
	LeftEnd    layout.Endpoint    `json:"left_end"`
	RightEnd   layout.Endpoint    `json:"right_end"`
}

// RenderJSON exports the layout as a pretty-printed JSON document. This is
// the primary data interchange format, enabling:
//
//   - Live board state for the web client
//   - Caching computed layouts for fast re-rendering
//   - Round-trip rendering (re-import and render identically)
//
// The document includes placements in chain order, both open endpoints,
// canvas geometry, and the render options needed to reproduce the visual.
// RenderJSON returns an error only if JSON marshaling fails. It does not
// modify res and is safe to call concurrently.
func RenderJSON(res layout.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := canvasSize(res)
	out := jsonOutput{
		Style:      r.style,
		Width:      w,
		Height:     h,
		Scale:      res.Scale,
		Tiles:      len(res.Placements),
		Placements: res.Placements,
		LeftEnd:    res.LeftEnd,
		RightEnd:   res.RightEnd,
	}
	if r.board != nil {
		out.Board = r.board.String()
	}

	return json.MarshalIndent(out, "", "  ")
}
