package pipeline

import (
	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/domino"
	"github.com/capicuhq/capicu/pkg/layout"
)

// ComputeLayout runs the chain layout engine over the board for the
// configured viewport. The engine is one-shot here; the server keeps a
// long-lived engine per round instead.
func ComputeLayout(b board.Board, opts Options) layout.Result {
	engine := layout.NewEngine(opts.EngineConfig())
	vp := layout.Viewport{Width: opts.Width, Height: opts.Height}
	return engine.Recompute(b.Tiles, vp)
}

// BoardFromResult reconstructs the chain from placement order, for render
// paths that start from a serialized layout instead of a board.
func BoardFromResult(res layout.Result) board.Board {
	tiles := make([]domino.Domino, len(res.Placements))
	for i, p := range res.Placements {
		tiles[i] = p.Tile
	}
	return board.New(tiles...)
}
