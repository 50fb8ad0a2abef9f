// Package layout computes pixel placements for a growing domino chain
// inside a bounded canvas.
//
// # Overview
//
// The chain layout engine is a deterministic incremental automaton. It
// consumes the ordered sequence of played tiles plus the current viewport
// geometry and produces one placement per tile, the two chain endpoints,
// and a uniform scale factor. Placements are stable: once a tile has been
// positioned, every later call returns the identical placement until the
// viewport geometry changes or a new round begins. This is the contract
// renderers depend on to avoid visual jitter as tiles are appended.
//
// # Architecture
//
// The engine owns a layout cache keyed by unordered tile identity, plus two
// independent arm state machines, one per growing end of the chain. Each
// recomputation detects the one or two endpoint tiles not yet in cache and
// advances the matching arm exactly once per new tile:
//
//	sequence + viewport → [scale resolver] → [arm machine] → placements
//
// Arms travel in compass directions and turn when a run reaches its limit:
// horizontal runs turn after TilesPerRow tiles, vertical runs after
// TilesPerColumn. Horizontal runs always turn south; vertical runs turn
// east or west following the arm's persisted bias, so the chain snakes
// downward through the canvas without doubling back.
//
// # Geometry
//
// All positions are top-left pixel coordinates. A non-double tile lies with
// its long edge along the direction of travel; a double stands
// perpendicular, except when it is itself the corner tile of a turn, in
// which case it aligns with the post-turn direction to bridge the two run
// segments. The corner connection point shifts by a quarter of the previous
// tile's length toward the edge being left, or by half for a double, whose
// symmetric face makes the full center the visual pivot.
//
// # Usage
//
// The host owns one Engine per round and calls Recompute after every
// append and on every viewport change:
//
//	eng := layout.NewEngine(layout.Config{})
//	res := eng.Recompute(board, layout.Viewport{Width: 800, Height: 600})
//	for _, p := range res.Placements {
//	    draw(p)
//	}
//
// The engine is a pure synchronous state machine with no I/O and no
// locking; an instance must not be shared across goroutines.
//
// # Row Wrapping
//
// The package also ships a much simpler stateless row-wrapping layout
// ([WrapRows]) used for hand trays: tiles fill rows greedily, alternate
// rows reverse their scan direction, and the last tile of every non-final
// row becomes a rotated corner.
package layout
