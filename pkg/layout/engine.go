package layout

import "github.com/capicuhq/capicu/pkg/domino"

// =============================================================================
// Layout Cache
// =============================================================================

// layoutCache memoizes placements and arm states for one round under one
// viewport geometry. Placements are inserted once and never mutated; the
// cache only grows until the fingerprint invalidates it.
type layoutCache struct {
	placements map[string]Placement
	left       armState
	right      armState
	print      fingerprint
}

// =============================================================================
// Engine
// =============================================================================

// Engine is the chain layout engine. The host owns one instance per active
// round and calls Recompute after every play and viewport change.
//
// Engine is not safe for concurrent use; recomputation and cache mutation
// happen atomically within a single call on the owner's goroutine.
type Engine struct {
	cfg   Config
	cache *layoutCache
}

// NewEngine creates an engine with the given configuration.
// Zero config fields take the package defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the engine's resolved configuration.
func (e *Engine) Config() Config { return e.cfg }

// Reset drops the layout cache. The next Recompute reseeds from scratch.
// Hosts call this between rounds; the engine also resets itself when the
// viewport geometry changes or the sequence shrinks back to a single tile.
func (e *Engine) Reset() { e.cache = nil }

// CacheSize returns the number of memoized placements.
func (e *Engine) CacheSize() int {
	if e.cache == nil {
		return 0
	}
	return len(e.cache.placements)
}

// Recompute computes placements for the current board under the current
// viewport. Tiles already in cache return their previous placement
// unchanged; at most the one or two new endpoint tiles are placed per
// call. The returned Result is a snapshot and safe to retain.
func (e *Engine) Recompute(board []domino.Domino, vp Viewport) Result {
	if len(board) == 0 || vp.IsZero() {
		return Result{
			Placements: []Placement{},
			LeftEnd:    Endpoint{},
			RightEnd:   Endpoint{},
			Scale:      1,
		}
	}

	geo := resolveGeometry(e.cfg, vp)

	if e.needsReset(board, vp, geo) {
		e.reseed(board, vp, geo)
	} else {
		e.advanceEnds(board, geo)
	}

	return e.assemble(board, vp, geo)
}

// needsReset reports whether the cache must be rebuilt: no cache yet, a
// material geometry change, or the sequence shrank back to one tile (a new
// round on the same engine).
func (e *Engine) needsReset(board []domino.Domino, vp Viewport, geo geometry) bool {
	if e.cache == nil {
		return true
	}
	if !e.cache.print.matches(vp, geo.scale) {
		return true
	}
	if len(board) != 1 {
		return false
	}
	// A single-tile sequence after the cache held more, or holding a tile
	// the cache has never seen, is a new round on the same engine.
	if len(e.cache.placements) > 1 {
		return true
	}
	_, ok := e.cache.placements[board[0].Key()]
	return !ok
}

// reseed builds a fresh cache: the first tile is centered in the canvas
// and both arms start at its west and east edge centers. Any further tiles
// already on the board (a geometry reset mid-round) are replayed through
// the right arm in chain order, producing a fresh snake from the leftmost
// tile.
func (e *Engine) reseed(board []domino.Domino, vp Viewport, geo geometry) {
	anchor := board[0]
	double := anchor.IsDouble()
	horizontal := !double
	w, h := geo.dims(horizontal)

	x := (vp.Width - w) / 2
	y := (vp.Height - h) / 2

	seed := Placement{
		Tile:       anchor,
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
		Horizontal: horizontal,
		Double:     double,
	}

	cache := &layoutCache{
		placements: map[string]Placement{anchor.Key(): seed},
		left: armState{
			cp:         Point{X: x, Y: y + h/2},
			direction:  West,
			lastW:      w,
			lastH:      h,
			lastDouble: double,
		},
		right: armState{
			cp:            Point{X: x + w, Y: y + h/2},
			direction:     East,
			goingPositive: true,
			lastW:         w,
			lastH:         h,
			lastDouble:    double,
		},
		print: fingerprint{width: vp.Width, height: vp.Height, scale: geo.scale},
	}

	for _, tile := range board[1:] {
		cache.placements[tile.Key()] = cache.right.place(tile, e.cfg, geo)
	}

	e.cache = cache
}

// advanceEnds places the endpoint tiles not yet in cache. Exactly one arm
// advances per newly observed tile; everything between the endpoints is
// already memoized.
func (e *Engine) advanceEnds(board []domino.Domino, geo geometry) {
	leftTile := board[0]
	if _, ok := e.cache.placements[leftTile.Key()]; !ok {
		e.cache.placements[leftTile.Key()] = e.cache.left.place(leftTile, e.cfg, geo)
	}

	rightTile := board[len(board)-1]
	if _, ok := e.cache.placements[rightTile.Key()]; !ok {
		e.cache.placements[rightTile.Key()] = e.cache.right.place(rightTile, e.cfg, geo)
	}
}

// assemble builds the snapshot result from the cache.
func (e *Engine) assemble(board []domino.Domino, vp Viewport, geo geometry) Result {
	placements := make([]Placement, len(board))
	for i, tile := range board {
		if p, ok := e.cache.placements[tile.Key()]; ok {
			placements[i] = p
		} else {
			placements[i] = e.fallbackPlacement(tile, i, geo)
		}
	}

	leftPip := board[0].Left
	rightPip := board[len(board)-1].Right

	return Result{
		Placements: placements,
		LeftEnd: Endpoint{
			Position:        e.cache.left.cp,
			GrowthDirection: e.cache.left.direction,
			PipValue:        &leftPip,
		},
		RightEnd: Endpoint{
			Position:        e.cache.right.cp,
			GrowthDirection: e.cache.right.direction,
			PipValue:        &rightPip,
		},
		Bounds: Bounds{MinX: 0, MaxX: vp.Width, MinY: 0, MaxY: vp.Height},
		Scale:  geo.scale,
	}
}

// fallbackPlacement guards against a caller skipping a recomputation step:
// a mid-sequence tile with no cached placement is positioned at a naive
// left-to-right offset so rendering stays non-fatal. The tile will look
// out of place, never crash.
func (e *Engine) fallbackPlacement(tile domino.Domino, index int, geo geometry) Placement {
	return Placement{
		Tile:       tile,
		X:          e.cfg.Padding + float64(index)*(geo.tileW+geo.gap),
		Y:          e.cfg.Padding,
		Width:      geo.tileW,
		Height:     geo.tileH,
		Horizontal: true,
		Double:     tile.IsDouble(),
	}
}
