package layout

import (
	"reflect"
	"testing"

	"github.com/capicuhq/capicu/pkg/domino"
)

// board builds an ordered tile sequence from "L-R" notation.
func board(tiles ...string) []domino.Domino {
	out := make([]domino.Domino, len(tiles))
	for i, s := range tiles {
		out[i] = domino.MustParse(s)
	}
	return out
}

var testViewport = Viewport{Width: 800, Height: 600}

// At 800x600 with defaults: scale 1.5, tile 96x48, gap 6.

func TestRecomputeEmptyBoard(t *testing.T) {
	eng := NewEngine(Config{})
	res := eng.Recompute(nil, testViewport)

	if len(res.Placements) != 0 {
		t.Errorf("len(Placements) = %d, want 0", len(res.Placements))
	}
	if res.Scale != 1 {
		t.Errorf("Scale = %v, want 1", res.Scale)
	}
	if res.LeftEnd.PipValue != nil || res.RightEnd.PipValue != nil {
		t.Error("endpoint pip values should be nil for empty board")
	}
	if res.Bounds != (Bounds{}) {
		t.Errorf("Bounds = %+v, want zero", res.Bounds)
	}
}

func TestRecomputeZeroViewport(t *testing.T) {
	eng := NewEngine(Config{})
	res := eng.Recompute(board("6-4", "4-2"), Viewport{Width: 0, Height: 600})

	if len(res.Placements) != 0 {
		t.Errorf("len(Placements) = %d, want 0 regardless of board length", len(res.Placements))
	}
	if res.Scale != 1 {
		t.Errorf("Scale = %v, want 1", res.Scale)
	}
}

func TestCentering(t *testing.T) {
	eng := NewEngine(Config{})
	res := eng.Recompute(board("6-4"), testViewport)

	if len(res.Placements) != 1 {
		t.Fatalf("len(Placements) = %d, want 1", len(res.Placements))
	}

	p := res.Placements[0]
	if p.CenterX() != 400 || p.CenterY() != 300 {
		t.Errorf("tile center = (%v, %v), want (400, 300)", p.CenterX(), p.CenterY())
	}
	if !p.Horizontal {
		t.Error("non-double anchor should render horizontally")
	}
	if p.Width != 96 || p.Height != 48 {
		t.Errorf("tile dims = %vx%v, want 96x48", p.Width, p.Height)
	}
}

func TestIdempotence(t *testing.T) {
	eng := NewEngine(Config{})
	tiles := board("6-4", "4-2", "2-0")

	first := eng.Recompute(tiles, testViewport)
	second := eng.Recompute(tiles, testViewport)

	if !reflect.DeepEqual(first.Placements, second.Placements) {
		t.Error("placements changed between identical calls")
	}
	if !reflect.DeepEqual(first.LeftEnd, second.LeftEnd) {
		t.Error("left endpoint changed between identical calls")
	}
	if !reflect.DeepEqual(first.RightEnd, second.RightEnd) {
		t.Error("right endpoint changed between identical calls")
	}
}

func TestMonotonicCacheGrowth(t *testing.T) {
	eng := NewEngine(Config{})

	before := eng.Recompute(board("6-4"), testViewport)
	if eng.CacheSize() != 1 {
		t.Fatalf("CacheSize() = %d, want 1", eng.CacheSize())
	}

	after := eng.Recompute(board("6-4", "4-2"), testViewport)
	if eng.CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2", eng.CacheSize())
	}

	// The anchor's placement is untouched by the append.
	if !reflect.DeepEqual(before.Placements[0], after.Placements[0]) {
		t.Error("existing placement changed when a tile was appended")
	}

	// The untouched arm keeps its state.
	if !reflect.DeepEqual(before.LeftEnd.Position, after.LeftEnd.Position) {
		t.Error("left arm moved on a right-end append")
	}
}

func TestEndpointPips(t *testing.T) {
	eng := NewEngine(Config{})
	res := eng.Recompute(board("6-4", "4-2"), testViewport)

	if res.LeftEnd.PipValue == nil || *res.LeftEnd.PipValue != 6 {
		t.Errorf("LeftEnd.PipValue = %v, want 6", res.LeftEnd.PipValue)
	}
	if res.RightEnd.PipValue == nil || *res.RightEnd.PipValue != 2 {
		t.Errorf("RightEnd.PipValue = %v, want 2", res.RightEnd.PipValue)
	}
}

func TestSingleTileEndpoints(t *testing.T) {
	eng := NewEngine(Config{})
	res := eng.Recompute(board("6-4"), testViewport)

	if *res.LeftEnd.PipValue != 6 || *res.RightEnd.PipValue != 4 {
		t.Errorf("endpoints = %d/%d, want 6/4",
			*res.LeftEnd.PipValue, *res.RightEnd.PipValue)
	}
	if res.LeftEnd.GrowthDirection != West {
		t.Errorf("LeftEnd.GrowthDirection = %v, want west", res.LeftEnd.GrowthDirection)
	}
	if res.RightEnd.GrowthDirection != East {
		t.Errorf("RightEnd.GrowthDirection = %v, want east", res.RightEnd.GrowthDirection)
	}
}

// growRight replays a chain tile-by-tile the way a host would, appending
// each new tile on the right end.
func growRight(eng *Engine, tiles []domino.Domino, vp Viewport) Result {
	var res Result
	for i := range tiles {
		res = eng.Recompute(tiles[:i+1], vp)
	}
	return res
}

func TestTurnTrigger(t *testing.T) {
	eng := NewEngine(Config{})
	tiles := board("0-1", "1-2", "2-3", "3-4", "4-5", "5-6", "6-4")

	res := growRight(eng, tiles, testViewport)

	// Five tiles fill the eastward run; the sixth appended tile turns.
	for i := 1; i <= 5; i++ {
		if res.Placements[i].Corner {
			t.Errorf("Placements[%d].Corner = true, want false", i)
		}
		if !res.Placements[i].Horizontal {
			t.Errorf("Placements[%d].Horizontal = false, want true on the east run", i)
		}
	}

	corner := res.Placements[6]
	if !corner.Corner {
		t.Fatal("Placements[6].Corner = false, want true")
	}
	if corner.Horizontal {
		t.Error("corner tile should align with the southbound run")
	}
	if res.RightEnd.GrowthDirection != South {
		t.Errorf("RightEnd.GrowthDirection = %v, want south", res.RightEnd.GrowthDirection)
	}

	// Exact corner geometry: run ends with cp (958,300); the bridge shifts
	// a quarter tile back west and half a tile down.
	if corner.X != 910 || corner.Y != 330 {
		t.Errorf("corner at (%v, %v), want (910, 330)", corner.X, corner.Y)
	}
	if got := res.RightEnd.Position; got.X != 934 || got.Y != 426 {
		t.Errorf("RightEnd.Position = (%v, %v), want (934, 426)", got.X, got.Y)
	}
}

func TestRunLengthResetAfterTurn(t *testing.T) {
	eng := NewEngine(Config{})
	tiles := board("0-1", "1-2", "2-3", "3-4", "4-5", "5-6", "6-4", "4-1")

	res := growRight(eng, tiles, testViewport)

	// The tile after the corner continues the southbound run, no new turn.
	after := res.Placements[7]
	if after.Corner {
		t.Error("tile after corner marked corner; run length did not reset")
	}
	if res.RightEnd.GrowthDirection != South {
		t.Errorf("RightEnd.GrowthDirection = %v, want south", res.RightEnd.GrowthDirection)
	}
}

func TestDoubleOrientationMidRun(t *testing.T) {
	eng := NewEngine(Config{})

	// Double on a horizontal run renders perpendicular: vertical.
	res := growRight(eng, board("6-5", "5-5"), testViewport)
	p := res.Placements[1]
	if p.Horizontal {
		t.Error("double on an east run should render vertically")
	}
	if p.Corner {
		t.Error("mid-run double should not be a corner")
	}
	if p.Width != 48 || p.Height != 96 {
		t.Errorf("vertical double dims = %vx%v, want 48x96", p.Width, p.Height)
	}
}

func TestDoubleOrientationMidVerticalRun(t *testing.T) {
	eng := NewEngine(Config{})
	// Corner at index 6 starts the southbound run; the double at index 7
	// travels south and renders perpendicular: horizontal.
	tiles := board("0-1", "1-2", "2-3", "3-4", "4-5", "5-6", "6-4", "4-4")

	res := growRight(eng, tiles, testViewport)

	p := res.Placements[7]
	if !p.Horizontal {
		t.Error("double on a south run should render horizontally")
	}
	if p.Corner {
		t.Error("mid-run double should not be a corner")
	}
}

func TestDoubleAtCorner(t *testing.T) {
	eng := NewEngine(Config{})
	// The sixth appended tile is a double landing exactly on the turn: it
	// aligns with the post-turn southbound direction instead of standing
	// perpendicular to it.
	tiles := board("0-1", "1-2", "2-3", "3-4", "4-5", "5-6", "6-6")

	res := growRight(eng, tiles, testViewport)

	p := res.Placements[6]
	if !p.Corner {
		t.Fatal("Placements[6].Corner = false, want true")
	}
	if !p.Double {
		t.Fatal("Placements[6].Double = false, want true")
	}
	if p.Horizontal {
		t.Error("corner double should align with the southbound run (vertical)")
	}
}

func TestDoubleCornerBridgeOffset(t *testing.T) {
	eng := NewEngine(Config{})
	// The run ends on a double, so the corner bridge pivots on its full
	// center: half the rendered width instead of a quarter.
	tiles := board("0-1", "1-2", "2-3", "3-4", "4-5", "5-5", "5-3")

	res := growRight(eng, tiles, testViewport)

	corner := res.Placements[6]
	if !corner.Corner {
		t.Fatal("Placements[6].Corner = false, want true")
	}

	// cp after the vertical double at index 5: (910, 300), last tile
	// 48x96 double. Bridge: x -= 48*0.5 = 886; y += 96*0.5 = 348.
	// South placement: top-left = (886-24, 348+6) = (862, 354).
	if corner.X != 862 || corner.Y != 354 {
		t.Errorf("corner at (%v, %v), want (862, 354)", corner.X, corner.Y)
	}
}

func TestFlipOnLeftArm(t *testing.T) {
	eng := NewEngine(Config{})

	// Anchor first, then a double played on the left end: it renders
	// vertically on the west-biased arm and must flip 180°.
	eng.Recompute(board("6-5"), testViewport)
	res := eng.Recompute(board("6-6", "6-5"), testViewport)

	p := res.Placements[0]
	if p.Horizontal {
		t.Fatal("double on a west run should render vertically")
	}
	if !p.Flip {
		t.Error("vertical tile on the west-biased arm should flip")
	}

	// Same shape on the right arm does not flip.
	eng2 := NewEngine(Config{})
	eng2.Recompute(board("5-6"), testViewport)
	res2 := eng2.Recompute(board("5-6", "6-6"), testViewport)

	p2 := res2.Placements[1]
	if p2.Horizontal {
		t.Fatal("double on an east run should render vertically")
	}
	if p2.Flip {
		t.Error("vertical tile on the east-biased arm should not flip")
	}
}

func TestScaleBound(t *testing.T) {
	widths := []float64{10, 100, 384, 800, 2500, 10000}

	for _, w := range widths {
		eng := NewEngine(Config{})
		res := eng.Recompute(board("6-4"), Viewport{Width: w, Height: 600})
		if res.Scale <= 0 || res.Scale > MaxScale {
			t.Errorf("width %v: Scale = %v, want in (0, %v]", w, res.Scale, MaxScale)
		}
	}
}

func TestResizeResetsCache(t *testing.T) {
	eng := NewEngine(Config{})
	tiles := board("6-4", "4-2")

	eng.Recompute(tiles, testViewport)

	// Same scale cap applies at 700px, but the width change alone must
	// re-center the chain.
	res := eng.Recompute(tiles, Viewport{Width: 700, Height: 600})
	if got := res.Placements[0].CenterX(); got != 350 {
		t.Errorf("anchor CenterX after resize = %v, want 350", got)
	}
	if eng.CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2 after reseed replay", eng.CacheSize())
	}
}

func TestShrinkToSingleTileResets(t *testing.T) {
	eng := NewEngine(Config{})

	eng.Recompute(board("6-4", "4-2", "2-0"), testViewport)
	if eng.CacheSize() != 3 {
		t.Fatalf("CacheSize() = %d, want 3", eng.CacheSize())
	}

	// A new round starts with a fresh single anchor.
	res := eng.Recompute(board("3-3"), testViewport)
	if eng.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1 after new-round reset", eng.CacheSize())
	}

	p := res.Placements[0]
	if p.Horizontal {
		t.Error("double anchor should render vertically")
	}
	if p.CenterX() != 400 || p.CenterY() != 300 {
		t.Errorf("anchor center = (%v, %v), want (400, 300)", p.CenterX(), p.CenterY())
	}
}

func TestExplicitReset(t *testing.T) {
	eng := NewEngine(Config{})
	eng.Recompute(board("6-4", "4-2"), testViewport)

	eng.Reset()
	if eng.CacheSize() != 0 {
		t.Errorf("CacheSize() = %d after Reset, want 0", eng.CacheSize())
	}
}

func TestFallbackPlacement(t *testing.T) {
	eng := NewEngine(Config{})

	// Protocol violation: the host skips a recompute, so the mid-sequence
	// tile was never observed as an endpoint.
	eng.Recompute(board("0-1"), testViewport)
	res := eng.Recompute(board("0-1", "1-2", "2-3"), testViewport)

	p := res.Placements[1]
	wantX := 16 + float64(1)*(96+6)
	if p.X != wantX || p.Y != 16 {
		t.Errorf("fallback at (%v, %v), want (%v, 16)", p.X, p.Y, wantX)
	}
	if !p.Horizontal || p.Corner || p.Flip {
		t.Error("fallback placement must be unrotated, unflipped, non-corner")
	}
}

func TestGeometryResetReplaysWholeChain(t *testing.T) {
	eng := NewEngine(Config{})
	tiles := board("0-1", "1-2", "2-3", "3-4", "4-5", "5-6", "6-4")

	growRight(eng, tiles, testViewport)

	// Width change resets the cache; every tile must still get a real
	// chain placement, not the fallback row along the padding edge.
	res := eng.Recompute(tiles, Viewport{Width: 820, Height: 600})
	if eng.CacheSize() != len(tiles) {
		t.Fatalf("CacheSize() = %d, want %d after reseed", eng.CacheSize(), len(tiles))
	}
	for i, p := range res.Placements {
		if p.Y == 16 && p.X == 16+float64(i)*(96+6) {
			t.Errorf("Placements[%d] fell back to the naive row", i)
		}
	}
	if !res.Placements[6].Corner {
		t.Error("replayed chain lost its corner tile")
	}
}

func TestBoundsAreFullCanvas(t *testing.T) {
	eng := NewEngine(Config{})
	res := eng.Recompute(board("6-4"), testViewport)

	want := Bounds{MinX: 0, MaxX: 800, MinY: 0, MaxY: 600}
	if res.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", res.Bounds, want)
	}
}
