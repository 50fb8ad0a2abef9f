package layout

import "github.com/capicuhq/capicu/pkg/domino"

// armState tracks one growing end of the chain between recomputations.
//
// The connection point is the pixel center of the outgoing edge of the most
// recently placed tile; the next tile on this arm attaches there. The last
// tile's dimensions and double flag are kept because the corner bridge
// offset is measured against the previous tile, not the one being placed.
type armState struct {
	cp        Point
	direction Direction
	runLength int

	// goingPositive is the arm's persisted horizontal bias: true means the
	// arm resumes eastward after a vertical run, false westward. Set once
	// at seed time, never toggled.
	goingPositive bool

	lastW      float64
	lastH      float64
	lastDouble bool
}

// turnLimit returns how many tiles a run may hold before the arm must
// change direction.
func turnLimit(d Direction, cfg Config) int {
	if d.Horizontal() {
		return cfg.TilesPerRow
	}
	return cfg.TilesPerColumn
}

// turn advances the connection point across the corner and switches
// direction. Horizontal runs always fall south; vertical runs resume
// horizontally following the arm's bias.
//
// The new connection point moves from the outgoing half of the previous
// tile to the far edge of the new direction. A quarter of the previous
// tile's length centers on the outgoing half; a double is symmetric, so
// its bridge pivots on the full center instead.
func (a *armState) turn() {
	frac := 0.25
	if a.lastDouble {
		frac = 0.5
	}

	switch a.direction {
	case East:
		a.cp.X -= a.lastW * frac
		a.cp.Y += a.lastH * 0.5
		a.direction = South
	case West:
		a.cp.X += a.lastW * frac
		a.cp.Y += a.lastH * 0.5
		a.direction = South
	case South:
		a.cp.Y -= a.lastH * frac
		a.cp.X += a.horizontalStep()
		a.direction = a.horizontalDirection()
	case North:
		a.cp.Y += a.lastH * frac
		a.cp.X += a.horizontalStep()
		a.direction = a.horizontalDirection()
	}

	a.runLength = 0
}

// horizontalStep is the x shift to the far edge of the resumed horizontal
// direction, signed by the arm's bias.
func (a *armState) horizontalStep() float64 {
	if a.goingPositive {
		return a.lastW * 0.5
	}
	return -a.lastW * 0.5
}

// horizontalDirection is the direction a vertical run resumes in.
func (a *armState) horizontalDirection() Direction {
	if a.goingPositive {
		return East
	}
	return West
}

// orientationFor decides whether a tile lies horizontally.
//
// A regular tile's long edge follows the travel direction; a double stands
// perpendicular to it. A double that is itself the corner tile instead
// aligns with the post-turn direction so it bridges the two run segments.
func orientationFor(d Direction, double, corner bool) bool {
	if double && !corner {
		return !d.Horizontal()
	}
	return d.Horizontal()
}

// place advances the arm by one tile and returns its placement.
// The function is total: every direction and tile shape has a defined
// placement, and no illegal arm state is reachable.
func (a *armState) place(tile domino.Domino, cfg Config, geo geometry) Placement {
	corner := false
	if a.runLength >= turnLimit(a.direction, cfg) {
		corner = true
		a.turn()
	}

	double := tile.IsDouble()
	horizontal := orientationFor(a.direction, double, corner)
	w, h := geo.dims(horizontal)

	var pos, next Point
	switch a.direction {
	case East:
		pos = Point{X: a.cp.X + geo.gap, Y: a.cp.Y - h/2}
		next = Point{X: a.cp.X + geo.gap + w, Y: a.cp.Y}
	case West:
		pos = Point{X: a.cp.X - w - geo.gap, Y: a.cp.Y - h/2}
		next = Point{X: a.cp.X - w - geo.gap, Y: a.cp.Y}
	case South:
		pos = Point{X: a.cp.X - w/2, Y: a.cp.Y + geo.gap}
		next = Point{X: a.cp.X, Y: a.cp.Y + geo.gap + h}
	case North:
		pos = Point{X: a.cp.X - w/2, Y: a.cp.Y - h - geo.gap}
		next = Point{X: a.cp.X, Y: a.cp.Y - h - geo.gap}
	}

	a.cp = next
	a.runLength++
	a.lastW, a.lastH, a.lastDouble = w, h, double

	return Placement{
		Tile:       tile,
		X:          pos.X,
		Y:          pos.Y,
		Width:      w,
		Height:     h,
		Horizontal: horizontal,
		Corner:     corner,
		Double:     double,
		Flip:       !a.goingPositive && !horizontal,
	}
}
