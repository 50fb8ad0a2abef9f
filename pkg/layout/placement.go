package layout

import "github.com/capicuhq/capicu/pkg/domino"

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Placement is the computed render state of one tile.
// Once returned for a tile it never changes until the cache resets; the
// renderer may diff placements by value to skip unchanged tiles.
type Placement struct {
	Tile domino.Domino `json:"tile" bson:"tile"`

	// Top-left corner in canvas pixels.
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`

	// Rendered dimensions after scaling and orientation.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Horizontal is true when the long edge lies along the x axis.
	Horizontal bool `json:"horizontal" bson:"horizontal"`

	// Corner marks the tile placed exactly on a direction change.
	Corner bool `json:"corner,omitempty" bson:"corner,omitempty"`

	// Double mirrors Tile.IsDouble for renderers working off placements
	// alone.
	Double bool `json:"double,omitempty" bson:"double,omitempty"`

	// Flip requests a 180° rotation so pips face outward on the
	// reverse-growing arm. Position and size are unaffected.
	Flip bool `json:"flip,omitempty" bson:"flip,omitempty"`
}

// CenterX returns the horizontal center of the placement.
func (p Placement) CenterX() float64 { return p.X + p.Width/2 }

// CenterY returns the vertical center of the placement.
func (p Placement) CenterY() float64 { return p.Y + p.Height/2 }

// Endpoint describes one growing end of the chain for the play-target UI.
type Endpoint struct {
	// Position is the connection point where the next tile will attach.
	Position Point `json:"position" bson:"position"`

	// GrowthDirection is the arm's current travel direction.
	GrowthDirection Direction `json:"growth_direction" bson:"growth_direction"`

	// PipValue is the open pip count at this end, nil when the board is
	// empty.
	PipValue *int `json:"pip_value" bson:"pip_value"`
}

// Bounds is the canvas rectangle placements are laid out in.
// It is always the full canvas; the engine does not shrink-wrap the chain.
type Bounds struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Result is the snapshot view returned by one recomputation.
type Result struct {
	// Placements align index-for-index with the input board.
	Placements []Placement `json:"placements" bson:"placements"`

	LeftEnd  Endpoint `json:"left_end" bson:"left_end"`
	RightEnd Endpoint `json:"right_end" bson:"right_end"`

	Bounds Bounds `json:"bounds" bson:"bounds"`

	// Scale is the resolved uniform scale factor, in (0, MaxScale].
	Scale float64 `json:"scale" bson:"scale"`
}
