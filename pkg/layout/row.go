package layout

import "math"

// =============================================================================
// Row-Wrapping Layout
// =============================================================================

// Row-wrapping defaults, used for hand trays and the picking grid.
const (
	// DefaultEndControlWidth reserves space for the play-end buttons
	// flanking a tray.
	DefaultEndControlWidth = 48

	// DefaultCornerReserve keeps room at the row edge for the rotated
	// corner tile.
	DefaultCornerReserve = 32

	// DefaultMinTilesPerRow is the floor for row capacity on very narrow
	// containers.
	DefaultMinTilesPerRow = 3
)

// RowConfig parameterizes the row-wrapping layout.
// Zero fields take the package defaults.
type RowConfig struct {
	ContainerWidth  float64 `json:"container_width"`
	TileWidth       float64 `json:"tile_width"`
	Padding         float64 `json:"padding"`
	EndControlWidth float64 `json:"end_control_width"`
	CornerReserve   float64 `json:"corner_reserve"`
	MinTilesPerRow  int     `json:"min_tiles_per_row"`
}

func (c RowConfig) withDefaults() RowConfig {
	if c.TileWidth <= 0 {
		c.TileWidth = DefaultBaseTileWidth
	}
	if c.Padding <= 0 {
		c.Padding = DefaultPadding
	}
	if c.EndControlWidth <= 0 {
		c.EndControlWidth = DefaultEndControlWidth
	}
	if c.CornerReserve <= 0 {
		c.CornerReserve = DefaultCornerReserve
	}
	if c.MinTilesPerRow <= 0 {
		c.MinTilesPerRow = DefaultMinTilesPerRow
	}
	return c
}

// RowPlacement assigns one tile to a slot in the wrapped grid.
type RowPlacement struct {
	// Index is the tile's position in the input order.
	Index int `json:"index"`

	// Row and Column locate the slot; Column counts in assignment order.
	Row    int `json:"row"`
	Column int `json:"column"`

	// Reversed marks rows rendered right-to-left so the chain reads
	// continuously across row breaks.
	Reversed bool `json:"reversed,omitempty"`

	// Corner marks the last tile of a non-final row; Rotation is its
	// quarter-turn in degrees, alternating sign by row parity.
	Corner   bool `json:"corner,omitempty"`
	Rotation int  `json:"rotation,omitempty"`
}

// RowCapacity computes how many tiles fit per row. Width available for
// tiles excludes the padding and end-control insets on both sides plus the
// corner reserve; capacity never drops below the configured minimum.
func RowCapacity(cfg RowConfig) int {
	cfg = cfg.withDefaults()
	available := cfg.ContainerWidth - 2*cfg.Padding - 2*cfg.EndControlWidth
	capacity := int(math.Floor((available - cfg.CornerReserve) / cfg.TileWidth))
	if capacity < cfg.MinTilesPerRow {
		return cfg.MinTilesPerRow
	}
	return capacity
}

// WrapRows lays out count tiles into rows. Unlike the chain engine this is
// fully stateless and recomputed each call: its consumer replaces the tray
// wholesale on every render instead of growing it incrementally.
func WrapRows(count int, cfg RowConfig) []RowPlacement {
	if count <= 0 {
		return []RowPlacement{}
	}

	perRow := RowCapacity(cfg)
	placements := make([]RowPlacement, count)

	for i := 0; i < count; i++ {
		row := i / perRow
		col := i % perRow

		p := RowPlacement{
			Index:    i,
			Row:      row,
			Column:   col,
			Reversed: row%2 == 1,
		}

		// Last tile of a non-final row turns the chain into the next row.
		lastInRow := col == perRow-1
		finalRow := (count-1)/perRow == row
		if lastInRow && !finalRow {
			p.Corner = true
			if row%2 == 0 {
				p.Rotation = 90
			} else {
				p.Rotation = -90
			}
		}

		placements[i] = p
	}

	return placements
}
