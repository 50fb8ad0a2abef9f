package layout

import "math"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Default engine configuration.
const (
	// DefaultBaseTileWidth is the unscaled long edge of a tile in pixels.
	DefaultBaseTileWidth = 64

	// DefaultBaseTileHeight is the unscaled short edge of a tile in pixels.
	DefaultBaseTileHeight = 32

	// DefaultPadding is the canvas inset in pixels.
	DefaultPadding = 16

	// DefaultTilesPerRow is the turn limit for horizontal (east/west) runs.
	DefaultTilesPerRow = 5

	// DefaultTilesPerColumn is the turn limit for vertical (north/south)
	// runs. Vertical runs are shorter because tile short edges are the turn
	// pivot and vertical space is typically scarcer.
	DefaultTilesPerColumn = 3

	// DefaultBaseGap is the unscaled gap between adjacent tiles in pixels.
	DefaultBaseGap = 4
)

// MaxScale caps the uniform scale factor so tiles stay reasonable on very
// wide viewports.
const MaxScale = 1.5

const (
	// minGap is the floor for the scaled inter-tile gap.
	minGap = 2

	// scaleTolerance is the scale drift beyond which the cache resets.
	scaleTolerance = 0.01
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds the tunable geometry parameters of the engine.
// Zero fields are replaced with the package defaults.
type Config struct {
	BaseTileWidth  float64 `json:"base_tile_width"`
	BaseTileHeight float64 `json:"base_tile_height"`
	Padding        float64 `json:"padding"`
	TilesPerRow    int     `json:"tiles_per_row"`
	TilesPerColumn int     `json:"tiles_per_column"`
	BaseGap        float64 `json:"base_gap"`
}

// withDefaults returns the config with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.BaseTileWidth <= 0 {
		c.BaseTileWidth = DefaultBaseTileWidth
	}
	if c.BaseTileHeight <= 0 {
		c.BaseTileHeight = DefaultBaseTileHeight
	}
	if c.Padding <= 0 {
		c.Padding = DefaultPadding
	}
	if c.TilesPerRow <= 0 {
		c.TilesPerRow = DefaultTilesPerRow
	}
	if c.TilesPerColumn <= 0 {
		c.TilesPerColumn = DefaultTilesPerColumn
	}
	if c.BaseGap <= 0 {
		c.BaseGap = DefaultBaseGap
	}
	return c
}

// Viewport is the current canvas size in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether either dimension is missing.
func (v Viewport) IsZero() bool { return v.Width <= 0 || v.Height <= 0 }

// =============================================================================
// Scale Resolution
// =============================================================================

// geometry is the resolved per-viewport pixel geometry all placements are
// computed in.
type geometry struct {
	scale float64
	tileW float64 // scaled long edge, floored
	tileH float64 // scaled short edge, floored
	gap   float64 // scaled gap, floored, never below minGap
}

// resolveGeometry computes the uniform scale and derived tile dimensions
// for a viewport. The denominator reserves room for one extra turning tile
// beyond the horizontal run limit.
func resolveGeometry(cfg Config, vp Viewport) geometry {
	scale := vp.Width / (float64(cfg.TilesPerRow)*cfg.BaseTileWidth + cfg.BaseTileWidth)
	scale = math.Min(scale, MaxScale)

	return geometry{
		scale: scale,
		tileW: math.Floor(cfg.BaseTileWidth * scale),
		tileH: math.Floor(cfg.BaseTileHeight * scale),
		gap:   math.Max(math.Floor(cfg.BaseGap*scale), minGap),
	}
}

// dims returns the rendered width and height for a tile orientation.
// Horizontal tiles lie long-edge along x; vertical tiles stand upright.
func (g geometry) dims(horizontal bool) (w, h float64) {
	if horizontal {
		return g.tileW, g.tileH
	}
	return g.tileH, g.tileW
}

// =============================================================================
// Fingerprint - Cache Invalidation Key
// =============================================================================

// fingerprint identifies the viewport geometry a cache was computed under.
// Any material change invalidates every cached placement.
type fingerprint struct {
	width  float64
	height float64
	scale  float64
}

// matches reports whether the cached geometry is still valid for the given
// viewport and scale. Container dimensions compare exactly; scale allows a
// small tolerance so sub-pixel viewport reports do not thrash the cache.
func (f fingerprint) matches(vp Viewport, scale float64) bool {
	return f.width == vp.Width &&
		f.height == vp.Height &&
		math.Abs(f.scale-scale) <= scaleTolerance
}
