// Package pipeline provides the board visualization pipeline.
//
// This package implements the complete parse → layout → render pipeline
// shared by the CLI and the server. By centralizing this logic, every
// entry point computes layouts and artifacts the same way and shares one
// cache.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a board from shorthand notation or a board file
//  2. Layout: Compute tile placements for the chain
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete
// pipeline, and each stage caches its output under a content-derived key.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Board:   "6-6 6-4 4-2",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Parse only
//	b, err := runner.Parse(ctx, opts)
//
//	// Layout with an existing board
//	res, err := runner.ComputeLayout(ctx, b, opts)
//
//	// Render with an existing layout
//	artifacts, err := runner.Render(ctx, res, b, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/cache"
	"github.com/capicuhq/capicu/pkg/layout"
	"github.com/capicuhq/capicu/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 450.0

	// DefaultScale is the default PNG scale factor (2x for high-DPI
	// displays).
	DefaultScale = 2.0
)

// DefaultStyle is the default visual style.
const DefaultStyle = "classic"

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Board     string `json:"board,omitempty"`      // Chain in shorthand notation, e.g. "6-6 6-4"
	BoardFile string `json:"board_file,omitempty"` // Path to a board JSON file
	Refresh   bool   `json:"refresh,omitempty"`    // Bypass the parse cache

	// Layout options
	Width          float64 `json:"width,omitempty"`
	Height         float64 `json:"height,omitempty"`
	TileWidth      float64 `json:"tile_width,omitempty"`
	TileHeight     float64 `json:"tile_height,omitempty"`
	TilesPerRow    int     `json:"tiles_per_row,omitempty"`
	TilesPerColumn int     `json:"tiles_per_column,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Style     string   `json:"style,omitempty"`
	Table     bool     `json:"table,omitempty"`     // Draw the table surface in SVG
	Endpoints bool     `json:"endpoints,omitempty"` // Mark open ends in SVG
	Detailed  bool     `json:"detailed,omitempty"`  // Chain positions and matched pips in DOT
	Scale     float64  `json:"scale,omitempty"`     // PNG scale factor

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Board is the parsed and validated chain.
	Board board.Board

	// BoardHash is the content hash of the serialized board.
	BoardHash string

	// Layout contains the computed placements and endpoints.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether the board came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if _, ok := render.PaletteByName(style); !ok {
		return fmt.Errorf("invalid style: %q (must be one of: %s)",
			style, strings.Join(render.PaletteNames(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Board == "" && o.BoardFile == "" {
		return fmt.Errorf("board or board_file is required")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("canvas dimensions must be positive, got %gx%g", o.Width, o.Height)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// EngineConfig returns the layout engine configuration. Zero fields take
// the engine's package defaults.
func (o *Options) EngineConfig() layout.Config {
	return layout.Config{
		BaseTileWidth:  o.TileWidth,
		BaseTileHeight: o.TileHeight,
		TilesPerRow:    o.TilesPerRow,
		TilesPerColumn: o.TilesPerColumn,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:          o.Width,
		Height:         o.Height,
		BaseTileWidth:  o.TileWidth,
		BaseTileHeight: o.TileHeight,
		TilesPerRow:    o.TilesPerRow,
		TilesPerColumn: o.TilesPerColumn,
	}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:    format,
		Style:     o.Style,
		Table:     o.Table,
		Endpoints: o.Endpoints,
		Detailed:  o.Detailed,
		Scale:     o.Scale,
	}
}
