package cache

import (
	"context"
	"time"
)

// Cache is the byte-level storage interface shared by the rendering
// pipeline and the server. Implementations must be safe for concurrent
// use by multiple goroutines.
type Cache interface {
	// Get retrieves a value from the cache.
	// The bool return indicates whether the key was found and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	// A zero or negative TTL stores the value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// TTLs per pipeline stage. Parsed boards are content-addressed by their
// tile sequence and never go stale. Layouts and rendered artifacts depend
// on geometry tunables that change between releases, so they expire.
const (
	TTLBoard  time.Duration = 0
	TTLLayout               = 24 * time.Hour
	TTLRender               = 24 * time.Hour
)

// Keyer generates cache keys for the pipeline stages.
// Keys from different stages never collide: each carries a stage prefix
// followed by a SHA-256 hash of the stage inputs.
type Keyer interface {
	// BoardKey generates a key for a parsed board document.
	// The source is the raw tile sequence text before parsing.
	BoardKey(source string) string

	// LayoutKey generates a key for a computed chain layout.
	// The boardHash identifies the parsed board; opts capture every
	// input that changes layout output.
	LayoutKey(boardHash string, opts LayoutKeyOpts) string

	// RenderKey generates a key for a rendered artifact.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts captures the inputs that affect layout computation.
type LayoutKeyOpts struct {
	Width          float64
	Height         float64
	BaseTileWidth  float64
	BaseTileHeight float64
	TilesPerRow    int
	TilesPerColumn int
}

// RenderKeyOpts captures the inputs that affect rendered output.
type RenderKeyOpts struct {
	Format    string
	Style     string
	Table     bool
	Endpoints bool
	Detailed  bool
	Scale     float64
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BoardKey generates a key for a parsed board document.
func (k *DefaultKeyer) BoardKey(source string) string {
	return hashKey("board", source)
}

// LayoutKey generates a key for a computed chain layout.
func (k *DefaultKeyer) LayoutKey(boardHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", boardHash, opts)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
