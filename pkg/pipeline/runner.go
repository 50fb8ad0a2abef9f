package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/cache"
	"github.com/capicuhq/capicu/pkg/layout"
	"github.com/capicuhq/capicu/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	b, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Board = b
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.TileCount = b.Len()
	result.CacheInfo.ParseHit = parseHit

	// Content hash for cache keys and API responses.
	if boardData, err := board.Marshal(b); err == nil {
		result.BoardHash = cache.Hash(boardData)
	}

	r.Logger.Info("parsed board",
		"tiles", b.Len(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, b, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"placements", len(res.Placements),
		"scale", res.Scale,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, b, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo reads the board with caching and returns cache hit
// info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (board.Board, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return board.Board{}, false, err
	}
	r.applyLogger(&opts)

	source, format, err := opts.boardSource()
	if err != nil {
		return board.Board{}, false, err
	}

	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, format)

	b, hit, err := r.parseCached(ctx, source, opts.Refresh)
	observability.Pipeline().OnParseComplete(ctx, format, b.Len(), time.Since(start), err)
	return b, hit, err
}

// parseCached resolves the source through the cache. Boards are
// content-addressed by their raw source text and never expire.
func (r *Runner) parseCached(ctx context.Context, source string, refresh bool) (board.Board, bool, error) {
	cacheKey := r.Keyer.BoardKey(source)

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			b, err := board.Unmarshal(data)
			if err == nil {
				return b, true, nil // Cache hit
			}
		}
	}

	b, err := parseSource(source)
	if err != nil {
		return board.Board{}, false, err
	}

	if data, err := board.Marshal(b); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLBoard)
	}

	return b, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (board.Board, error) {
	b, _, err := r.ParseWithCacheInfo(ctx, opts)
	return b, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, b board.Board, opts Options) (layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, b.Len())

	res, hit, err := r.layoutCached(ctx, b, opts)
	observability.Pipeline().OnLayoutComplete(ctx, b.Len(), time.Since(start), err)
	return res, hit, err
}

func (r *Runner) layoutCached(ctx context.Context, b board.Board, opts Options) (layout.Result, bool, error) {
	boardData, err := board.Marshal(b)
	if err != nil {
		return layout.Result{}, false, fmt.Errorf("serialize board for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(boardData), opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := layout.UnmarshalResult(data)
		if err == nil {
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}

	res := ComputeLayout(b, opts)

	if data, err := layout.MarshalResult(res); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return res, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, b board.Board, opts Options) (layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, b, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, b board.Board, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts, hit, err := r.renderCached(ctx, res, b, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) renderCached(ctx context.Context, res layout.Result, b board.Board, opts Options) (map[string][]byte, bool, error) {
	layoutData, err := layout.MarshalResult(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := RenderArtifacts(res, b, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLRender)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res layout.Result, b board.Board, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, b, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
