package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracegantt/pkg/cache"
	"github.com/matzehuels/tracegantt/pkg/observability"
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
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

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	root, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Root = root
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.SpanCount = trace.Count(root)
	result.CacheInfo.FetchHit = fetchHit

	opts.Logger.Info("fetched trace",
		"source", opts.Source.Name(),
		"spans", result.Stats.SpanCount,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, traceHash, layoutHit, err := r.layout(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.TraceHash = traceHash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.RowCount = layout.RowCount
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"rows", layout.RowCount,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo fetches the span tree with caching and returns cache
// hit info. Fetches without a trace ID bypass the cache.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (root *trace.Span, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	name := opts.Source.Name()

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, name, opts.TraceID)
	start := time.Now()
	defer func() {
		hooks.OnFetchComplete(ctx, name, opts.TraceID, trace.Count(root), time.Since(start), err)
	}()

	var cacheKey string
	if opts.TraceID != "" {
		cacheKey = r.Keyer.TraceKey(name, opts.TraceID)
		if !opts.Refresh {
			if data, ok := r.get(ctx, "trace", cacheKey); ok {
				if cached, err := trace.Parse(data); err == nil && cached != nil {
					return cached, true, nil
				}
			}
		}
	}

	root, err = opts.Source.Fetch(ctx, opts.TraceID)
	if err != nil {
		return nil, false, err
	}

	if cacheKey != "" {
		if data, err := trace.Marshal(root); err == nil {
			r.set(ctx, "trace", cacheKey, data, cache.TTLTrace)
		}
	}
	return root, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*trace.Span, error) {
	root, _, err := r.FetchWithCacheInfo(ctx, opts)
	return root, err
}

// GenerateLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, root *trace.Span, opts Options) (timeline.Layout, bool, error) {
	l, _, hit, err := r.layout(ctx, root, opts)
	return l, hit, err
}

// GenerateLayout is a convenience wrapper that calls GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, root *trace.Span, opts Options) (timeline.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, root, opts)
	return l, err
}

func (r *Runner) layout(ctx context.Context, root *trace.Span, opts Options) (l timeline.Layout, traceHash string, hit bool, err error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	count := trace.Count(root)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, count)
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, l.RowCount, time.Since(start), err)
	}()

	var cacheKey string
	if root != nil {
		if data, err := trace.Marshal(root); err == nil {
			traceHash = cache.Hash(data)
			cacheKey = r.Keyer.LayoutKey(traceHash, opts.LayoutKeyOpts())
		}
	}

	if cacheKey != "" {
		if data, ok := r.get(ctx, "layout", cacheKey); ok {
			if cached, err := timeline.Unmarshal(data); err == nil {
				// Width and trace ID are presentation only and not part of the key.
				cached.Width = opts.Width
				cached.TraceID = layoutTraceID(opts, root)
				return cached, traceHash, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	l, err = GenerateLayout(root, opts)
	if err != nil {
		return timeline.Layout{}, traceHash, false, err
	}

	if cacheKey != "" {
		if data, err := timeline.Marshal(l); err == nil {
			r.set(ctx, "layout", cacheKey, data, cache.TTLLayout)
		}
	}
	return l, traceHash, false, nil
}

func layoutTraceID(opts Options, root *trace.Span) string {
	if opts.TraceID != "" {
		return opts.TraceID
	}
	return root.TraceID
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l timeline.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if opts.Width == 0 {
		opts.Width = l.Width
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	// Compute cache key from layout data
	layoutData, err := timeline.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, ok := r.get(ctx, "artifact", key)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderFromLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l timeline.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "err", err)
		ok = false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, ok
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
