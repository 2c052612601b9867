package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphlayout/pkg/cache"
	"github.com/matzehuels/graphlayout/pkg/check"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/observability"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.Logger.With("layout", opts.LayoutName())
	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	g, err := Parse(opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Graph = g
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = g.Order()
	result.Stats.EdgeCount = g.Size()
	if result.GraphHash, err = GraphHash(opts); err != nil {
		return nil, err
	}
	logger.Debug("parsed graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	u, hit, err := r.LayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Update = u
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit
	logger.Info("computed layout",
		"nodes", len(u.Layout),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := RenderFromLayout(ctx, g, u, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays out g, reusing a cached result for the same
// graph hash and parameters. Cached positions are stored on g as well.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *simgraph.Graph, graphHash string, opts Options) (layout.Update, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.Update{}, false, err
	}
	params, err := layout.Encode(opts.Params)
	if err != nil {
		return layout.Update{}, false, err
	}
	key := r.Keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{
		LayoutName: opts.LayoutName(),
		Params:     params,
	})
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var u layout.Update
			if err := json.Unmarshal(data, &u); err == nil {
				hooks.OnCacheHit(ctx, key)
				layout.Store(g, u.Layout)
				return u, true, nil
			}
			// If decoding fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		hooks.OnCacheMiss(ctx, key)
	}

	u, err := GenerateLayout(ctx, g, opts.Params, r.Logger)
	if err != nil {
		return layout.Update{}, false, err
	}

	if data, err := json.Marshal(u); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, key, len(data))
		}
	}
	return u, false, nil
}

// IsDAG reports whether the graph in opts is acyclic, caching the answer
// by graph hash.
func (r *Runner) IsDAG(ctx context.Context, opts Options) (bool, error) {
	hash, err := GraphHash(opts)
	if err != nil {
		return false, err
	}
	key := r.Keyer.CheckKey(hash, "dag")
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit && len(data) == 1 {
		observability.Cache().OnCacheHit(ctx, key)
		return data[0] == '1', nil
	}

	g, err := Parse(opts)
	if err != nil {
		return false, err
	}
	ok := check.IsDAG(g)
	val := []byte{'0'}
	if ok {
		val[0] = '1'
	}
	_ = r.Cache.Set(ctx, key, val, cache.TTLCheck)
	return ok, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
