// Package cache stores computed layouts keyed by graph and parameter hashes.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache]
// backs the CLI, and [RedisCache] backs the HTTP server. A [Keyer] turns a
// graph hash and layout parameters into a cache key.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	TTLLayout = 7 * 24 * time.Hour
	TTLCheck  = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// LayoutKeyOpts identifies the layout parameters that affect a result.
type LayoutKeyOpts struct {
	// LayoutName is the strategy name.
	LayoutName string
	// Params is the canonical JSON encoding of the parameters.
	Params []byte
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a layout result for a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// CheckKey keys a validity check result for a graph.
	CheckKey(graphHash, check string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.LayoutName, string(opts.Params))
}

// CheckKey returns "check:<hash>".
func (DefaultKeyer) CheckKey(graphHash, check string) string {
	return hashKey("check", graphHash, check)
}
