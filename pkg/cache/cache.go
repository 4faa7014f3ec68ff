// Package cache stores analysis results, rendered sprites and validation
// reports keyed by content hash.
//
// Three backends implement [Cache]:
//
//   - [FileCache] for CLI usage, one JSON file per entry under a directory
//   - [RedisCache] for a shared cache behind the HTTP API
//   - [NullCache] when caching is disabled
//
// Keys are built by a [Keyer] so that the same inputs always map to the same
// entry. [ScopedKeyer] prefixes every key for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLAnalysis = 7 * 24 * time.Hour
	TTLSprite   = 24 * time.Hour
	TTLReport   = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
