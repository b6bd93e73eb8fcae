// Package cache stores computed layouts and rendered artifacts.
//
// # Backends
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a Redis server via go-redis, for the HTTP API
//   - [MongoCache]: a MongoDB collection with a TTL index
//
// [Open] selects a backend from a [Config].
//
// # Keys
//
// A [Keyer] derives keys from content hashes and the options that affect the
// cached value, so changing any layout option yields a new key.
// [ScopedKeyer] prefixes every key for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached values.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A non-positive ttl stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
