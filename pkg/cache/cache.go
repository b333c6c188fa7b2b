// Package cache provides storage backends for registry responses.
//
// The registry clients in pkg/integrations store raw response bodies under
// namespaced keys so repeated `depman list` runs do not hit npm or crates.io
// again until the entry expires. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, for teams or CI runners
//   - [NullCache]: never stores anything (`--no-cache`)
//
// Backends that can drop every entry they own also implement [Clearer].
//
// The package also carries the retry primitives used by the HTTP layer:
// [Retryable] marks an error as transient and [RetryPolicy.Do] re-runs an
// operation while it keeps failing that way.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional time-to-live.
//
// Get reports a miss with ok=false and a nil error; an error is returned only
// when the backend itself failed. A zero ttl in Set means the entry never
// expires. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can remove all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

// Get always reports a miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close is a no-op.
func (NullCache) Close() error { return nil }

// Clear is a no-op.
func (NullCache) Clear(context.Context) error { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
