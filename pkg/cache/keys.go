package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Hash computes a SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RegistryScope returns a short, stable prefix for a registry base URL so
// responses from a mirror never shadow those of the public registry.
func RegistryScope(baseURL string) string {
	return fmt.Sprintf("r%016x:", xxhash.Sum64String(strings.TrimRight(baseURL, "/")))
}

// Scoped wraps a cache so every key is prefixed.
func Scoped(inner Cache, prefix string) Cache {
	if prefix == "" {
		return inner
	}
	return &scoped{inner: inner, prefix: prefix}
}

type scoped struct {
	inner  Cache
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close is a no-op; the inner cache is owned by whoever created it.
func (s *scoped) Close() error { return nil }
