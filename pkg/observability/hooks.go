// Package observability provides hooks for registry traffic, response cache
// and project parse events.
//
// Hooks are registered once at startup; libraries emit events through the
// package-level accessors and pay nothing when only the no-op defaults are
// installed:
//
//	observability.SetHTTPHooks(observability.NewLogHooks(logger))
//
//	observability.Project().OnParseStart(ctx, "npm", root)
//	// ... read manifest, fetch metadata ...
//	observability.Project().OnParseComplete(ctx, "npm", root, ProjectStats{...}, err)
//
// [LogHooks] implements every hook interface on top of a charmbracelet
// logger and is what `depman --verbose` installs.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Project Hooks
// =============================================================================

// ProjectStats summarizes one parse or reparse.
type ProjectStats struct {
	Declared int           // Distinct declared dependency names
	Locked   int           // Lockfile entries
	Fetched  int           // Names whose metadata was requested
	Resolved int           // Names with metadata after the parse
	Duration time.Duration // Wall time of the whole parse
}

// ProjectHooks receives events from project parsing.
type ProjectHooks interface {
	OnParseStart(ctx context.Context, kind, root string)
	OnParseComplete(ctx context.Context, kind, root string, stats ProjectStats, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the registry response cache.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, key string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, key string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP requests.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response of any status.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a request that got no response (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopProjectHooks is a no-op implementation of ProjectHooks.
type NoopProjectHooks struct{}

func (NoopProjectHooks) OnParseStart(context.Context, string, string) {}
func (NoopProjectHooks) OnParseComplete(context.Context, string, string, ProjectStats, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	projectHooks ProjectHooks = NoopProjectHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetProjectHooks registers custom project hooks. Nil is ignored.
func SetProjectHooks(h ProjectHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		projectHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Project returns the registered project hooks.
func Project() ProjectHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return projectHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	projectHooks = NoopProjectHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
