package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/depman/pkg/cache"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/observability"
)

// Client provides shared HTTP functionality for all registry API clients.
// It handles response caching, retries, per-host circuit breaking and
// common request headers. A Client is safe for concurrent use.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	prefix   string
	ttl      time.Duration
	headers  map[string]string
	retry    cache.RetryPolicy
	breakers *breakerSet
}

// NewClient creates a Client storing responses in backend under prefix.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and nil for
// backend to disable caching.
func NewClient(backend cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:     NewHTTPClient(),
		cache:    backend,
		prefix:   prefix,
		ttl:      ttl,
		headers:  headers,
		retry:    cache.DefaultRetryPolicy,
		breakers: newBreakerSet(),
	}
}

// SetRetryPolicy replaces the retry policy used by [Client.Cached].
func (c *Client) SetRetryPolicy(p cache.RetryPolicy) { c.retry = p }

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Cache read and write failures are ignored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	key = c.prefix + key
	hooks := observability.Cache()
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, key)
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, key)
	}
	if err := c.retry.Do(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, key, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET with the client's headers and JSON-decodes the
// response into v. A body that is not valid JSON for v yields an error
// wrapping [ErrDecode].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, url, err)
	}
	return nil
}

// BreakerStates reports "open" or "closed" for every host contacted so far.
func (c *Client) BreakerStates() map[string]string {
	return c.breakers.states()
}

// doRequest sends the request through the host's circuit breaker. Only
// retryable failures count against the breaker; a 404 is an answer.
// The breaker decides on its own whether the call runs; when it does not,
// the host is reported open.
func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	host := hostOf(url)
	var (
		body   io.ReadCloser
		reqErr error
		sent   bool
	)
	_ = c.breakers.get(host).Call(func() error {
		sent = true
		body, reqErr = c.send(ctx, url)
		if cache.IsRetryable(reqErr) {
			return reqErr
		}
		return nil
	}, 0)
	if !sent {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, host)
	}
	return body, reqErr
}

func (c *Client) send(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, rateLimited(resp.Header.Get("Retry-After"))
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func rateLimited(retryAfter string) error {
	secs, _ := strconv.Atoi(retryAfter)
	return fmt.Errorf("%w: %w", ErrNetwork, &errs.RateLimitedError{RetryAfter: secs})
}
