package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/matzehuels/depman/pkg/cache"
	errs "github.com/matzehuels/depman/pkg/errors"
)

func newTestClient(t *testing.T, server *httptest.Server) (*Client, *cache.FileCache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(c, "test:", time.Hour, nil)
	client.SetRetryPolicy(cache.RetryPolicy{Attempts: 3})
	if server != nil {
		client.SetHTTPClient(server.Client())
	}
	return client, c
}

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"User-Agent": DefaultUserAgent}
	client := NewClient(c, "test:", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != cache.Cache(c) {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["User-Agent"] != DefaultUserAgent {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilBackend(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil backend should fall back to a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetSendsHeaders(t *testing.T) {
	var accept, agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		agent = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	client.headers = map[string]string{"User-Agent": "depman-test"}

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if accept != "application/json" {
		t.Errorf("Accept = %q, want application/json", accept)
	}
	if agent != "depman-test" {
		t.Errorf("User-Agent = %q, want depman-test", agent)
	}
}

func TestClientGetErrors(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		want      error
		retryable bool
	}{
		{
			name:    "404",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			want:    ErrNotFound,
		},
		{
			name:      "500",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			want:      ErrNetwork,
			retryable: true,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{not json")) },
			want:    ErrDecode,
		},
		{
			name: "429",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			client, _ := newTestClient(t, server)

			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			if !errors.Is(err, tt.want) {
				t.Errorf("Get() error = %v, want %v", err, tt.want)
			}
			if cache.IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", cache.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestClientRateLimitedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	client, _ := newTestClient(t, server)

	var v any
	err := client.Get(context.Background(), server.URL, &v)
	var rl *errs.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want RateLimitedError", err)
	}
	if rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %d, want 30", rl.RetryAfter)
	}
}

func TestClientCached(t *testing.T) {
	client, backend := newTestClient(t, nil)
	ctx := context.Background()

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			*v = testData{Value: "fetched"}
			return nil
		}
	}

	var first testData
	if err := client.Cached(ctx, "serde", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second testData
	if err := client.Cached(ctx, "serde", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q, want %q", second.Value, "fetched")
	}
	if _, ok, _ := backend.Get(ctx, "test:serde"); !ok {
		t.Error("entry should be stored under the client prefix")
	}
}

func TestClientCachedRefresh(t *testing.T) {
	client, _ := newTestClient(t, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for range 2 {
		if err := client.Cached(context.Background(), "test-key", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2", fetchCount)
	}
}

func TestClientCachedRetries(t *testing.T) {
	client, _ := newTestClient(t, nil)

	calls := 0
	var value string
	err := client.Cached(context.Background(), "flaky", false, &value, func() error {
		calls++
		if calls < 3 {
			return cache.Retryable(ErrNetwork)
		}
		value = "ok"
		return nil
	})
	if err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client, backend := newTestClient(t, nil)
	ctx := context.Background()

	fetchCount := 0
	var value string
	err := client.Cached(ctx, "missing", false, &value, func() error {
		fetchCount++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetchCount)
	}
	if _, ok, _ := backend.Get(ctx, "test:missing"); ok {
		t.Error("failed fetch must not be cached")
	}
}

func TestCircuitBreakerTripsOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	client, _ := newTestClient(t, server)

	var v any
	for range breakerTripThreshold {
		if err := client.Get(context.Background(), server.URL, &v); !errors.Is(err, ErrNetwork) {
			t.Fatalf("Get() error = %v, want ErrNetwork", err)
		}
	}
	err := client.Get(context.Background(), server.URL, &v)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Get() after trip error = %v, want ErrCircuitOpen", err)
	}
	if got := hits.Load(); got != breakerTripThreshold {
		t.Errorf("server hits = %d, want %d", got, breakerTripThreshold)
	}

	states := client.BreakerStates()
	if states[hostOf(server.URL)] != "open" {
		t.Errorf("BreakerStates() = %v, want open", states)
	}
}

func TestCircuitBreakerHalfOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	client, _ := newTestClient(t, server)

	mock := clock.NewMock()
	client.breakers.get(hostOf(server.URL)).Clock = mock

	var v any
	for range breakerTripThreshold {
		client.Get(context.Background(), server.URL, &v)
	}
	// Past the first backoff interval the breaker lets single calls through
	// and refuses the rest.
	mock.Add(15100 * time.Millisecond)

	for i := range 4 * breakerTripThreshold {
		err := client.Get(context.Background(), server.URL, &v)
		if !errors.Is(err, ErrCircuitOpen) && !errors.Is(err, ErrNetwork) {
			t.Fatalf("Get() #%d error = %v, want ErrCircuitOpen or ErrNetwork", i, err)
		}
	}
}

func TestCircuitBreakerIgnoresNotFound(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	client, _ := newTestClient(t, server)

	var v any
	for range 3 * breakerTripThreshold {
		if err := client.Get(context.Background(), server.URL, &v); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	}
	if got := hits.Load(); got != 3*breakerTripThreshold {
		t.Errorf("server hits = %d, want %d", got, 3*breakerTripThreshold)
	}
	if client.BreakerStates()[hostOf(server.URL)] != "closed" {
		t.Error("404 responses must not trip the breaker")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    bool
		wantType   error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "500 Internal Server Error", code: 500, wantErr: true, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, isRetryErr: true},
		{name: "400 Bad Request", code: 400, wantErr: true},
		{name: "403 Forbidden", code: 403, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			if cache.IsRetryable(err) != tt.isRetryErr {
				t.Errorf("checkStatus() retryable = %v, want %v", cache.IsRetryable(err), tt.isRetryErr)
			}
		})
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"https url", "https://github.com/user/repo", "https://github.com/user/repo"},
		{"with .git suffix", "https://github.com/user/repo.git", "https://github.com/user/repo"},
		{"git@ to https", "git@github.com:user/repo", "https://github.com/user/repo"},
		{"git:// to https", "git://github.com/user/repo", "https://github.com/user/repo"},
		{"git+ prefix", "git+https://github.com/user/repo", "https://github.com/user/repo"},
		{"github shorthand", "github:user/repo", "https://github.com/user/repo"},
		{"gitlab ssh", "git@gitlab.com:group/repo.git", "https://gitlab.com/group/repo"},
		{"with spaces", "  https://github.com/user/repo  ", "https://github.com/user/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRepoURL(tt.input); got != tt.want {
				t.Errorf("NormalizeRepoURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://registry.npmjs.org/lodash", "registry.npmjs.org"},
		{"http://127.0.0.1:4873/-/v1/search", "127.0.0.1:4873"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := hostOf(tt.in); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCodedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"not found", fmt.Errorf("%w: crate nope", ErrNotFound), errs.ErrCodeNotFound},
		{"deadline", fmt.Errorf("%w: %w", ErrNetwork, context.DeadlineExceeded), errs.ErrCodeTimeout},
		{"rate limited", rateLimited("30"), errs.ErrCodeRateLimited},
		{"server error", fmt.Errorf("%w: status 503", ErrNetwork), errs.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CodedError(tt.err, "search %s", "serde")
			if got := errs.GetCode(err); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("cause should be preserved")
			}
		})
	}
	if CodedError(nil, "x") != nil {
		t.Error("CodedError(nil) should be nil")
	}
}
