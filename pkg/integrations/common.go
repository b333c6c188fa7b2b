package integrations

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/depman/pkg/buildinfo"
	errs "github.com/matzehuels/depman/pkg/errors"
)

const httpTimeout = 10 * time.Second

// DefaultUserAgent identifies depman to registries; crates.io rejects
// requests without one.
var DefaultUserAgent = buildinfo.UserAgent()

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a registry answers with a body that cannot be decoded.
	ErrDecode = errors.New("malformed registry response")

	// ErrCircuitOpen is returned without contacting the host while its
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("registry temporarily unavailable")
)

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"git@gitlab.com:", "https://gitlab.com/",
	"github:", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, git+ and github: prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape percent-encodes a single path segment. Scoped npm names keep
// their "@" but have the "/" encoded, which is what the npm registry expects.
func PathEscape(s string) string { return url.PathEscape(s) }

// TrimBaseURL removes trailing slashes so paths can be appended with "/".
func TrimBaseURL(s string) string { return strings.TrimRight(s, "/") }

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return u.Host
}

// CodedError wraps a registry error into a coded error for callers outside
// the integration layer. Missing resources map to NOT_FOUND, deadline
// expiry to TIMEOUT and everything else to NETWORK_ERROR.
func CodedError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	code := errs.ErrCodeNetwork
	switch {
	case errors.Is(err, ErrNotFound):
		code = errs.ErrCodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = errs.ErrCodeTimeout
	case errors.As(err, new(*errs.RateLimitedError)):
		code = errs.ErrCodeRateLimited
	}
	return errs.Wrap(code, err, format, args...)
}
