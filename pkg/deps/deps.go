package deps

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depman/pkg/cache"
)

const (
	DefaultConcurrency    = 16               // Default concurrent registry requests
	DefaultRequestTimeout = 15 * time.Second // Default per-request timeout
	DefaultFetchDeadline  = 60 * time.Second // Default deadline for a whole fetch pass
	DefaultCacheTTL       = time.Hour        // Default registry response cache duration
)

// Options configures a Project and its registry backend.
type Options struct {
	Concurrency    int           // Maximum concurrent registry requests (default: 16)
	RequestTimeout time.Duration // Timeout for one registry request (default: 15s)
	FetchDeadline  time.Duration // Deadline for a whole fetch pass (default: 60s)
	RegistryURL    string        // Overrides the backend's registry base URL
	Cache          cache.Cache   // Registry response cache (default: none)
	CacheTTL       time.Duration // Registry response cache duration (default: 1h)
	Refresh        bool          // Bypass cached registry responses
	Logger         *log.Logger   // Debug and progress logging (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.FetchDeadline <= 0 {
		opts.FetchDeadline = DefaultFetchDeadline
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}
