package deps

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Names returns the distinct dependency names of cfg in first-seen order.
func Names(cfg *Config) []string {
	if cfg == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, g := range cfg.Groups {
		for _, d := range g.Deps {
			if !seen[d.Name] {
				seen[d.Name] = true
				names = append(names, d.Name)
			}
		}
	}
	return names
}

// Fetch retrieves metadata for every name concurrently and returns the
// successful results keyed by the requested name.
//
// At most opts.Concurrency requests run at once, each bounded by
// opts.RequestTimeout, and the whole pass by opts.FetchDeadline. A failing
// name is logged at debug level and left out of the result; it never
// cancels the other requests.
func Fetch(ctx context.Context, f Fetcher, names []string, opts Options) map[string]*DepInfo {
	opts = opts.WithDefaults()
	names = distinct(names)
	logger := opts.Logger.With("pass", uuid.NewString()[:8])

	ctx, cancel := context.WithTimeout(ctx, opts.FetchDeadline)
	defer cancel()

	start := time.Now()
	logger.Debug("fetching metadata", "deps", len(names), "concurrency", opts.Concurrency)

	results := make([]*DepInfo, len(names))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				logger.Debug("fetch skipped", "name", name, "err", err)
				return nil
			}
			rctx, cancel := context.WithTimeout(ctx, opts.RequestTimeout)
			defer cancel()

			info, err := f.FetchDepInfo(rctx, name)
			if err != nil {
				logger.Debug("fetch failed", "name", name, "err", err)
				return nil
			}
			results[i] = info
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]*DepInfo, len(names))
	for i, info := range results {
		if info != nil {
			out[names[i]] = info
		}
	}
	logger.Debug("fetched metadata", "ok", len(out), "failed", len(names)-len(out), "took", time.Since(start).Round(time.Millisecond))
	return out
}

func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
