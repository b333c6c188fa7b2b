package rust

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depman/pkg/cache"
	"github.com/matzehuels/depman/pkg/deps"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/crates"
	"github.com/matzehuels/depman/pkg/version"
)

const (
	manifestFile = "Cargo.toml"
	lockFile     = "Cargo.lock"
	searchSize   = 20
	cratePage    = "https://crates.io/crates/"
)

// Groups lists the dependency tables read from Cargo.toml.
var Groups = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// Backend is the Cargo implementation of [deps.Backend].
type Backend struct {
	client  *crates.Client
	logger  *log.Logger
	refresh bool
}

var _ deps.Backend = (*Backend)(nil)

// New creates a Cargo backend. opts.RegistryURL replaces the crates.io API
// root; cached responses are then kept apart from the public ones.
func New(opts deps.Options) *Backend {
	opts = opts.WithDefaults()
	store := opts.Cache
	if opts.RegistryURL != "" {
		store = cache.Scoped(store, cache.RegistryScope(opts.RegistryURL))
	}
	return &Backend{
		client:  crates.NewClient(opts.RegistryURL, store, opts.CacheTTL),
		logger:  opts.Logger,
		refresh: opts.Refresh,
	}
}

// Client returns the registry client.
func (b *Backend) Client() *crates.Client { return b.client }

func (b *Backend) Kind() deps.Kind { return deps.KindCargo }

func (b *Backend) Detect(root string) bool {
	fi, err := os.Stat(filepath.Join(root, manifestFile))
	return err == nil && !fi.IsDir()
}

func (b *Backend) FetchDepInfo(ctx context.Context, name string) (*deps.DepInfo, error) {
	cr, err := b.client.FetchCrate(ctx, name, b.refresh)
	if err != nil {
		return nil, err
	}
	repo := cr.Repository
	if repo == "" {
		repo = cratePage + name
	}
	return &deps.DepInfo{
		Kind:        deps.KindCargo,
		Name:        name,
		Author:      cr.PublishedBy,
		Homepage:    cr.HomePage,
		Repository:  repo,
		License:     cr.License,
		Description: cr.Description,
		Versions:    version.ParseAll(cr.Versions),
	}, nil
}

func (b *Backend) Search(ctx context.Context, term string) ([]deps.SearchResult, error) {
	hits, err := b.client.Search(ctx, term, searchSize)
	if err != nil {
		return nil, integrations.CodedError(err, "search crates.io for %q", term)
	}
	out := make([]deps.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, deps.SearchResult{Name: h.Name, Version: h.Version})
	}
	return out, nil
}

func isGroup(name string) bool { return slices.Contains(Groups, name) }

func checkGroup(group string) error {
	if isGroup(group) {
		return nil
	}
	return errs.New(errs.ErrCodeInvalidGroup, "unknown Cargo dependency table %q (available: %s)", group, strings.Join(Groups, ", "))
}
