package javascript

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depman/pkg/cache"
	"github.com/matzehuels/depman/pkg/deps"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/npm"
	"github.com/matzehuels/depman/pkg/version"
)

const (
	manifestFile = "package.json"
	lockFile     = "package-lock.json"
	searchSize   = 20
	packagePage  = "https://www.npmjs.com/package/"
)

// Groups lists the dependency sections read from package.json.
var Groups = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}

// Backend is the npm implementation of [deps.Backend].
type Backend struct {
	client  *npm.Client
	logger  *log.Logger
	refresh bool
}

var _ deps.Backend = (*Backend)(nil)

// New creates an npm backend. opts.RegistryURL replaces the public
// registry; cached responses are then kept apart from the public ones.
func New(opts deps.Options) *Backend {
	opts = opts.WithDefaults()
	store := opts.Cache
	if opts.RegistryURL != "" {
		store = cache.Scoped(store, cache.RegistryScope(opts.RegistryURL))
	}
	return &Backend{
		client:  npm.NewClient(opts.RegistryURL, store, opts.CacheTTL),
		logger:  opts.Logger,
		refresh: opts.Refresh,
	}
}

// Client returns the registry client.
func (b *Backend) Client() *npm.Client { return b.client }

func (b *Backend) Kind() deps.Kind { return deps.KindNpm }

func (b *Backend) Detect(root string) bool { return exists(root, manifestFile) }

func (b *Backend) FetchDepInfo(ctx context.Context, name string) (*deps.DepInfo, error) {
	p, err := b.client.FetchPackage(ctx, name, b.refresh)
	if err != nil {
		return nil, err
	}
	repo := p.Repository
	if repo == "" {
		repo = packagePage + name
	}
	return &deps.DepInfo{
		Kind:        deps.KindNpm,
		Name:        name,
		Author:      p.Author,
		Homepage:    p.HomePage,
		Repository:  repo,
		License:     p.License,
		Description: p.Description,
		Versions:    version.ParseAll(p.Versions),
	}, nil
}

func (b *Backend) Search(ctx context.Context, term string) ([]deps.SearchResult, error) {
	hits, err := b.client.Search(ctx, term, searchSize)
	if err != nil {
		return nil, integrations.CodedError(err, "search npm for %q", term)
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
	return errs.New(errs.ErrCodeInvalidGroup, "unknown npm dependency group %q (available: %s)", group, strings.Join(Groups, ", "))
}
