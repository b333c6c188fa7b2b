package deps

import (
	"context"
	"strings"

	"github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/version"
)

// InstallDep writes c into the manifest, adding the dependency to c.Group
// or updating its version there. The Project itself is not updated.
func (p *Project) InstallDep(c InstallCandidate) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Version = strings.TrimSpace(c.Version)
	if err := errors.ValidatePackageName(c.Name); err != nil {
		return err
	}
	if version.Parse(c.Version) == nil {
		return errors.New(errors.ErrCodeInvalidVersion, "%q is not a semantic version", c.Version)
	}
	if c.Group == "" {
		return errors.New(errors.ErrCodeInvalidGroup, "a group is required to install %s", c.Name)
	}

	if err := p.backend.Install(c, p.Root); err != nil {
		return err
	}
	p.opts.Logger.Info("installed dependency", "name", c.Name, "version", c.Version, "group", c.Group)
	return nil
}

// DeleteDep removes name from group in the manifest. Deleting a dependency
// that is not declared in group is an error.
func (p *Project) DeleteDep(group, name string) error {
	if err := p.backend.Delete(group, name, p.Root); err != nil {
		return err
	}
	p.opts.Logger.Info("deleted dependency", "name", name, "group", group)
	return nil
}

// SearchDep searches the registry of the project's backend.
func (p *Project) SearchDep(ctx context.Context, term string) ([]SearchResult, error) {
	return Search(ctx, p.backend, term, p.opts)
}

// Search validates term and searches the registry of b, bounded by
// opts.RequestTimeout.
func Search(ctx context.Context, b Backend, term string, opts Options) ([]SearchResult, error) {
	if err := errors.ValidateSearchTerm(term); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	ctx, cancel := context.WithTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	term = strings.TrimSpace(term)
	results, err := b.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("searched registry", "kind", b.Kind(), "term", term, "results", len(results))
	return results, nil
}
