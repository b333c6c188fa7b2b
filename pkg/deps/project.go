package deps

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/observability"
	"github.com/matzehuels/depman/pkg/version"
)

// Project is a parsed project: its manifest, lockfile and the registry
// metadata fetched for the declared dependencies.
//
// Metadata only holds names declared in Config. A Project is not updated
// by InstallDep or DeleteDep; call Reparse to observe the new manifest.
type Project struct {
	Root     string
	Kind     Kind
	Config   *Config
	Lockfile Lockfile
	Metadata map[string]*DepInfo

	backend Backend
	opts    Options
}

// Parse reads the manifest and lockfile under root and fetches registry
// metadata for every declared dependency.
//
// A missing or malformed manifest aborts the parse. Lockfile problems and
// registry failures do not: they show up as absent versions and metadata.
func Parse(ctx context.Context, root string, b Backend, opts Options) (*Project, error) {
	return parse(ctx, root, b, opts.WithDefaults(), nil)
}

// Reparse re-reads the manifest and lockfile and fetches metadata only for
// names that have none yet. Metadata of names no longer declared is dropped.
func (p *Project) Reparse(ctx context.Context) (*Project, error) {
	return parse(ctx, p.Root, p.backend, p.opts, p.Metadata)
}

func parse(ctx context.Context, root string, b Backend, opts Options, prev map[string]*DepInfo) (*Project, error) {
	if b == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no backend")
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	hooks := observability.Project()
	start := time.Now()
	hooks.OnParseStart(ctx, string(b.Kind()), root)

	cfg, err := b.ParseConfig(root)
	if err != nil {
		hooks.OnParseComplete(ctx, string(b.Kind()), root, observability.ProjectStats{Duration: time.Since(start)}, err)
		return nil, err
	}
	lock := b.ParseLockfile(root)
	if lock == nil {
		lock = Lockfile{}
	}

	meta := make(map[string]*DepInfo)
	var missing []string
	names := Names(cfg)
	for _, name := range names {
		if info, ok := prev[name]; ok {
			meta[name] = info
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		for name, info := range Fetch(ctx, b, missing, opts) {
			meta[name] = info
		}
	}
	opts.Logger.Debug("parsed project", "kind", b.Kind(), "root", root,
		"groups", len(cfg.Groups), "locked", len(lock), "metadata", len(meta), "fetched", len(missing))
	hooks.OnParseComplete(ctx, string(b.Kind()), root, observability.ProjectStats{
		Declared: len(names),
		Locked:   len(lock),
		Fetched:  len(missing),
		Resolved: len(meta),
		Duration: time.Since(start),
	}, nil)

	return &Project{
		Root:     root,
		Kind:     b.Kind(),
		Config:   cfg,
		Lockfile: lock,
		Metadata: meta,
		backend:  b,
		opts:     opts,
	}, nil
}

// Backend returns the backend the project was parsed with.
func (p *Project) Backend() Backend { return p.backend }

// Groups returns the dependency group names in declaration order.
func (p *Project) Groups() []string {
	names := make([]string, 0, len(p.Config.Groups))
	for _, g := range p.Config.Groups {
		names = append(names, g.Name)
	}
	return names
}

// DepsInGroup returns the dependency names of group in declaration order,
// or nil if the group does not exist.
func (p *Project) DepsInGroup(group string) []string {
	g, ok := p.Config.Group(group)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(g.Deps))
	for _, d := range g.Deps {
		names = append(names, d.Name)
	}
	return names
}

// CurrentVersion returns the locked version of name, or nil.
func (p *Project) CurrentVersion(name string) *semver.Version {
	return p.Lockfile[name]
}

// SpecifiedVersion returns the declared requirement of name in group, or
// nil when it is not declared there or did not parse.
func (p *Project) SpecifiedVersion(group, name string) *version.Requirement {
	g, ok := p.Config.Group(group)
	if !ok {
		return nil
	}
	d, ok := g.Dep(name)
	if !ok {
		return nil
	}
	return d.Requirement
}

// Info returns the registry metadata of name.
func (p *Project) Info(name string) (*DepInfo, bool) {
	info, ok := p.Metadata[name]
	return info, ok
}

func (p *Project) versions(name string) []*semver.Version {
	if info, ok := p.Metadata[name]; ok {
		return info.Versions
	}
	return nil
}

// LatestVersion returns the newest registry version of name, or nil.
func (p *Project) LatestVersion(name string) *semver.Version {
	if vs := p.versions(name); len(vs) > 0 {
		return vs[0]
	}
	return nil
}

// BestCompatibleVersion returns the upgrade target of name in group.
//
// The search climbs from the locked version towards newer versions one
// step at a time and stops at the first version the requirement rejects,
// so a compatible version behind an incompatible one is never reached.
// The result is nil when nothing is locked or the locked version is not
// among the registry versions.
func (p *Project) BestCompatibleVersion(group, name string) *semver.Version {
	return climb(p.CurrentVersion(name), p.SpecifiedVersion(group, name), p.versions(name))
}

// climb walks versions (newest first) from the index of cur towards the
// front while req matches.
func climb(cur *semver.Version, req *version.Requirement, versions []*semver.Version) *semver.Version {
	if cur == nil {
		return nil
	}
	i := -1
	for j, v := range versions {
		if version.Same(v, cur) {
			i = j
			break
		}
	}
	if i < 0 {
		return nil
	}

	best := versions[i]
	for j := i - 1; j >= 0; j-- {
		if !req.Matches(versions[j]) {
			break
		}
		best = versions[j]
	}
	return best
}

// UpgradeType classifies the upgrade from the locked version of name to
// its best compatible version.
func (p *Project) UpgradeType(group, name string) UpgradeType {
	return classify(p.CurrentVersion(name), p.BestCompatibleVersion(group, name), p.LatestVersion(name))
}

func classify(cur, best, latest *semver.Version) UpgradeType {
	switch {
	case cur == nil || best == nil:
		return UpgradeNone
	case cur.Major() != best.Major():
		return UpgradeMajor
	case cur.Minor() != best.Minor():
		return UpgradeMinor
	case cur.Patch() != best.Patch():
		return UpgradePatch
	case latest != nil && latest.GreaterThan(cur):
		return UpgradeBreaking
	default:
		return UpgradeNone
	}
}

// Author returns the registry author of name, or [version.Unknown].
func (p *Project) Author(name string) string {
	return p.field(name, func(d *DepInfo) string { return d.Author })
}

// Homepage returns the registry homepage of name, or [version.Unknown].
func (p *Project) Homepage(name string) string {
	return p.field(name, func(d *DepInfo) string { return d.Homepage })
}

// Repository returns the repository URL of name, or [version.Unknown].
func (p *Project) Repository(name string) string {
	return p.field(name, func(d *DepInfo) string { return d.Repository })
}

// License returns the license of name, or [version.Unknown].
func (p *Project) License(name string) string {
	return p.field(name, func(d *DepInfo) string { return d.License })
}

// Description returns the registry description of name, or [version.Unknown].
func (p *Project) Description(name string) string {
	return p.field(name, func(d *DepInfo) string { return d.Description })
}

func (p *Project) field(name string, get func(*DepInfo) string) string {
	info, ok := p.Metadata[name]
	if !ok {
		return version.Unknown
	}
	if s := get(info); s != "" {
		return s
	}
	return version.Unknown
}

// IsVersionsAvailable reports whether registry versions are known for name.
func (p *Project) IsVersionsAvailable(name string) bool {
	return len(p.versions(name)) > 0
}

// PURL returns the package URL of name at its locked version, or without a
// version when nothing is locked.
func (p *Project) PURL(name string) string {
	var ver string
	if cur := p.CurrentVersion(name); cur != nil {
		ver = cur.String()
	}
	return PackageURL(p.Kind, name, ver)
}

// Row is the computed view of one declared dependency.
type Row struct {
	Group      string
	Name       string
	Specified  *version.Requirement
	Current    *semver.Version
	Compatible *semver.Version
	Latest     *semver.Version
	Upgrade    UpgradeType
}

// Rows returns one Row per declared dependency, grouped and ordered as in
// the manifest.
func (p *Project) Rows() []Row {
	var rows []Row
	for _, g := range p.Config.Groups {
		for _, d := range g.Deps {
			rows = append(rows, Row{
				Group:      g.Name,
				Name:       d.Name,
				Specified:  d.Requirement,
				Current:    p.CurrentVersion(d.Name),
				Compatible: p.BestCompatibleVersion(g.Name, d.Name),
				Latest:     p.LatestVersion(d.Name),
				Upgrade:    p.UpgradeType(g.Name, d.Name),
			})
		}
	}
	return rows
}
