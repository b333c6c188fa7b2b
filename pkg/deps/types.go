package deps

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/package-url/packageurl-go"

	"github.com/matzehuels/depman/pkg/version"
)

// Config is the parsed manifest of a project.
type Config struct {
	Name    string          // Project name, empty if the manifest has none
	Version *semver.Version // Project version, nil if absent or not semver
	Groups  []Group         // Dependency groups in declaration order
}

// Group is a named dependency section such as "dependencies".
type Group struct {
	Name string
	Deps []Dep // In declaration order, names unique within the group
}

// Dep is a single declared dependency.
type Dep struct {
	Name        string
	Requirement *version.Requirement // nil when the declared range does not parse
}

// Group returns the group called name.
func (c *Config) Group(name string) (*Group, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			return &c.Groups[i], true
		}
	}
	return nil, false
}

// Dep returns the dependency called name.
func (g *Group) Dep(name string) (*Dep, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Deps {
		if g.Deps[i].Name == name {
			return &g.Deps[i], true
		}
	}
	return nil, false
}

// Declares reports whether any group declares name.
func (c *Config) Declares(name string) bool {
	if c == nil {
		return false
	}
	for i := range c.Groups {
		if _, ok := c.Groups[i].Dep(name); ok {
			return true
		}
	}
	return false
}

// Lockfile maps dependency names to their resolved versions. A missing
// name means the dependency is not installed.
type Lockfile map[string]*semver.Version

// DepInfo is registry metadata for one dependency. Empty strings mean the
// registry did not provide the field.
type DepInfo struct {
	Kind        Kind
	Name        string
	Author      string
	Homepage    string
	Repository  string
	License     string
	Description string
	Versions    []*semver.Version // Newest first, no duplicates
}

// PURL returns the package URL of the dependency without a version,
// e.g. "pkg:npm/%40types/node".
func (d *DepInfo) PURL() string {
	return PackageURL(d.Kind, d.Name, "")
}

// PackageURL builds a package URL for name in the registry of kind.
// An npm scope becomes the purl namespace.
func PackageURL(kind Kind, name, ver string) string {
	var namespace string
	if kind == KindNpm && strings.HasPrefix(name, "@") {
		if i := strings.IndexByte(name, '/'); i > 0 {
			namespace, name = name[:i], name[i+1:]
		}
	}
	return packageurl.NewPackageURL(string(kind), namespace, name, ver, nil, "").ToString()
}

// SearchResult is one registry search hit.
type SearchResult struct {
	Name    string
	Version string
}

// InstallCandidate names a dependency version to write into a group.
type InstallCandidate struct {
	Name    string
	Version string
	Group   string
}

// UpgradeType classifies the step from the installed version to the best
// compatible version.
type UpgradeType int

const (
	UpgradeNone UpgradeType = iota
	UpgradePatch
	UpgradeMinor
	UpgradeMajor
	// UpgradeBreaking means no compatible step exists, but a newer version
	// outside the requirement does.
	UpgradeBreaking
)

func (u UpgradeType) String() string {
	switch u {
	case UpgradePatch:
		return "patch"
	case UpgradeMinor:
		return "minor"
	case UpgradeMajor:
		return "major"
	case UpgradeBreaking:
		return "breaking"
	default:
		return "none"
	}
}
