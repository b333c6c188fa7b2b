package deps

import (
	"context"
	"strings"

	"github.com/matzehuels/depman/pkg/errors"
)

// Kind identifies a package ecosystem. Its value doubles as the package URL
// type.
type Kind string

const (
	KindNpm   Kind = "npm"
	KindCargo Kind = "cargo"
)

// Kinds returns every supported kind in detection priority order.
func Kinds() []Kind {
	return []Kind{KindNpm, KindCargo}
}

// ParseKind parses a kind name, case-insensitively. "rust" and
// "javascript" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "npm", "javascript", "js", "node":
		return KindNpm, nil
	case "cargo", "rust", "crates":
		return KindCargo, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported project kind %q (available: npm, cargo)", s)
}

// Backend normalizes one ecosystem's manifest, lockfile and registry.
//
// ParseConfig fails when the manifest is missing or malformed. ParseLockfile
// never fails: a missing or unreadable lockfile yields an empty Lockfile.
// Install and Delete rewrite the manifest in place, leaving it untouched on
// any error.
type Backend interface {
	Kind() Kind
	Detect(root string) bool
	ParseConfig(root string) (*Config, error)
	ParseLockfile(root string) Lockfile
	FetchDepInfo(ctx context.Context, name string) (*DepInfo, error)
	Search(ctx context.Context, term string) ([]SearchResult, error)
	Install(c InstallCandidate, root string) error
	Delete(group, name, root string) error
}

// Fetcher retrieves registry metadata for one dependency.
type Fetcher interface {
	FetchDepInfo(ctx context.Context, name string) (*DepInfo, error)
}
