package version

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Unknown is displayed in place of an absent version or requirement.
const Unknown = "unknown"

// Convention selects how requirement strings are interpreted.
type Convention int

const (
	// Npm follows node-semver: bare versions are exact matches.
	Npm Convention = iota
	// Cargo follows Cargo: bare versions are caret requirements and
	// comma-separated comparators are combined with AND.
	Cargo
)

// Requirement is a parsed version range together with its declared text.
type Requirement struct {
	raw string
	c   *semver.Constraints
}

// Parse parses a strict semantic version. It returns nil if s is not one.
func Parse(s string) *semver.Version {
	v, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return v
}

// ParseRequirement parses a requirement under the given convention.
// It returns nil if s cannot be parsed.
func ParseRequirement(s string, conv Convention) *Requirement {
	raw := strings.TrimSpace(s)
	expr := raw
	switch conv {
	case Cargo:
		expr = cargoExpr(raw)
	case Npm:
		if expr == "" {
			expr = "*"
		}
	}
	if expr == "" {
		return nil
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil
	}
	return &Requirement{raw: raw, c: c}
}

// cargoExpr rewrites operator-less comparators to caret comparators.
func cargoExpr(s string) string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			p = "^" + p
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}

// Matches reports whether v satisfies the requirement. A nil requirement or
// a nil version never matches.
func (r *Requirement) Matches(v *semver.Version) bool {
	if r == nil || v == nil {
		return false
	}
	return r.c.Check(v)
}

// String returns the requirement as it was declared.
func (r *Requirement) String() string {
	if r == nil {
		return Unknown
	}
	return r.raw
}

// Same reports whether a and b are the same version, build metadata included.
func Same(a, b *semver.Version) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b) && a.Metadata() == b.Metadata()
}

// SortDescending returns vs ordered newest first with nil entries and exact
// duplicates removed. Versions of equal precedence are ordered by build
// metadata. The input slice is not modified.
func SortDescending(vs []*semver.Version) []*semver.Version {
	out := make([]*semver.Version, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b *semver.Version) int {
		if c := b.Compare(a); c != 0 {
			return c
		}
		return strings.Compare(a.Metadata(), b.Metadata())
	})
	return slices.CompactFunc(out, Same)
}

// ParseAll parses every string in ss, dropping the ones that are not valid
// versions, and returns the result newest first.
func ParseAll(ss []string) []*semver.Version {
	vs := make([]*semver.Version, 0, len(ss))
	for _, s := range ss {
		if v := Parse(s); v != nil {
			vs = append(vs, v)
		}
	}
	return SortDescending(vs)
}

// Display formats v, using [Unknown] for nil.
func Display(v *semver.Version) string {
	if v == nil {
		return Unknown
	}
	return v.String()
}
