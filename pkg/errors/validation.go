package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNameLen = 256

// Sequences that must never reach a registry URL or a cache key.
var unsafeSequences = []string{"..", "//", "\\", "\x00"}

// ValidatePackageName applies the checks shared by every registry: the name
// is non-empty, at most 256 bytes, free of control characters and of path
// traversal sequences. [ValidateNpmPackageName] and
// [ValidateCratesPackageName] add the registry's own naming rules.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxNameLen:
		return New(ErrCodeInvalidPackage, "package name longer than %d characters", maxNameLen)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPackage, "package name contains control characters")
	}
	for _, seq := range unsafeSequences {
		if strings.Contains(name, seq) {
			return New(ErrCodeInvalidPackage, "package name %q contains %q", name, seq)
		}
	}
	return nil
}

// ValidateSearchTerm checks a free-text registry query. Surrounding
// whitespace is ignored.
func ValidateSearchTerm(term string) error {
	term = strings.TrimSpace(term)
	switch {
	case term == "":
		return New(ErrCodeInvalidInput, "search term cannot be empty")
	case len(term) > maxNameLen:
		return New(ErrCodeInvalidInput, "search term longer than %d characters", maxNameLen)
	case strings.IndexFunc(term, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "search term contains control characters")
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs, which is all a
// registry base URL may be.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "https://") && !strings.HasPrefix(rawURL, "http://") {
		return New(ErrCodeInvalidInput, "URL %q must use http or https", rawURL)
	}
	return nil
}

// Legacy npm packages may contain uppercase letters, so case is not enforced.
var npmName = regexp.MustCompile(`^(@[a-zA-Z0-9-~][a-zA-Z0-9-._~]*/)?[a-zA-Z0-9-~][a-zA-Z0-9-._~]*$`)

// ValidateNpmPackageName checks name against npm's naming rules, scoped
// names included.
func ValidateNpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if !npmName.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}
	return nil
}

const maxCrateLen = 64

var crateName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCratesPackageName checks name against crates.io's naming rules.
func ValidateCratesPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if len(name) > maxCrateLen {
		return New(ErrCodeInvalidPackage, "crate name longer than %d characters", maxCrateLen)
	}
	if !crateName.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid crates.io package name: %q", name)
	}
	return nil
}
