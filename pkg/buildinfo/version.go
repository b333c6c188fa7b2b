// Package buildinfo holds the depman build version.
//
// The variables are stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/depman/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/depman/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/depman/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/depman
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies this build to package registries, e.g.
// "depman/v0.3.0 (+https://github.com/matzehuels/depman)".
func UserAgent() string {
	return fmt.Sprintf("depman/%s (+https://github.com/matzehuels/depman)", Version)
}
