// Package pkg holds the depman libraries.
//
// depman reads a project's manifest and lockfile, asks the package registry
// which versions exist, and answers one question per dependency: how far
// can it move without leaving the declared requirement, and how far is the
// newest release. It also writes installs and removals back into the
// manifest without disturbing the rest of the file.
//
// # Layout
//
//   - [version]: semantic versions and requirement matching (npm and Cargo
//     conventions)
//   - [deps]: the Backend contract, the concurrent metadata fetch and the
//     Project query API
//   - [deps/javascript], [deps/rust]: the npm and Cargo backends
//   - [deps/languages]: project detection and backend selection
//   - [integrations]: the shared registry HTTP client, plus the npm and
//     crates.io clients built on it
//   - [cache]: file, Redis and null response caches
//   - [errors]: coded errors
//   - [observability]: hooks for parse, cache and HTTP events
//
// # Data flow
//
//	package.json / Cargo.toml ──► Backend.ParseConfig ──► Config
//	package-lock.json / Cargo.lock ──► Backend.ParseLockfile ──► Lockfile
//	Config names ──► deps.Fetch ──► registry (via cache) ──► Metadata
//	Config + Lockfile + Metadata ──► Project queries
//
// # Quick start
//
//	b, _ := languages.New(deps.KindNpm, deps.Options{})
//	p, err := deps.Parse(ctx, ".", b, deps.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, row := range p.Rows() {
//	    fmt.Println(row.Name, row.Current, row.Compatible, row.Latest, row.Upgrade)
//	}
//
// [version]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/version
// [deps]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/deps
// [deps/javascript]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/deps/javascript
// [deps/rust]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/deps/rust
// [deps/languages]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/deps/languages
// [integrations]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/depman/pkg/observability
package pkg
