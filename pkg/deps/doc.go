// Package deps is the project resolution engine: it reads a project's
// dependency declarations, cross-references them with the lockfile and the
// package registry, and computes upgrade recommendations.
//
// # Overview
//
// A [Project] combines three sources:
//
//   - the manifest (package.json, Cargo.toml), parsed into a [Config]
//   - the lockfile (package-lock.json, Cargo.lock), parsed into a [Lockfile]
//   - registry metadata per dependency, fetched into [DepInfo] values
//
// Ecosystems plug in through the [Backend] interface. Implementations live
// in subpackages ([javascript], [rust]) and are selected by [languages].
//
// # Parsing
//
//	b, _ := languages.New(deps.KindNpm, opts)
//	p, err := deps.Parse(ctx, ".", b, opts)
//	if err != nil {
//	    return err // manifest missing or malformed
//	}
//	for _, row := range p.Rows() {
//	    fmt.Println(row.Name, row.Current, row.Compatible, row.Upgrade)
//	}
//
// Only the manifest is required. A missing lockfile means nothing is
// installed, and a dependency whose registry lookup failed simply has no
// metadata: its queries report nil versions and [version.Unknown] fields.
//
// # Fetching
//
// [Fetch] issues one registry request per distinct dependency name, in
// parallel up to [Options].Concurrency. Each request has its own timeout and
// the pass as a whole has a deadline. Failures are logged at debug level
// and dropped. [Project.Reparse] reuses the previous metadata and fetches
// only names that have none.
//
// # Upgrade Resolution
//
// [Project.BestCompatibleVersion] climbs from the locked version towards
// newer registry versions while the declared requirement keeps matching,
// and stops at the first mismatch. It never jumps over an incompatible
// version, and it has no answer when the locked version is unknown to the
// registry. [Project.UpgradeType] compares the locked version with that
// target:
//
//   - Major, Minor, Patch: the first component that differs
//   - Breaking: no compatible step, but a newer version exists
//   - None: up to date, or nothing to compare
//
// # Mutation
//
// [Project.InstallDep] and [Project.DeleteDep] edit the manifest file in
// place through the backend, preserving formatting, comments and order of
// unrelated entries. The file is replaced atomically and only after the
// edit succeeded. The Project is not updated; call Reparse.
//
// [javascript]: github.com/matzehuels/depman/pkg/deps/javascript
// [rust]: github.com/matzehuels/depman/pkg/deps/rust
// [languages]: github.com/matzehuels/depman/pkg/deps/languages
// [version.Unknown]: github.com/matzehuels/depman/pkg/version.Unknown
package deps
