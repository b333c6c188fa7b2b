// Package rust implements the Cargo backend.
//
// A project is a Cargo project when its root contains Cargo.toml. The
// dependencies, dev-dependencies and build-dependencies tables are read in
// the order they appear. An entry is either a requirement string or a
// table with a "version" key, written inline or as a [dependencies.name]
// section. Entries without a version (path, git or workspace
// dependencies) have an absent requirement. A bare requirement such as
// "1.2" means "^1.2", as it does for Cargo.
//
// Installed versions come from Cargo.lock. When a crate is locked at more
// than one version, the version a workspace member depends on wins, and
// otherwise the highest.
//
// Install and Delete edit Cargo.toml line by line so that comments and
// layout survive, then decode the result again before it is written.
package rust
