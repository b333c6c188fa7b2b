// Package version is the version model shared by every backend.
//
// # Overview
//
// Versions are strict semantic versions backed by [semver.Version]. A
// [Requirement] is a parsed range expression that remembers the text it was
// declared with. Both follow the same rule: a string that fails to parse is
// represented as nil, never as an error, and nil propagates as "unknown"
// through every query built on top of this package.
//
//	v := version.Parse("1.4.0")                          // *semver.Version
//	req := version.ParseRequirement("^1.0", version.Npm) // *Requirement
//	req.Matches(v)                                       // true
//
// # Conventions
//
// Requirement syntax differs between ecosystems. [Npm] treats a bare version
// as an exact match, while [Cargo] treats it as a caret requirement, so
// "1.2" under Cargo accepts 1.9.0 but under npm accepts only 1.2.0.
//
// [semver.Version]: github.com/Masterminds/semver/v3.Version
package version
