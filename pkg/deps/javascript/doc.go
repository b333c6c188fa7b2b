// Package javascript implements the npm backend.
//
// A project is an npm project when its root contains package.json. The
// backend reads four dependency groups from it, in the order they appear
// in the file:
//
//   - dependencies
//   - devDependencies
//   - peerDependencies
//   - optionalDependencies
//
// Requirements follow node-semver, so a bare "1.2.3" pins an exact
// version. Specs that are not ranges (tags, "file:" or git URLs) are kept
// with an absent requirement.
//
// Installed versions come from package-lock.json. Both the v1 layout
// ("dependencies") and the v2/v3 layout ("packages") are understood; only
// top-level node_modules entries count.
//
// Install and Delete edit package.json with [sjson] so that everything
// except the touched entry keeps its original bytes.
//
// [sjson]: https://github.com/tidwall/sjson
package javascript
