package javascript

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/version"
)

// ParseLockfile reads package-lock.json under root. A missing or broken
// lockfile yields an empty Lockfile.
func (b *Backend) ParseLockfile(root string) deps.Lockfile {
	lock := deps.Lockfile{}
	data, err := os.ReadFile(filepath.Join(root, lockFile))
	if err != nil {
		if os.IsNotExist(err) {
			b.logger.Debug("no lockfile", "file", lockFile)
		} else {
			b.logger.Warn("cannot read lockfile", "file", lockFile, "err", err)
		}
		return lock
	}
	if !gjson.ValidBytes(data) {
		b.logger.Warn("ignoring malformed lockfile", "file", lockFile)
		return lock
	}

	doc := gjson.ParseBytes(data)
	add := func(name string, entry gjson.Result) {
		if v := version.Parse(entry.Get("version").String()); v != nil {
			lock[name] = v
		}
	}

	// lockfileVersion 2 and 3
	if pkgs := doc.Get("packages"); pkgs.IsObject() {
		pkgs.ForEach(func(key, entry gjson.Result) bool {
			if name, ok := topLevelPackage(key.String()); ok {
				add(name, entry)
			}
			return true
		})
		return lock
	}

	doc.Get("dependencies").ForEach(func(key, entry gjson.Result) bool {
		add(key.String(), entry)
		return true
	})
	return lock
}

// topLevelPackage extracts the package name from a "packages" key such as
// "node_modules/@scope/name". Nested installs are rejected.
func topLevelPackage(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, "node_modules/")
	if !ok || name == "" || strings.Contains(name, "/node_modules/") {
		return "", false
	}
	return name, true
}
