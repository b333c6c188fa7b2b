package rust

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/version"
)

type cargoLock struct {
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Dependencies []string `toml:"dependencies"`
}

// ParseLockfile reads Cargo.lock under root. A missing or broken lockfile
// yields an empty Lockfile.
func (b *Backend) ParseLockfile(root string) deps.Lockfile {
	data, err := os.ReadFile(filepath.Join(root, lockFile))
	if err != nil {
		if os.IsNotExist(err) {
			b.logger.Debug("no lockfile", "file", lockFile)
		} else {
			b.logger.Warn("cannot read lockfile", "file", lockFile, "err", err)
		}
		return deps.Lockfile{}
	}
	var lf cargoLock
	if err := toml.Unmarshal(data, &lf); err != nil {
		b.logger.Warn("ignoring malformed lockfile", "file", lockFile, "err", err)
		return deps.Lockfile{}
	}
	return resolveLock(lf.Packages)
}

// resolveLock picks one version per crate. Packages without a source are
// workspace members; the versions they depend on take precedence over the
// highest locked version.
func resolveLock(pkgs []lockPackage) deps.Lockfile {
	locked := make(map[string][]*semver.Version)
	for _, p := range pkgs {
		if v := version.Parse(p.Version); v != nil {
			locked[p.Name] = append(locked[p.Name], v)
		}
	}

	direct := make(map[string]*semver.Version)
	for _, p := range pkgs {
		if p.Source != "" {
			continue
		}
		for _, ref := range p.Dependencies {
			// "name", "name version" or "name version (source)"
			fields := strings.Fields(ref)
			if len(fields) < 2 {
				continue
			}
			if _, ok := direct[fields[0]]; ok {
				continue
			}
			if v := version.Parse(fields[1]); v != nil {
				direct[fields[0]] = v
			}
		}
	}

	lock := make(deps.Lockfile, len(locked))
	for name, vs := range locked {
		if v, ok := direct[name]; ok {
			lock[name] = v
			continue
		}
		lock[name] = version.SortDescending(vs)[0]
	}
	return lock
}
