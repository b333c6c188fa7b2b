// Package manifest rewrites manifest files in place.
//
// Backends edit a manifest in memory, validate the result and hand it to
// [WriteFile], which replaces the file atomically. A failed write leaves
// the original bytes untouched.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/depman/pkg/errors"
)

// Read returns the contents of path. A missing file is reported as
// [errors.ErrCodeFileNotFound].
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s not found", filepath.Base(path))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", filepath.Base(path))
	}
	return data, nil
}

// WriteFile replaces path with data. The data is written to a temporary
// file in the same directory which is then renamed over path, keeping the
// file mode of the original.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", base)
	}
	name := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(name)
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", base)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", base)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", base)
	}
	return nil
}
