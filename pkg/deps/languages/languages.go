// Package languages selects the backend for a project directory.
package languages

import (
	"context"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/deps/javascript"
	"github.com/matzehuels/depman/pkg/deps/rust"
	"github.com/matzehuels/depman/pkg/errors"
)

// Detect returns the kind of the project at root, trying [deps.Kinds] in
// order. It only looks at the file system.
func Detect(root string) (deps.Kind, bool) {
	for _, k := range deps.Kinds() {
		b, err := New(k, deps.Options{})
		if err == nil && b.Detect(root) {
			return k, true
		}
	}
	return "", false
}

// New creates the backend for kind.
func New(kind deps.Kind, opts deps.Options) (deps.Backend, error) {
	switch kind {
	case deps.KindNpm:
		return javascript.New(opts), nil
	case deps.KindCargo:
		return rust.New(opts), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported project kind %q", kind)
}

// Open detects the project at root and parses it.
func Open(ctx context.Context, root string, opts deps.Options) (*deps.Project, error) {
	kind, ok := Detect(root)
	if !ok {
		return nil, errors.New(errors.ErrCodeNoProject, "no package.json or Cargo.toml in %s", root)
	}
	return OpenKind(ctx, root, kind, opts)
}

// OpenKind parses the project at root with the backend for kind, skipping
// detection.
func OpenKind(ctx context.Context, root string, kind deps.Kind, opts deps.Options) (*deps.Project, error) {
	b, err := New(kind, opts)
	if err != nil {
		return nil, err
	}
	return deps.Parse(ctx, root, b, opts)
}
