package languages

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations/registrytest"
)

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  deps.Kind
		ok    bool
	}{
		{"empty", nil, "", false},
		{"npm", []string{"package.json"}, deps.KindNpm, true},
		{"cargo", []string{"Cargo.toml"}, deps.KindCargo, true},
		{"both prefers npm", []string{"Cargo.toml", "package.json"}, deps.KindNpm, true},
		{"lockfile only", []string{"Cargo.lock"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f, "")
			}
			got, ok := Detect(dir)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Detect() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, k := range deps.Kinds() {
		b, err := New(k, deps.Options{})
		if err != nil {
			t.Fatalf("New(%s): %v", k, err)
		}
		if b.Kind() != k {
			t.Errorf("New(%s).Kind() = %s", k, b.Kind())
		}
	}
	if _, err := New("pip", deps.Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("New(pip) error = %v, want UNSUPPORTED", err)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(context.Background(), t.TempDir(), deps.Options{}); !errors.Is(err, errors.ErrCodeNoProject) {
		t.Errorf("Open on empty dir = %v, want NO_PROJECT", err)
	}

	srv := registrytest.New(t)
	srv.Add(registrytest.Package{Name: "serde", Versions: []string{"1.0.190", "1.0.100"}})

	dir := t.TempDir()
	touch(t, dir, "Cargo.toml", "[dependencies]\nserde = \"1\"\n")
	touch(t, dir, "Cargo.lock", "[[package]]\nname = \"serde\"\nversion = \"1.0.100\"\n")

	p, err := Open(context.Background(), dir, deps.Options{RegistryURL: srv.CratesURL()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.Kind != deps.KindCargo {
		t.Errorf("Kind = %s", p.Kind)
	}
	if got := p.BestCompatibleVersion("dependencies", "serde"); got == nil || got.String() != "1.0.190" {
		t.Errorf("best = %v, want 1.0.190", got)
	}
	if srv.Hits("serde") != 1 {
		t.Errorf("serde hits = %d", srv.Hits("serde"))
	}
}
