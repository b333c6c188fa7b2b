package javascript

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/depman/pkg/deps"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations/registrytest"
)

const packageJSON = `{
  "name": "my-app",
  "version": "1.0.0",
  "devDependencies": {
    "jest": "^29.0.0"
  },
  "dependencies": {
    "lodash": "^4.17.0",
    "express": "4.18.2",
    "local": "file:../local",
    "tagged": "latest"
  },
  "scripts": {
    "test": "jest"
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	b := New(deps.Options{})
	if b.Detect(dir) {
		t.Error("Detect() = true on empty dir")
	}
	writeFile(t, dir, "package.json", "{}")
	if !b.Detect(dir) {
		t.Error("Detect() = false with package.json")
	}
	if b.Kind() != deps.KindNpm {
		t.Errorf("Kind() = %v", b.Kind())
	}
}

func TestParseConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", packageJSON)

	cfg, err := New(deps.Options{}).ParseConfig(dir)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Name != "my-app" || cfg.Version.String() != "1.0.0" {
		t.Errorf("name=%q version=%v", cfg.Name, cfg.Version)
	}

	var groups []string
	for _, g := range cfg.Groups {
		groups = append(groups, g.Name)
	}
	if !slices.Equal(groups, []string{"devDependencies", "dependencies"}) {
		t.Errorf("groups = %v, want file order", groups)
	}

	g, _ := cfg.Group("dependencies")
	var names []string
	for _, d := range g.Deps {
		names = append(names, d.Name)
	}
	if !slices.Equal(names, []string{"lodash", "express", "local", "tagged"}) {
		t.Errorf("deps = %v, want file order", names)
	}

	tests := []struct {
		name string
		want string // "" means absent requirement
	}{
		{"lodash", "^4.17.0"},
		{"express", "4.18.2"},
		{"local", ""},
		{"tagged", ""},
	}
	for _, tt := range tests {
		d, ok := g.Dep(tt.name)
		if !ok {
			t.Fatalf("%s not parsed", tt.name)
		}
		if tt.want == "" {
			if d.Requirement != nil {
				t.Errorf("%s requirement = %v, want absent", tt.name, d.Requirement)
			}
			continue
		}
		if d.Requirement.String() != tt.want {
			t.Errorf("%s requirement = %v, want %s", tt.name, d.Requirement, tt.want)
		}
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string // "" means no file
		code    errs.Code
	}{
		{"missing", "", errs.ErrCodeFileNotFound},
		{"invalid json", `{"dependencies": {`, errs.ErrCodeInvalidManifest},
		{"not an object", `["lodash"]`, errs.ErrCodeInvalidManifest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				writeFile(t, dir, "package.json", tt.content)
			}
			_, err := New(deps.Options{}).ParseConfig(dir)
			if !errs.Is(err, tt.code) {
				t.Errorf("ParseConfig error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name: "v1",
			content: `{"lockfileVersion": 1, "dependencies": {
				"lodash": {"version": "4.17.21"},
				"local": {"version": "file:../local"}
			}}`,
			want: map[string]string{"lodash": "4.17.21"},
		},
		{
			name: "v3 packages",
			content: `{"lockfileVersion": 3, "packages": {
				"": {"name": "my-app", "version": "1.0.0"},
				"node_modules/lodash": {"version": "4.17.21"},
				"node_modules/@types/node": {"version": "20.1.0"},
				"node_modules/express/node_modules/debug": {"version": "2.6.9"},
				"node_modules/debug": {"version": "4.3.4"}
			}}`,
			want: map[string]string{"lodash": "4.17.21", "@types/node": "20.1.0", "debug": "4.3.4"},
		},
		{
			name:    "malformed",
			content: `{"packages": `,
			want:    map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "package-lock.json", tt.content)
			lock := New(deps.Options{}).ParseLockfile(dir)
			if len(lock) != len(tt.want) {
				t.Errorf("lockfile = %v, want %v", lock, tt.want)
			}
			for name, v := range tt.want {
				if lock[name].String() != v {
					t.Errorf("%s = %v, want %s", name, lock[name], v)
				}
			}
		})
	}
}

func TestParseLockfileMissing(t *testing.T) {
	lock := New(deps.Options{}).ParseLockfile(t.TempDir())
	if lock == nil || len(lock) != 0 {
		t.Errorf("lockfile = %v, want empty", lock)
	}
}

func TestFetchDepInfo(t *testing.T) {
	srv := registrytest.New(t)
	srv.Add(
		registrytest.Package{
			Name:        "lodash",
			Author:      "John-David Dalton",
			License:     "MIT",
			Description: "Lodash modular utilities.",
			Homepage:    "https://lodash.com/",
			Repository:  "git+https://github.com/lodash/lodash.git",
			Versions:    []string{"4.17.21", "4.17.20", "not-a-version", "3.10.1"},
		},
		registrytest.Package{Name: "bare", Versions: []string{"1.0.0"}},
	)
	b := New(deps.Options{RegistryURL: srv.NpmURL()})

	info, err := b.FetchDepInfo(context.Background(), "lodash")
	if err != nil {
		t.Fatalf("FetchDepInfo: %v", err)
	}
	if info.Author != "John-David Dalton" || info.License != "MIT" || info.Homepage != "https://lodash.com/" {
		t.Errorf("info = %+v", info)
	}
	if info.Repository != "https://github.com/lodash/lodash" {
		t.Errorf("Repository = %q", info.Repository)
	}
	var got []string
	for _, v := range info.Versions {
		got = append(got, v.String())
	}
	if !slices.Equal(got, []string{"4.17.21", "4.17.20", "3.10.1"}) {
		t.Errorf("Versions = %v, want descending without invalid entries", got)
	}

	info, err = b.FetchDepInfo(context.Background(), "bare")
	if err != nil {
		t.Fatal(err)
	}
	if info.Repository != "https://www.npmjs.com/package/bare" {
		t.Errorf("fallback Repository = %q", info.Repository)
	}

	if _, err := b.FetchDepInfo(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown package")
	}
}

func TestSearch(t *testing.T) {
	srv := registrytest.New(t)
	srv.Add(
		registrytest.Package{Name: "react", Versions: []string{"18.2.0"}},
		registrytest.Package{Name: "react-dom", Versions: []string{"18.2.0"}},
		registrytest.Package{Name: "vue", Versions: []string{"3.4.0"}},
	)
	b := New(deps.Options{RegistryURL: srv.NpmURL()})

	res, err := b.Search(context.Background(), "react")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []deps.SearchResult{{Name: "react", Version: "18.2.0"}, {Name: "react-dom", Version: "18.2.0"}}
	if !slices.Equal(res, want) {
		t.Errorf("Search() = %v, want %v", res, want)
	}
}

func TestInstallUpdatesOnlyTheEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "package.json", packageJSON)

	err := New(deps.Options{}).Install(deps.InstallCandidate{Name: "lodash", Version: "4.17.21", Group: "dependencies"}, dir)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	want := strings.Replace(packageJSON, `"lodash": "^4.17.0"`, `"lodash": "^4.17.21"`, 1)
	if got := readFile(t, path); got != want {
		t.Errorf("package.json =\n%s\nwant\n%s", got, want)
	}
}

func TestInstallAddsEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", packageJSON)
	b := New(deps.Options{})

	for _, c := range []deps.InstallCandidate{
		{Name: "@types/node", Version: "20.1.0", Group: "devDependencies"},
		{Name: "lodash.merge", Version: "4.6.2", Group: "dependencies"},
		{Name: "react", Version: "18.2.0", Group: "peerDependencies"},
	} {
		if err := b.Install(c, dir); err != nil {
			t.Fatalf("Install(%s): %v", c.Name, err)
		}
	}

	cfg, err := b.ParseConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct{ group, name, want string }{
		{"devDependencies", "@types/node", "^20.1.0"},
		{"devDependencies", "jest", "^29.0.0"},
		{"dependencies", "lodash.merge", "^4.6.2"},
		{"peerDependencies", "react", "^18.2.0"},
	} {
		g, ok := cfg.Group(tt.group)
		if !ok {
			t.Fatalf("group %s missing", tt.group)
		}
		d, ok := g.Dep(tt.name)
		if !ok {
			t.Errorf("%s not in %s", tt.name, tt.group)
			continue
		}
		if d.Requirement.String() != tt.want {
			t.Errorf("%s = %v, want %s", tt.name, d.Requirement, tt.want)
		}
	}
	if _, ok := cfg.Group("dependencies"); !ok {
		t.Error("dependencies group lost")
	}
}

func TestInstallErrorsLeaveFileUntouched(t *testing.T) {
	tests := []struct {
		name    string
		content string
		c       deps.InstallCandidate
		code    errs.Code
	}{
		{"unknown group", packageJSON, deps.InstallCandidate{Name: "x", Version: "1.0.0", Group: "bundledDependencies"}, errs.ErrCodeInvalidGroup},
		{"invalid manifest", `{"dependencies": `, deps.InstallCandidate{Name: "x", Version: "1.0.0", Group: "dependencies"}, errs.ErrCodeInvalidManifest},
		{"invalid name", packageJSON, deps.InstallCandidate{Name: "no spaces", Version: "1.0.0", Group: "dependencies"}, errs.ErrCodeInvalidPackage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "package.json", tt.content)
			err := New(deps.Options{}).Install(tt.c, dir)
			if !errs.Is(err, tt.code) {
				t.Errorf("Install error = %v, want %s", err, tt.code)
			}
			if got := readFile(t, path); got != tt.content {
				t.Errorf("package.json changed to %q", got)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", packageJSON)
	b := New(deps.Options{})

	if err := b.Delete("dependencies", "express", dir); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cfg, err := b.ParseConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := cfg.Group("dependencies")
	if _, ok := g.Dep("express"); ok {
		t.Error("express still declared")
	}
	if len(g.Deps) != 3 {
		t.Errorf("deps = %v, want 3 remaining", g.Deps)
	}

	path := filepath.Join(dir, "package.json")
	before := readFile(t, path)
	err = b.Delete("devDependencies", "express", dir)
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Delete undeclared error = %v, want NOT_FOUND", err)
	}
	if readFile(t, path) != before {
		t.Error("failed delete modified package.json")
	}
}

func TestProjectResolution(t *testing.T) {
	srv := registrytest.New(t)
	srv.Add(
		registrytest.Package{Name: "lodash", Versions: []string{"5.0.0", "4.17.21", "4.17.20", "4.17.0"}},
		registrytest.Package{Name: "express", Versions: []string{"4.19.0", "4.18.2"}},
		registrytest.Package{Name: "jest", Versions: []string{"29.7.0", "29.0.0"}},
	)
	dir := t.TempDir()
	writeFile(t, dir, "package.json", packageJSON)
	writeFile(t, dir, "package-lock.json", `{"lockfileVersion": 3, "packages": {
		"node_modules/lodash": {"version": "4.17.0"},
		"node_modules/express": {"version": "4.18.2"},
		"node_modules/jest": {"version": "29.0.0"}
	}}`)

	p, err := deps.Parse(context.Background(), dir, New(deps.Options{RegistryURL: srv.NpmURL()}), deps.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		group, name string
		best        string
		upgrade     deps.UpgradeType
	}{
		{"dependencies", "lodash", "4.17.21", deps.UpgradePatch},
		{"dependencies", "express", "4.18.2", deps.UpgradeBreaking},
		{"devDependencies", "jest", "29.7.0", deps.UpgradeMinor},
	}
	for _, tt := range tests {
		if got := p.BestCompatibleVersion(tt.group, tt.name); got == nil || got.String() != tt.best {
			t.Errorf("%s best = %v, want %s", tt.name, got, tt.best)
		}
		if got := p.UpgradeType(tt.group, tt.name); got != tt.upgrade {
			t.Errorf("%s upgrade = %v, want %v", tt.name, got, tt.upgrade)
		}
	}

	// "local" and "tagged" are not on the registry; both are requested once.
	if srv.Hits("local") != 1 || srv.Hits("lodash") != 1 {
		t.Errorf("hits: local=%d lodash=%d", srv.Hits("local"), srv.Hits("lodash"))
	}
	if p.IsVersionsAvailable("local") {
		t.Error("unknown package should have no versions")
	}

	before := srv.TotalHits()
	if _, err := p.Reparse(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Only the two names without metadata are fetched again.
	if got := srv.TotalHits() - before; got != 2 {
		t.Errorf("Reparse issued %d requests, want 2", got)
	}
}
