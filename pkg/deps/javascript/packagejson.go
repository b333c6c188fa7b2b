package javascript

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/deps/manifest"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/version"
)

// ParseConfig reads package.json under root.
func (b *Backend) ParseConfig(root string) (*deps.Config, error) {
	data, err := readManifest(filepath.Join(root, manifestFile))
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "package.json must contain a JSON object")
	}

	cfg := &deps.Config{}
	doc.ForEach(func(key, value gjson.Result) bool {
		switch k := key.String(); {
		case k == "name" && value.Type == gjson.String:
			cfg.Name = value.String()
		case k == "version" && value.Type == gjson.String:
			cfg.Version = version.Parse(value.String())
		case isGroup(k) && value.IsObject():
			setGroup(cfg, parseGroup(k, value))
		}
		return true
	})
	return cfg, nil
}

// parseGroup reads one dependency object. Repeated keys keep their first
// position and their last value.
func parseGroup(name string, obj gjson.Result) deps.Group {
	g := deps.Group{Name: name}
	index := make(map[string]int)
	obj.ForEach(func(key, value gjson.Result) bool {
		d := deps.Dep{Name: key.String()}
		if value.Type == gjson.String {
			d.Requirement = version.ParseRequirement(value.String(), version.Npm)
		}
		if i, ok := index[d.Name]; ok {
			g.Deps[i] = d
			return true
		}
		index[d.Name] = len(g.Deps)
		g.Deps = append(g.Deps, d)
		return true
	})
	return g
}

func setGroup(cfg *deps.Config, g deps.Group) {
	for i := range cfg.Groups {
		if cfg.Groups[i].Name == g.Name {
			cfg.Groups[i] = g
			return
		}
	}
	cfg.Groups = append(cfg.Groups, g)
}

// Install sets group.name to "^version" in package.json.
func (b *Backend) Install(c deps.InstallCandidate, root string) error {
	if err := checkGroup(c.Group); err != nil {
		return err
	}
	if err := errs.ValidateNpmPackageName(c.Name); err != nil {
		return err
	}
	path := filepath.Join(root, manifestFile)
	data, err := readManifest(path)
	if err != nil {
		return err
	}

	key := entryPath(c.Group, c.Name)
	want := "^" + c.Version
	out, err := sjson.SetBytes(data, key, want)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidManifest, err, "set %s in package.json", c.Name)
	}
	if !json.Valid(out) || gjson.GetBytes(out, key).String() != want {
		return errs.New(errs.ErrCodeInvalidManifest, "cannot set %s in %s of package.json", c.Name, c.Group)
	}
	return manifest.WriteFile(path, out)
}

// Delete removes group.name from package.json.
func (b *Backend) Delete(group, name, root string) error {
	if err := checkGroup(group); err != nil {
		return err
	}
	path := filepath.Join(root, manifestFile)
	data, err := readManifest(path)
	if err != nil {
		return err
	}

	key := entryPath(group, name)
	if !gjson.GetBytes(data, key).Exists() {
		return errs.New(errs.ErrCodeNotFound, "%s is not declared in %s", name, group)
	}
	out, err := sjson.DeleteBytes(data, key)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidManifest, err, "remove %s from package.json", name)
	}
	if !json.Valid(out) || gjson.GetBytes(out, key).Exists() {
		return errs.New(errs.ErrCodeInvalidManifest, "cannot remove %s from %s of package.json", name, group)
	}
	return manifest.WriteFile(path, out)
}

// entryPath is the gjson/sjson path of a dependency entry. Package names
// may contain path syntax such as "." or "@".
func entryPath(group, name string) string {
	return group + "." + gjson.Escape(name)
}

func readManifest(path string) ([]byte, error) {
	data, err := manifest.Read(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "%s is not valid JSON", filepath.Base(path))
	}
	return data, nil
}

func exists(root, name string) bool {
	fi, err := os.Stat(filepath.Join(root, name))
	return err == nil && !fi.IsDir()
}
