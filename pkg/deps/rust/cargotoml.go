package rust

import (
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/deps/manifest"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/version"
)

// entry is one dependency as written in Cargo.toml.
type entry struct {
	group   string
	name    string
	version string // requirement text, empty when hasVer is false
	hasVer  bool
}

type cargoManifest struct {
	config  *deps.Config
	entries []entry
}

func (m *cargoManifest) find(group, name string) (entry, bool) {
	for _, e := range m.entries {
		if e.group == group && e.name == name {
			return e, true
		}
	}
	return entry{}, false
}

// decodeManifest decodes Cargo.toml, taking group and dependency order
// from the order in which keys appear in the file.
func decodeManifest(data []byte) (*cargoManifest, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "parse Cargo.toml")
	}

	m := &cargoManifest{config: &deps.Config{}}
	if pkg, ok := doc["package"].(map[string]any); ok {
		m.config.Name, _ = pkg["name"].(string)
		if v, ok := pkg["version"].(string); ok {
			m.config.Version = version.Parse(v)
		}
	}

	groups := make(map[string]int)
	seen := make(map[[2]string]bool)
	for _, key := range md.Keys() {
		if len(key) == 0 || !isGroup(key[0]) {
			continue
		}
		gi, ok := groups[key[0]]
		if !ok {
			gi = len(m.config.Groups)
			groups[key[0]] = gi
			m.config.Groups = append(m.config.Groups, deps.Group{Name: key[0]})
		}
		if len(key) < 2 || seen[[2]string{key[0], key[1]}] {
			continue
		}
		seen[[2]string{key[0], key[1]}] = true

		table, _ := doc[key[0]].(map[string]any)
		e := entry{group: key[0], name: key[1]}
		e.version, e.hasVer = requirementText(table[key[1]])
		m.entries = append(m.entries, e)

		d := deps.Dep{Name: e.name}
		if e.hasVer {
			d.Requirement = version.ParseRequirement(e.version, version.Cargo)
		}
		m.config.Groups[gi].Deps = append(m.config.Groups[gi].Deps, d)
	}
	return m, nil
}

// requirementText extracts the requirement of a dependency value: the
// value itself when it is a string, or its "version" key when it is a
// table.
func requirementText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case map[string]any:
		s, ok := v["version"].(string)
		return s, ok
	}
	return "", false
}

func readManifest(root string) (string, []byte, *cargoManifest, error) {
	path := filepath.Join(root, manifestFile)
	data, err := manifest.Read(path)
	if err != nil {
		return "", nil, nil, err
	}
	m, err := decodeManifest(data)
	if err != nil {
		return "", nil, nil, err
	}
	return path, data, m, nil
}

// ParseConfig reads Cargo.toml under root.
func (b *Backend) ParseConfig(root string) (*deps.Config, error) {
	_, _, m, err := readManifest(root)
	if err != nil {
		return nil, err
	}
	return m.config, nil
}

// Install sets the requirement of c.Name in the c.Group table to the bare
// version, adding the entry when it is not declared yet.
func (b *Backend) Install(c deps.InstallCandidate, root string) error {
	if err := checkGroup(c.Group); err != nil {
		return err
	}
	if err := errs.ValidateCratesPackageName(c.Name); err != nil {
		return err
	}
	path, data, before, err := readManifest(root)
	if err != nil {
		return err
	}

	doc := parseDocument(string(data))
	if err := doc.setDependency(c.Group, c.Name, c.Version); err != nil {
		return err
	}
	out := []byte(doc.String())

	after, err := decodeManifest(out)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidManifest, err, "cannot set %s in Cargo.toml", c.Name)
	}
	if e, ok := after.find(c.Group, c.Name); !ok || !e.hasVer || e.version != c.Version {
		return errs.New(errs.ErrCodeInvalidManifest, "cannot set %s in [%s] of Cargo.toml", c.Name, c.Group)
	}
	for _, e := range before.entries {
		if _, ok := after.find(e.group, e.name); !ok {
			return errs.New(errs.ErrCodeInvalidManifest, "setting %s would drop %s from Cargo.toml", c.Name, e.name)
		}
	}
	return manifest.WriteFile(path, out)
}

// Delete removes name from the group table, whether it is a single line
// or a [group.name] section.
func (b *Backend) Delete(group, name, root string) error {
	if err := checkGroup(group); err != nil {
		return err
	}
	path, data, before, err := readManifest(root)
	if err != nil {
		return err
	}
	if _, ok := before.find(group, name); !ok {
		return errs.New(errs.ErrCodeNotFound, "%s is not declared in [%s]", name, group)
	}

	doc := parseDocument(string(data))
	if !doc.removeDependency(group, name) {
		return errs.New(errs.ErrCodeInvalidManifest, "cannot locate %s in [%s] of Cargo.toml", name, group)
	}
	out := []byte(doc.String())

	after, err := decodeManifest(out)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidManifest, err, "cannot remove %s from Cargo.toml", name)
	}
	if _, ok := after.find(group, name); ok || len(after.entries) != len(before.entries)-1 {
		return errs.New(errs.ErrCodeInvalidManifest, "cannot remove %s from [%s] of Cargo.toml", name, group)
	}
	return manifest.WriteFile(path, out)
}
