package rust

import (
	"slices"
	"strconv"
	"strings"

	errs "github.com/matzehuels/depman/pkg/errors"
)

// document is a TOML file split into lines. Only table headers and the
// key of key/value lines are recognised; every other byte is kept as is.
//
// Values spanning several lines (multi-line strings and arrays) are not
// tracked. Edits are always decoded again by the caller.
type document struct {
	lines []tomlLine
	eol   string
}

type tomlLine struct {
	text   string   // including the line ending
	header []string // path of a [table] or [[array]] header
	key    []string // key path of a key/value line
	value  int      // offset of the value in text
}

func parseDocument(src string) *document {
	d := &document{eol: "\n"}
	if strings.Contains(src, "\r\n") {
		d.eol = "\r\n"
	}
	for _, text := range strings.SplitAfter(src, "\n") {
		if text != "" {
			d.lines = append(d.lines, scanLine(text))
		}
	}
	return d
}

func (d *document) String() string {
	var b strings.Builder
	for _, l := range d.lines {
		b.WriteString(l.text)
	}
	return b.String()
}

func scanLine(text string) tomlLine {
	l := tomlLine{text: text}
	s := strings.TrimLeft(text, " \t")

	if strings.HasPrefix(s, "[") {
		open, closing := "[", "]"
		if strings.HasPrefix(s, "[[") {
			open, closing = "[[", "]]"
		}
		rest := s[len(open):]
		if path, n := parseKeyPath(rest); path != nil && strings.HasPrefix(strings.TrimLeft(rest[n:], " \t"), closing) {
			l.header = path
		}
		return l
	}

	path, n := parseKeyPath(s)
	if path == nil {
		return l
	}
	rest := strings.TrimLeft(s[n:], " \t")
	if !strings.HasPrefix(rest, "=") {
		return l
	}
	v := strings.TrimLeft(rest[1:], " \t")
	l.key = path
	l.value = len(text) - len(v)
	return l
}

// parseKeyPath parses a dotted key at the start of s and returns its
// segments and the number of bytes consumed.
func parseKeyPath(s string) ([]string, int) {
	var path []string
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			return nil, 0
		}
		switch c := s[i]; {
		case c == '"' || c == '\'':
			n := quotedLen(s[i:])
			if n < 0 {
				return nil, 0
			}
			path = append(path, unquote(s[i:i+n]))
			i += n
		case isBareKeyChar(c):
			j := i
			for j < len(s) && isBareKeyChar(s[j]) {
				j++
			}
			path = append(path, s[i:j])
			i = j
		default:
			return nil, 0
		}

		j := i
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j < len(s) && s[j] == '.' {
			i = j + 1
			continue
		}
		return path, i
	}
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// quotedLen returns the length of the single-line string at the start of
// s, quotes included, or -1.
func quotedLen(s string) int {
	if s == "" || strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, "'''") {
		return -1
	}
	q := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			return i + 1
		case '\n':
			return -1
		}
	}
	return -1
}

func unquote(s string) string {
	if s[0] == '\'' {
		return s[1 : len(s)-1]
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s[1 : len(s)-1]
}

// valueLen returns the length of the value at the start of s, or -1 when
// it does not end on this line.
func valueLen(s string) int {
	if s == "" {
		return -1
	}
	switch s[0] {
	case '"', '\'':
		return quotedLen(s)
	case '[', '{':
		depth := 0
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '"', '\'':
				n := quotedLen(s[i:])
				if n < 0 {
					return -1
				}
				i += n - 1
			case '[', '{':
				depth++
			case ']', '}':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
		return -1
	}
	i := 0
	for i < len(s) && !strings.ContainsRune(" \t,}]#\r\n", rune(s[i])) {
		i++
	}
	return i
}

func formatKey(name string) string {
	for i := 0; i < len(name); i++ {
		if !isBareKeyChar(name[i]) {
			return strconv.Quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

// section returns the header line of the table at path and the index of
// the line following the table.
func (d *document) section(path ...string) (int, int, bool) {
	for i, l := range d.lines {
		if l.header != nil && slices.Equal(l.header, path) {
			end := i + 1
			for end < len(d.lines) && d.lines[end].header == nil {
				end++
			}
			return i, end, true
		}
	}
	return 0, 0, false
}

// lastContent returns the last line of the table [start, end) that is
// neither blank nor a comment, or start.
func (d *document) lastContent(start, end int) int {
	for i := end - 1; i > start; i-- {
		s := strings.TrimSpace(d.lines[i].text)
		if s != "" && !strings.HasPrefix(s, "#") {
			return i
		}
	}
	return start
}

func (d *document) insert(at int, content string) {
	if at > 0 && !strings.HasSuffix(d.lines[at-1].text, "\n") {
		d.lines[at-1].text += d.eol
	}
	d.lines = slices.Insert(d.lines, at, scanLine(content+d.eol))
}

func (d *document) replaceValue(i int, value string) bool {
	l := d.lines[i]
	n := valueLen(l.text[l.value:])
	if n < 0 {
		return false
	}
	d.lines[i] = scanLine(l.text[:l.value] + value + l.text[l.value+n:])
	return true
}

// setDependency sets the requirement of name in the group table to ver.
func (d *document) setDependency(group, name, ver string) error {
	value := strconv.Quote(ver)
	fail := func() error {
		return errs.New(errs.ErrCodeInvalidManifest, "cannot edit the entry of %s in [%s]", name, group)
	}

	if start, end, ok := d.section(group, name); ok {
		for i := start + 1; i < end; i++ {
			if slices.Equal(d.lines[i].key, []string{"version"}) {
				if !d.replaceValue(i, value) {
					return fail()
				}
				return nil
			}
		}
		d.insert(start+1, "version = "+value)
		return nil
	}

	start, end, ok := d.section(group)
	if !ok {
		if n := len(d.lines); n > 0 {
			d.insert(n, "")
		}
		d.insert(len(d.lines), "["+group+"]")
		d.insert(len(d.lines), formatKey(name)+" = "+value)
		return nil
	}

	first := -1
	for i := start + 1; i < end; i++ {
		k := d.lines[i].key
		if len(k) == 0 || k[0] != name {
			continue
		}
		switch {
		case len(k) == 1:
			if !d.setEntry(i, value) {
				return fail()
			}
			return nil
		case len(k) == 2 && k[1] == "version":
			if !d.replaceValue(i, value) {
				return fail()
			}
			return nil
		}
		if first < 0 {
			first = i
		}
	}
	if first >= 0 {
		d.insert(first, formatKey(name)+".version = "+value)
		return nil
	}
	d.insert(d.lastContent(start, end)+1, formatKey(name)+" = "+value)
	return nil
}

// setEntry rewrites "name = value": strings are replaced, inline tables
// get their version key replaced or added.
func (d *document) setEntry(i int, value string) bool {
	l := d.lines[i]
	raw := l.text[l.value:]
	if raw == "" || raw[0] != '{' {
		return d.replaceValue(i, value)
	}
	n := valueLen(raw)
	if n < 0 {
		return false
	}
	tbl, ok := setInlineVersion(raw[:n], value)
	if !ok {
		return false
	}
	d.lines[i] = scanLine(l.text[:l.value] + tbl + raw[n:])
	return true
}

// setInlineVersion sets the version key of an inline table.
func setInlineVersion(tbl, value string) (string, bool) {
	inner := tbl[1 : len(tbl)-1]
	for i := 0; i < len(inner); {
		for i < len(inner) && strings.ContainsRune(" \t,", rune(inner[i])) {
			i++
		}
		if i >= len(inner) {
			break
		}
		path, n := parseKeyPath(inner[i:])
		if path == nil {
			return "", false
		}
		j := i + n
		for j < len(inner) && (inner[j] == ' ' || inner[j] == '\t') {
			j++
		}
		if j >= len(inner) || inner[j] != '=' {
			return "", false
		}
		j++
		for j < len(inner) && (inner[j] == ' ' || inner[j] == '\t') {
			j++
		}
		m := valueLen(inner[j:])
		if m < 0 {
			return "", false
		}
		if len(path) == 1 && path[0] == "version" {
			return "{" + inner[:j] + value + inner[j+m:] + "}", true
		}
		i = j + m
	}

	if strings.TrimSpace(inner) == "" {
		return "{ version = " + value + " }", true
	}
	lead := len(inner) - len(strings.TrimLeft(inner, " \t"))
	return "{" + inner[:lead] + "version = " + value + ", " + inner[lead:] + "}", true
}

// removeDependency deletes the lines declaring name in the group table,
// including [group.name] sections. It reports whether anything was removed.
func (d *document) removeDependency(group, name string) bool {
	removed := false
	for i := 0; i < len(d.lines); {
		h := d.lines[i].header
		if len(h) >= 2 && h[0] == group && h[1] == name {
			end := i + 1
			for end < len(d.lines) && d.lines[end].header == nil {
				end++
			}
			d.lines = slices.Delete(d.lines, i, end)
			removed = true
			continue
		}
		i++
	}

	if start, end, ok := d.section(group); ok {
		for i := end - 1; i > start; i-- {
			if k := d.lines[i].key; len(k) > 0 && k[0] == name {
				d.lines = slices.Delete(d.lines, i, i+1)
				removed = true
			}
		}
	}
	return removed
}
