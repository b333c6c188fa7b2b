package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/version"
)

// maxInfoVersions caps the versions listed by "info".
const maxInfoVersions = 15

// Column indexes of the dependency table.
const (
	colGroup = iota
	colName
	colSpecified
	colCurrent
	colCompatible
	colLatest
	colUpgrade
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// outdated keeps the rows that have an upgrade available.
func outdated(rows []deps.Row) []deps.Row {
	var out []deps.Row
	for _, r := range rows {
		if r.Upgrade != deps.UpgradeNone {
			out = append(out, r)
		}
	}
	return out
}

// renderRows renders rows as a table. The compatible, latest and upgrade
// columns are coloured by upgrade type.
func renderRows(rows []deps.Row) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.Group,
			r.Name,
			r.Specified.String(),
			version.Display(r.Current),
			version.Display(r.Compatible),
			version.Display(r.Latest),
			r.Upgrade.String(),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "Package", "Specified", "Current", "Compatible", "Latest", "Upgrade").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			switch col {
			case colGroup:
				return cellStyle.Foreground(colorGray)
			case colName:
				return cellStyle.Foreground(colorWhite)
			case colCompatible, colLatest, colUpgrade:
				return cellStyle.Inherit(upgradeStyles[rows[row].Upgrade])
			}
			return cellStyle
		})
	return t.String()
}

// printRows prints the dependency table followed by a one-line summary.
func printRows(w io.Writer, p *deps.Project, rows []deps.Row) {
	if len(rows) == 0 {
		printInfo(w, "No dependencies to show")
		return
	}
	fmt.Fprintln(w, renderRows(rows))

	counts := make(map[deps.UpgradeType]int)
	for _, r := range rows {
		counts[r.Upgrade]++
	}
	var parts []string
	for _, u := range []deps.UpgradeType{deps.UpgradePatch, deps.UpgradeMinor, deps.UpgradeMajor, deps.UpgradeBreaking} {
		if n := counts[u]; n > 0 {
			parts = append(parts, upgradeStyles[u].Render(fmt.Sprintf("%d %s", n, u)))
		}
	}
	summary := fmt.Sprintf("%s project, %d dependencies", p.Kind, len(rows))
	if len(parts) > 0 {
		summary += StyleDim.Render(" · ") + strings.Join(parts, StyleDim.Render(" · "))
	}
	printDetail(w, "%s", summary)
}

// printDepInfo prints registry metadata for one dependency. When the
// dependency is declared in p its requirement and installed version are
// shown too.
func printDepInfo(w io.Writer, info *deps.DepInfo, p *deps.Project) {
	fmt.Fprintln(w, StyleTitle.Render(info.Name))
	if info.Description != "" {
		fmt.Fprintln(w, StyleDim.Render(info.Description))
	}
	fmt.Fprintln(w)

	printKeyValue(w, "Author", info.Author)
	printKeyValue(w, "License", info.License)
	if info.Homepage != "" {
		fmt.Fprintln(w, styleKey.Render("Homepage")+" "+StyleLink.Render(info.Homepage))
	}
	if info.Repository != "" {
		fmt.Fprintln(w, styleKey.Render("Repository")+" "+StyleLink.Render(info.Repository))
	}
	if p != nil && p.Config.Declares(info.Name) {
		printKeyValue(w, "PURL", p.PURL(info.Name))
		printKeyValue(w, "Installed", version.Display(p.CurrentVersion(info.Name)))
		for _, g := range p.Groups() {
			if declaredIn(p, g, info.Name) {
				printKeyValue(w, "Specified", fmt.Sprintf("%s (%s)", p.SpecifiedVersion(g, info.Name), g))
			}
		}
	} else {
		printKeyValue(w, "PURL", info.PURL())
	}

	if len(info.Versions) == 0 {
		printKeyValue(w, "Versions", "none published")
		return
	}
	shown := info.Versions
	if len(shown) > maxInfoVersions {
		shown = shown[:maxInfoVersions]
	}
	names := make([]string, len(shown))
	for i, v := range shown {
		names[i] = v.String()
	}
	line := strings.Join(names, ", ")
	if more := len(info.Versions) - len(shown); more > 0 {
		line += StyleDim.Render(fmt.Sprintf(" (+%d more)", more))
	}
	fmt.Fprintln(w, styleKey.Render("Versions")+" "+line)
}

func declaredIn(p *deps.Project, group, name string) bool {
	g, ok := p.Config.Group(group)
	if !ok {
		return false
	}
	_, ok = g.Dep(name)
	return ok
}

// printSearchResults prints search hits as a two-column table.
func printSearchResults(w io.Writer, term string, results []deps.SearchResult) {
	if len(results) == 0 {
		printInfo(w, "No packages match %q", term)
		return
	}
	rows := make([][]string, len(results))
	for i, r := range results {
		ver := r.Version
		if ver == "" {
			ver = version.Unknown
		}
		rows[i] = []string{r.Name, ver}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return cellStyle.Foreground(colorWhite)
			}
			return cellStyle.Foreground(colorGray)
		})
	fmt.Fprintln(w, t.String())
}
