package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/version"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VersionPicker - Interactive version selection for install
// =============================================================================

// VersionPicker is the bubbletea model for choosing a version to install.
type VersionPicker struct {
	Name       string
	Versions   []*semver.Version // Newest first
	Installed  *semver.Version
	Compatible *semver.Version
	Cursor     int
	Offset     int
	Height     int
	Selected   *semver.Version
}

// NewVersionPicker creates a picker with the cursor on the compatible
// version, or on the newest version when there is none.
func NewVersionPicker(name string, versions []*semver.Version, installed, compatible *semver.Version) VersionPicker {
	m := VersionPicker{
		Name:       name,
		Versions:   versions,
		Installed:  installed,
		Compatible: compatible,
		Height:     12,
	}
	for i, v := range versions {
		if version.Same(v, compatible) {
			m.Cursor = i
			break
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m VersionPicker) Init() tea.Cmd {
	return nil
}

func (m VersionPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Versions) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Versions[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m VersionPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Install " + m.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Versions))
	for i := m.Offset; i < end; i++ {
		v := m.Versions[i]

		cursor, style := "  ", listNormalStyle
		if i == m.Cursor {
			cursor, style = "▸ ", listSelectedStyle
		}

		var tags []string
		if i == 0 {
			tags = append(tags, "latest")
		}
		if version.Same(v, m.Compatible) {
			tags = append(tags, "compatible")
		}
		if version.Same(v, m.Installed) {
			tags = append(tags, "installed")
		}

		line := cursor + style.Render(v.String())
		if len(tags) > 0 {
			line += " " + listDimStyle.Render("("+strings.Join(tags, ", ")+")")
		}
		b.WriteString(line + "\n")
	}

	if len(m.Versions) > m.Height {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d-%d of %d", m.Offset+1, end, len(m.Versions))))
		b.WriteString("\n")
	}
	return b.String()
}

// pickVersion runs the picker on in and out and returns the chosen version.
// Quitting without a choice is an INVALID_INPUT error.
func pickVersion(in io.Reader, out io.Writer, m VersionPicker) (*semver.Version, error) {
	if len(m.Versions) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no published versions of %s", m.Name)
	}
	final, err := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "version picker")
	}
	picked := final.(VersionPicker).Selected
	if picked == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no version selected")
	}
	return picked, nil
}
