// Package help renders the key reference and the palette commands.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/theme"
	"github.com/nhle/tutor-scheduler/internal/ui/command"
)

// groupTitles name the columns of keys.KeyMap.FullHelp, in order.
var groupTitles = []string{"Неделя", "Занятие", "Ученики и статистика", "Общее"}

// Model is the help view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a help view over k.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, help: help.New(), width: width, height: height}
}

// Init returns nil; the help view loads nothing.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the parent closes the view.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the key groups side by side above the command list.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	groups := m.keys.FullHelp()
	columns := make([]string, 0, len(groups))
	for i, bindings := range groups {
		name := ""
		if i < len(groupTitles) {
			name = groupTitles[i]
		}
		columns = append(columns, lipgloss.NewStyle().MarginRight(4).Render(
			m.renderGroup(title.Render(name), bindings),
		))
	}

	var cmds strings.Builder
	cmds.WriteString(title.Render("Команды (:)") + "\n")
	syntax := m.help.Styles.FullKey.Width(40)
	for _, u := range command.Usages {
		cmds.WriteString(syntax.Render(u.Syntax) + m.help.Styles.FullDesc.Render(u.Description) + "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		"",
		cmds.String(),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

func (m Model) renderGroup(title string, bindings []key.Binding) string {
	lines := []string{title}
	keyStyle := m.help.Styles.FullKey.Width(10)
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		lines = append(lines, keyStyle.Render(h.Key)+m.help.Styles.FullDesc.Render(h.Desc))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
