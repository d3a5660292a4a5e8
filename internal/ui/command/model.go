// Package command is the ':' palette for actions without a dedicated key:
// backup, calendar and report export, calendar checks, and data reset.
package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/stats"
	"github.com/nhle/tutor-scheduler/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Export   Name = "export"
	Import   Name = "import"
	ICS      Name = "ics"
	ICSCheck Name = "ics-check"
	XLSX     Name = "xlsx"
	Reset    Name = "reset"
	Today    Name = "today"
	Students Name = "students"
	Stats    Name = "stats"
	Settings Name = "settings"
	Quit     Name = "quit"
)

// resetConfirmation must follow "reset" for the command to run.
const resetConfirmation = "confirm"

var names = []Name{Export, Import, ICS, ICSCheck, XLSX, Reset, Today, Students, Stats, Settings, Quit}

// Usage is one palette command with its arguments, for the help view.
type Usage struct {
	Syntax      string
	Description string
}

// Usages lists every palette command in suggestion order.
var Usages = []Usage{
	{"export [файл]", "резервная копия в JSON"},
	{"import файл", "заменить все данные копией"},
	{"ics [файл]", "календарь для Google / Apple"},
	{"ics-check файл", "проверить файл календаря"},
	{"xlsx [week|month|quarter|year] [файл]", "отчёт в Excel"},
	{"reset confirm", "удалить все данные"},
	{"today", "текущая неделя"},
	{"students", "ученики"},
	{"stats", "статистика"},
	{"settings", "настройки"},
	{"quit, q", "выход"},
}

// Command is a parsed palette line. Path is empty when the user left the
// output file to the default.
type Command struct {
	Name   Name
	Path   string
	Preset stats.Preset
}

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Command Command
}

// CloseMsg is emitted when the palette is dismissed.
type CloseMsg struct{}

// Parse reads a palette line such as "xlsx quarter report.xlsx".
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("пустая команда")
	}
	name := Name(strings.ToLower(fields[0]))
	args := fields[1:]
	if name == "q" {
		name = Quit
	}

	switch name {
	case Export, ICS:
		if len(args) > 1 {
			return Command{}, fmt.Errorf("%s [файл]", name)
		}
		return Command{Name: name, Path: first(args)}, nil

	case Import, ICSCheck:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%s <файл>", name)
		}
		return Command{Name: name, Path: args[0]}, nil

	case XLSX:
		cmd := Command{Name: name, Preset: stats.PresetMonth}
		if len(args) > 0 {
			if p, err := stats.ParsePreset(args[0]); err == nil {
				cmd.Preset = p
				args = args[1:]
			}
		}
		if len(args) > 1 {
			return Command{}, fmt.Errorf("xlsx [week|month|quarter|year] [файл]")
		}
		cmd.Path = first(args)
		return cmd, nil

	case Reset:
		if len(args) != 1 || args[0] != resetConfirmation {
			return Command{}, fmt.Errorf("удаление всех данных: reset %s", resetConfirmation)
		}
		return Command{Name: name}, nil

	case Today, Students, Stats, Settings, Quit:
		if len(args) > 0 {
			return Command{}, fmt.Errorf("%s без аргументов", name)
		}
		return Command{Name: name}, nil
	}

	return Command{}, fmt.Errorf("неизвестная команда %q", fields[0])
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	suggestions := make([]string, len(names))
	for i, n := range names {
		suggestions[i] = string(n)
	}

	ti := textinput.New()
	ti.Placeholder = "export, import, ics, xlsx, reset..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(suggestions)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			cmd, err := Parse(line)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.input.Reset()
			return m, func() tea.Msg {
				return CommandMsg{Command: cmd}
			}

		case "esc":
			m.err = nil
			m.input.Reset()
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Команда"), m.input.View()}
	if m.err != nil {
		parts = append(parts, "", theme.ErrorStyle.Render(m.err.Error()))
	}
	parts = append(parts, "", theme.HelpStyle.Render(
		"export [файл] · import <файл> · ics [файл] · xlsx [период] [файл] · reset confirm · today"))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
