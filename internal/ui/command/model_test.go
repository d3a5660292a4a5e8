package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/stats"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"export", Command{Name: Export}},
		{"export /tmp/b.json", Command{Name: Export, Path: "/tmp/b.json"}},
		{"import b.json", Command{Name: Import, Path: "b.json"}},
		{"ICS lessons.ics", Command{Name: ICS, Path: "lessons.ics"}},
		{"ics-check lessons.ics", Command{Name: ICSCheck, Path: "lessons.ics"}},
		{"xlsx", Command{Name: XLSX, Preset: stats.PresetMonth}},
		{"xlsx year", Command{Name: XLSX, Preset: stats.PresetYear}},
		{"xlsx quarter q.xlsx", Command{Name: XLSX, Preset: stats.PresetQuarter, Path: "q.xlsx"}},
		{"xlsx out.xlsx", Command{Name: XLSX, Preset: stats.PresetMonth, Path: "out.xlsx"}},
		{"reset confirm", Command{Name: Reset}},
		{"  today ", Command{Name: Today}},
		{"q", Command{Name: Quit}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"import",
		"import a b",
		"ics-check",
		"ics-check a b",
		"reset",
		"reset now",
		"export a b",
		"xlsx week a b",
		"today please",
		"sync",
	} {
		_, err := Parse(line)
		assert.Error(t, err, line)
	}
}

func typeLine(m Model, line string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	return m
}

func TestEnterEmitsCommand(t *testing.T) {
	m := typeLine(New(80, 24), "ics out.ics")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Command: Command{Name: ICS, Path: "out.ics"}}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestInvalidCommandStaysOpen(t *testing.T) {
	m := typeLine(New(80, 24), "reset")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	require.Error(t, m.err)
	assert.Equal(t, "reset", m.input.Value())
	assert.Contains(t, m.View(), "reset confirm")
}

func TestEscCloses(t *testing.T) {
	m := typeLine(New(80, 24), "exp")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, CloseMsg{}, cmd())
	assert.Empty(t, m.input.Value())
}
