// Package statsview shows period statistics and the year's financials.
package statsview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/stats"
	"github.com/nhle/tutor-scheduler/internal/theme"
)

// Source computes the figures the view shows.
type Source interface {
	ForPeriod(ctx context.Context, p stats.Period) (*stats.PeriodStats, error)
	Financials(ctx context.Context, settings *model.Settings, year int) (stats.YearSummary, error)
}

// BackMsg signals the parent to navigate back.
type BackMsg struct{}

// LoadedMsg carries freshly computed figures.
type LoadedMsg struct {
	Preset stats.Preset
	Year   int
	Period *stats.PeriodStats
	Yearly stats.YearSummary
	Err    error
}

// Model is the statistics view component.
type Model struct {
	viewport viewport.Model
	source   Source
	keys     *keys.KeyMap
	settings *model.Settings
	now      func() time.Time

	preset      stats.Preset
	year        int
	topTopics   int
	topStudents int

	period *stats.PeriodStats
	yearly stats.YearSummary
	err    error

	width   int
	height  int
	loading bool
}

// New creates a statistics view showing the last month.
func New(src Source, k *keys.KeyMap, topTopics, topStudents, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport:    vp,
		source:      src,
		keys:        k,
		now:         time.Now,
		preset:      stats.PresetMonth,
		year:        time.Now().Year(),
		topTopics:   topTopics,
		topStudents: topStudents,
		width:       width,
		height:      height,
	}
}

// SetSettings replaces the settings used for subject names and taxes.
func (m *Model) SetSettings(s *model.Settings) {
	m.settings = s
}

// Init loads the figures for the current preset and year.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the statistics view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Preset != m.preset || msg.Year != m.year {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		m.period = msg.Period
		m.yearly = msg.Yearly
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.CyclePeriod):
			m.preset = m.preset.Next()
			return m, m.Load()

		case key.Matches(msg, m.keys.PrevYear):
			m.year--
			return m, m.Load()

		case key.Matches(msg, m.keys.NextYear):
			m.year++
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Load returns a command computing the figures for the current selection.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	src, settings := m.source, m.settings
	preset, year := m.preset, m.year
	period := stats.PeriodFor(preset, m.now())

	return func() tea.Msg {
		ctx := context.Background()
		ps, err := src.ForPeriod(ctx, period)
		if err != nil {
			return LoadedMsg{Preset: preset, Year: year, Err: err}
		}
		ys, err := src.Financials(ctx, settings, year)
		if err != nil {
			return LoadedMsg{Preset: preset, Year: year, Err: err}
		}
		return LoadedMsg{Preset: preset, Year: year, Period: ps, Yearly: ys}
	}
}

// View renders the statistics view.
func (m Model) View() string {
	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 2).
		Render(m.viewport.View())
}

func (m Model) renderContent() string {
	if m.err != nil {
		return theme.ErrorStyle.Render("Не удалось посчитать статистику: " + m.err.Error())
	}
	if m.period == nil {
		return theme.DimmedStyle.Render("Загрузка...")
	}

	sections := []string{
		m.renderPeriod(),
		m.renderSubjects(),
		m.renderStudents(),
		m.renderTopics(),
		m.renderYear(),
	}
	return strings.Join(sections, "\n\n")
}

var sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorMagenta)

func (m Model) renderPeriod() string {
	ps := m.period
	tabs := make([]string, len(stats.Presets))
	for i, p := range stats.Presets {
		label := " " + p.Label() + " "
		if p == m.preset {
			tabs[i] = theme.HeaderStyle.Render(label)
		} else {
			tabs[i] = theme.DimmedStyle.Render(label)
		}
	}

	rows := [][2]string{
		{"Проведено", plural.WithNumber(ps.TotalLessons, plural.Lessons)},
		{"Часов", plural.FormatHours(ps.TotalHours)},
		{"Заработано", plural.FormatMoney(ps.TotalEarnings)},
		{"Оплачено", plural.FormatMoney(ps.PaidAmount)},
		{"Не оплачено", plural.FormatMoney(ps.UnpaidAmount)},
	}

	return strings.Join([]string{
		strings.Join(tabs, " "),
		theme.DimmedStyle.Render(fmt.Sprintf("%s – %s", ps.Start, ps.End)),
		renderRows(rows),
	}, "\n")
}

func (m Model) renderSubjects() string {
	var rows [][2]string
	for _, s := range m.period.SubjectsByEarnings() {
		rows = append(rows, [2]string{
			m.subjectName(s.SubjectID),
			fmt.Sprintf("%s · %s · %s",
				plural.WithNumber(s.Count, plural.Lessons),
				plural.FormatHours(s.Hours),
				plural.FormatMoney(s.Earnings)),
		})
	}
	return section("По предметам", rows)
}

func (m Model) renderStudents() string {
	var rows [][2]string
	for _, s := range m.period.TopStudents(m.topStudents) {
		rows = append(rows, [2]string{
			s.Name,
			fmt.Sprintf("%s · %s",
				plural.WithNumber(s.Count, plural.Lessons),
				plural.FormatMoney(s.Earnings)),
		})
	}
	return section("Ученики", rows)
}

func (m Model) renderTopics() string {
	var rows [][2]string
	for _, t := range m.period.TopTopics(m.topTopics) {
		rows = append(rows, [2]string{
			t.Topic,
			fmt.Sprintf("%s · %s", plural.WithNumber(t.Count, plural.Times), m.subjectName(t.SubjectID)),
		})
	}
	return section("Популярные темы", rows)
}

func (m Model) renderYear() string {
	y := m.yearly
	b := y.Burden
	rows := [][2]string{
		{"Режим", b.Regime.Label()},
		{"Расчёт", b.Description},
		{"Проведено", plural.WithNumber(y.LessonsCount, plural.Lessons)},
		{"Заработано", plural.FormatMoney(y.TotalEarnings)},
		{"Получено", plural.FormatMoney(y.PaidAmount)},
		{"Налог", plural.FormatMoney(b.TaxAmount)},
		{"Страховые взносы", plural.FormatMoney(b.Insurance)},
		{"Налоговая нагрузка", plural.FormatMoney(b.Total)},
		{"Чистый доход", plural.FormatMoney(y.NetIncome)},
	}
	return section(fmt.Sprintf("Финансы за %d год", y.Year), rows)
}

func (m Model) subjectName(id string) string {
	if m.settings == nil {
		return id
	}
	sub, _ := m.settings.SubjectByID(id)
	return sub.Name
}

func section(title string, rows [][2]string) string {
	if len(rows) == 0 {
		return sectionStyle.Render(title) + "\n" + theme.DimmedStyle.Render("Нет данных за период")
	}
	return sectionStyle.Render(title) + "\n" + renderRows(rows)
}

func renderRows(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}
	label := lipgloss.NewStyle().Width(width + 2).Foreground(theme.ColorGray)

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = label.Render(r[0]) + r[1]
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 8
	m.viewport.Height = height - 4
	m.viewport.SetContent(m.renderContent())
}
