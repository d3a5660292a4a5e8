// Package agenda is the weekly lesson list, the application's main view.
package agenda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/calendar"
	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/stats"
	"github.com/nhle/tutor-scheduler/internal/theme"
)

// Reader is the part of the store the agenda reads from.
type Reader interface {
	GetStudents(ctx context.Context) ([]model.Student, error)
	GetLessonsByDateRange(ctx context.Context, start, end model.Date) ([]model.Lesson, error)
	GetUnpaidLessons(ctx context.Context) ([]model.Lesson, error)
	GetUpcomingLessons(ctx context.Context, limit int) ([]model.Lesson, error)
}

// WeekLoadedMsg carries one week of lessons and the dashboard figures.
type WeekLoadedMsg struct {
	Offset   int
	Lessons  []model.Lesson
	Students []model.Student
	Upcoming []model.Lesson
	Summary  stats.WeekSummary
	Err      error
}

// NewLessonMsg asks the parent to open the lesson form for a new lesson.
type NewLessonMsg struct {
	Date model.Date
}

// EditLessonMsg asks the parent to open the lesson form for l.
type EditLessonMsg struct {
	Lesson model.Lesson
}

// Action is a one-key change to the selected lesson.
type Action int

const (
	ActionComplete Action = iota
	ActionTogglePaid
	ActionCancel
	ActionDelete
)

// LessonActionMsg asks the parent to apply Action to Lesson.
type LessonActionMsg struct {
	Action Action
	Lesson model.Lesson
}

// MoveLessonMsg asks the parent to move Lesson so it starts at Start.
type MoveLessonMsg struct {
	Lesson model.Lesson
	Start  time.Time
}

// ResizeLessonMsg asks the parent to make Lesson span Start to End.
type ResizeLessonMsg struct {
	Lesson model.Lesson
	Start  time.Time
	End    time.Time
}

// resizeStep is how much one key press lengthens or shortens a lesson.
const resizeStep = 15 * time.Minute

// Model is the weekly agenda view component.
type Model struct {
	list     list.Model
	store    Reader
	keys     *keys.KeyMap
	settings *model.Settings
	now      func() time.Time

	offset        int // weeks relative to the current one
	upcomingLimit int
	students      model.StudentDirectory
	summary       stats.WeekSummary
	upcoming      []model.Lesson
	err           error

	width  int
	height int
}

// New creates an agenda showing the current week.
func New(s Reader, k *keys.KeyMap, upcomingLimit int, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-footerHeight)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:          l,
		store:         s,
		keys:          k,
		now:           time.Now,
		upcomingLimit: upcomingLimit,
		students:      model.StudentDirectory{},
		width:         width,
		height:        height,
	}
}

// footerHeight is the number of lines below the list.
const footerHeight = 4

// Init returns a command that loads the current week.
func (m Model) Init() tea.Cmd {
	return m.LoadWeek()
}

// SetSettings replaces the settings used to label lessons.
func (m *Model) SetSettings(s *model.Settings) {
	m.settings = s
}

// SetClock overrides the clock used for "today" and the week anchor.
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

// Update handles messages for the agenda.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case WeekLoadedMsg:
		if msg.Offset != m.offset {
			return m, nil
		}
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.students = model.NewStudentDirectory(msg.Students)
		m.summary = msg.Summary
		m.upcoming = msg.Upcoming
		return m, m.setLessons(msg.Lessons)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PrevWeek):
		m.offset--
		return m, m.LoadWeek()

	case key.Matches(msg, m.keys.NextWeek):
		m.offset++
		return m, m.LoadWeek()

	case key.Matches(msg, m.keys.Today):
		return m, m.JumpToToday()

	case key.Matches(msg, m.keys.New):
		date := model.DateOf(m.now())
		if m.offset != 0 {
			date, _ = m.weekDates()
		}
		return m, func() tea.Msg { return NewLessonMsg{Date: date} }

	case key.Matches(msg, m.keys.Edit):
		if l, ok := m.SelectedLesson(); ok {
			return m, func() tea.Msg { return EditLessonMsg{Lesson: l} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		return m, m.action(ActionComplete)
	case key.Matches(msg, m.keys.Paid):
		return m, m.action(ActionTogglePaid)
	case key.Matches(msg, m.keys.Cancel):
		return m, m.action(ActionCancel)
	case key.Matches(msg, m.keys.Delete):
		return m, m.action(ActionDelete)

	case key.Matches(msg, m.keys.Earlier):
		return m, m.move(-1)
	case key.Matches(msg, m.keys.Later):
		return m, m.move(1)
	case key.Matches(msg, m.keys.Longer):
		return m, m.resize(resizeStep)
	case key.Matches(msg, m.keys.Shorter):
		return m, m.resize(-resizeStep)
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) action(a Action) tea.Cmd {
	l, ok := m.SelectedLesson()
	if !ok {
		return nil
	}
	return func() tea.Msg { return LessonActionMsg{Action: a, Lesson: l} }
}

// move shifts the selected lesson by days, keeping its time of day.
func (m Model) move(days int) tea.Cmd {
	l, ok := m.SelectedLesson()
	if !ok {
		return nil
	}
	start := l.Start(time.Local).AddDate(0, 0, days)
	return func() tea.Msg { return MoveLessonMsg{Lesson: l, Start: start} }
}

// resize changes the selected lesson's length by delta. A lesson never
// gets shorter than one step.
func (m Model) resize(delta time.Duration) tea.Cmd {
	l, ok := m.SelectedLesson()
	if !ok {
		return nil
	}
	start := l.Start(time.Local)
	end := l.End(time.Local).Add(delta)
	if end.Sub(start) < resizeStep {
		return nil
	}
	return func() tea.Msg { return ResizeLessonMsg{Lesson: l, Start: start, End: end} }
}

// SelectedLesson returns the lesson under the cursor.
func (m Model) SelectedLesson() (model.Lesson, bool) {
	item, ok := m.list.SelectedItem().(LessonItem)
	if !ok {
		return model.Lesson{}, false
	}
	return item.Lesson, true
}

func (m *Model) setLessons(lessons []model.Lesson) tea.Cmd {
	settings := m.settings
	if settings == nil {
		defaults := model.DefaultSettings()
		settings = &defaults
	}
	events := calendar.Project(lessons, m.students, settings, time.Local)

	items := make([]list.Item, len(lessons))
	for i, l := range lessons {
		items[i] = LessonItem{Lesson: l, Event: events[i]}
	}

	from, to := m.weekDates()
	m.list.Title = "Неделя " + weekTitle(from, to)
	m.list.SetDelegate(ItemDelegate{today: model.DateOf(m.now())})
	return m.list.SetItems(items)
}

// anchor is a moment inside the displayed week.
func (m Model) anchor() time.Time {
	return m.now().AddDate(0, 0, 7*m.offset)
}

func (m Model) weekDates() (model.Date, model.Date) {
	return stats.WeekOf(m.anchor()).Dates()
}

// View renders the agenda.
func (m Model) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.ErrorStyle.Render("Не удалось загрузить занятия: " + m.err.Error()),
		)
	}

	var body string
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	} else {
		body = m.list.View()
	}
	return joinLines(body, m.renderFooter())
}

func (m Model) renderEmptyState() string {
	from, to := m.weekDates()
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-footerHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	return style.Render(
		"Неделя " + weekTitle(from, to) + "\n\n" +
			"На этой неделе занятий нет.\n" +
			"Нажмите n, чтобы добавить занятие.",
	)
}

func (m Model) renderFooter() string {
	ws := m.summary
	summary := fmt.Sprintf(
		"Запланировано: %s (%s) · Проведено: %s (%s) · Не оплачено: %s на %s",
		plural.WithNumber(ws.PlannedCount, plural.Lessons),
		plural.FormatHours(ws.PlannedHours),
		plural.WithNumber(ws.CompletedCount, plural.Lessons),
		plural.FormatHours(ws.CompletedHours),
		plural.WithNumber(ws.UnpaidCount, plural.Lessons),
		plural.FormatMoney(ws.UnpaidTotal),
	)

	next := "Ближайших занятий нет"
	if len(m.upcoming) > 0 {
		parts := make([]string, 0, len(m.upcoming))
		for _, l := range m.upcoming {
			parts = append(parts, fmt.Sprintf("%s %s %s",
				DayLabel(l.Date), l.StartTime, m.students.Name(l.StudentID)))
		}
		next = "Ближайшие: " + strings.Join(parts, ", ")
	}

	return lipgloss.NewStyle().PaddingLeft(2).PaddingTop(1).Render(joinLines(
		theme.DimmedStyle.Render(summary),
		theme.DimmedStyle.Render(next),
	))
}

// LoadWeek returns a tea.Cmd that loads the displayed week.
func (m Model) LoadWeek() tea.Cmd {
	s := m.store
	offset := m.offset
	anchor := m.anchor()
	limit := m.upcomingLimit
	return func() tea.Msg {
		ctx := context.Background()
		from, to := stats.WeekOf(anchor).Dates()

		lessons, err := s.GetLessonsByDateRange(ctx, from, to)
		if err != nil {
			return WeekLoadedMsg{Offset: offset, Err: err}
		}
		students, err := s.GetStudents(ctx)
		if err != nil {
			return WeekLoadedMsg{Offset: offset, Err: err}
		}
		unpaid, err := s.GetUnpaidLessons(ctx)
		if err != nil {
			return WeekLoadedMsg{Offset: offset, Err: err}
		}
		upcoming, err := s.GetUpcomingLessons(ctx, limit)
		if err != nil {
			return WeekLoadedMsg{Offset: offset, Err: err}
		}

		return WeekLoadedMsg{
			Offset:   offset,
			Lessons:  lessons,
			Students: students,
			Upcoming: upcoming,
			Summary:  stats.SummarizeWeek(lessons, unpaid, anchor),
		}
	}
}

// JumpToToday shows the current week again.
func (m *Model) JumpToToday() tea.Cmd {
	m.offset = 0
	return m.LoadWeek()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-footerHeight)
}
