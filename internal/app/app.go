package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/schedule"
	"github.com/nhle/tutor-scheduler/internal/store"
	"github.com/nhle/tutor-scheduler/internal/theme"
	"github.com/nhle/tutor-scheduler/internal/ui"
	"github.com/nhle/tutor-scheduler/internal/ui/agenda"
	"github.com/nhle/tutor-scheduler/internal/ui/command"
	helpview "github.com/nhle/tutor-scheduler/internal/ui/help"
	"github.com/nhle/tutor-scheduler/internal/ui/lessonform"
	"github.com/nhle/tutor-scheduler/internal/ui/settingsview"
	"github.com/nhle/tutor-scheduler/internal/ui/statsview"
	"github.com/nhle/tutor-scheduler/internal/ui/students"
)

// tickMsg refreshes the agenda so "today" and the upcoming list follow
// the clock.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAgenda ViewState = iota
	ViewLessonForm
	ViewStudents
	ViewStats
	ViewSettings
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	planner      *schedule.Planner
	files        *Files
	settings     *model.Settings
	logger       *zap.Logger
	keys         *keys.KeyMap

	agenda       agenda.Model
	lessonForm   lessonform.Model
	studentsView students.Model
	statsView    statsview.Model
	settingsView settingsview.Model
	helpView     helpview.Model
	commandView  command.Model

	today     []model.Lesson
	status    string
	statusErr bool
	ready     bool
}

// New creates the root application model. settings is the singleton
// loaded at startup; it is replaced only after an explicit update.
func New(s store.Store, settings *model.Settings, cfg *model.AppConfig, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	k := keys.DefaultKeyMap()
	files := NewFiles(s, cfg, logger)

	m := Model{
		currentView:  ViewAgenda,
		store:        s,
		planner:      schedule.NewPlanner(s, logger),
		files:        files,
		logger:       logger,
		keys:         k,
		agenda:       agenda.New(s, k, cfg.Dashboard.UpcomingLimit, 80, 24),
		lessonForm:   lessonform.New(80, 24),
		studentsView: students.New(s, k, 80, 24),
		statsView:    statsview.New(files.stats, k, cfg.Reports.TopTopics, cfg.Reports.TopStudents, 80, 24),
		settingsView: settingsview.New(s, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
	}
	m.setSettings(settings)
	return m
}

// Init loads the current week and starts the refresh clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.agenda.Init(), m.loadToday(), tick())
}

// refresh reloads the agenda and today's lessons after a change.
func (m Model) refresh() tea.Cmd {
	return tea.Batch(m.agenda.LoadWeek(), m.loadToday())
}

func (m *Model) setSettings(s *model.Settings) {
	m.settings = s
	m.agenda.SetSettings(s)
	m.studentsView.SetSettings(s)
	m.statsView.SetSettings(s)
	m.settingsView.SetSettings(s)
}

func (m *Model) setStatus(notice string, err error) {
	switch {
	case err != nil && notice != "":
		m.status = fmt.Sprintf("%s: %v", notice, err)
		m.statusErr = true
	case err != nil:
		m.status = fmt.Sprintf("Ошибка: %v", err)
		m.statusErr = true
	default:
		m.status = notice
		m.statusErr = false
	}
}

// open switches to a secondary view and loads its data.
func (m *Model) open(view ViewState) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = view
	switch view {
	case ViewStudents:
		return m.studentsView.Init()
	case ViewStats:
		return m.statsView.Load()
	case ViewCommand:
		return m.commandView.Focus()
	}
	return nil
}

func (m *Model) back() {
	m.currentView = ViewAgenda
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.agenda.SetSize(contentWidth, contentHeight)
		m.lessonForm.SetSize(contentWidth, contentHeight)
		m.studentsView.SetSize(contentWidth, contentHeight)
		m.statsView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case todayLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading today's lessons", zap.Error(msg.err))
			return m, nil
		}
		m.today = msg.lessons
		return m, nil

	case agenda.NewLessonMsg:
		return m, m.loadFormOptions(msg.Date, nil)

	case agenda.EditLessonMsg:
		l := msg.Lesson
		return m, m.loadFormOptions(l.Date, &l)

	case formOptionsLoadedMsg:
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		m.lessonForm.SetOptions(m.settings, msg.students)
		m.previousView = m.currentView
		m.currentView = ViewLessonForm
		if msg.lesson != nil {
			return m, m.lessonForm.StartEdit(*msg.lesson)
		}
		if len(msg.students) == 0 {
			m.currentView = ViewAgenda
			m.setStatus("Сначала добавьте ученика (s)", nil)
			return m, nil
		}
		return m, m.lessonForm.StartCreate(msg.date)

	case lessonform.LessonCreatedMsg:
		m.back()
		return m, m.createLesson(msg.Lesson, msg.Recurrence)

	case lessonform.LessonUpdatedMsg:
		m.back()
		return m, m.updateLesson(msg.ID, msg.Lesson)

	case lessonform.CancelMsg:
		m.back()
		return m, nil

	case agenda.LessonActionMsg:
		return m, m.applyAction(msg)

	case agenda.MoveLessonMsg:
		return m, m.moveLesson(msg.Lesson.ID, msg.Start)

	case agenda.ResizeLessonMsg:
		return m, m.resizeLesson(msg.Lesson.ID, msg.Start, msg.End)

	case lessonsChangedMsg:
		m.setStatus(msg.notice, msg.err)
		return m, m.refresh()

	case students.CloseMsg:
		m.back()
		return m, nil

	case students.ChangedMsg:
		return m, m.refresh()

	case statsview.BackMsg:
		m.back()
		return m, nil

	case settingsview.CloseMsg:
		m.back()
		return m, nil

	case settingsview.SavedMsg:
		m.setSettings(msg.Settings)
		return m, m.refresh()

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg.Command)

	case command.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case commandResultMsg:
		m.setStatus(msg.notice, msg.err)
		if msg.settings != nil {
			m.setSettings(msg.settings)
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Back) {
				m.currentView = m.previousView
			}
			return m, nil
		}
		if m.currentView != ViewAgenda {
			break
		}

		// Global keys only act on the agenda; other views own their keys.
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil
		case key.Matches(msg, m.keys.Command):
			return m, m.open(ViewCommand)
		case key.Matches(msg, m.keys.Students):
			return m, m.open(ViewStudents)
		case key.Matches(msg, m.keys.Stats):
			return m, m.open(ViewStats)
		case key.Matches(msg, m.keys.Settings):
			return m, m.open(ViewSettings)
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAgenda:
		m.agenda, cmd = m.agenda.Update(msg)
	case ViewLessonForm:
		m.lessonForm, cmd = m.lessonForm.Update(msg)
	case ViewStudents:
		m.studentsView, cmd = m.studentsView.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Загрузка..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine(), m.statusHint())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) headerTitle() string {
	if m.settings != nil && m.settings.UserName != "" {
		return "Расписание: " + m.settings.UserName
	}
	return "Расписание занятий"
}

// headerStatus shows today's date and the lessons still scheduled today.
func (m Model) headerStatus() string {
	today := agenda.DayLabel(model.DateOf(time.Now()))
	left := 0
	for _, l := range m.today {
		if l.Status == model.LessonScheduled {
			left++
		}
	}
	if left == 0 {
		return today
	}
	return fmt.Sprintf("%s · ещё %s", today, plural.WithNumber(left, plural.Lessons))
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAgenda:
		return m.agenda.View()
	case ViewLessonForm:
		return m.lessonForm.View()
	case ViewStudents:
		return m.studentsView.View()
	case ViewStats:
		return m.statsView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) statusLine() string {
	if m.status != "" && m.currentView == ViewAgenda {
		if m.statusErr {
			return theme.ErrorStyle.Render(m.status)
		}
		return m.status
	}
	return m.keyHints()
}

// statusHint keeps the help key visible while a notice replaces the hints.
func (m Model) statusHint() string {
	if m.status != "" && m.currentView == ViewAgenda {
		return "? справка"
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? закрыть | esc назад"
	case ViewCommand:
		return "enter выполнить | esc назад"
	case ViewLessonForm:
		return "enter далее | esc отмена"
	case ViewStudents:
		return "/ поиск | n новый | e изменить | d удалить | esc назад"
	case ViewStats:
		return "tab период | [ ] год | j/k прокрутка | esc назад"
	case ViewSettings:
		return "tab раздел | n добавить | e изменить | d удалить | esc назад"
	default:
		return "q выход | ? помощь | n занятие | c проведено | p оплата | h/l неделя | s ученики | t статистика | o настройки | : команда"
	}
}
