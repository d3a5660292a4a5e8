// Package students lists students with their lesson summaries and hosts
// the student form.
package students

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/stats"
	"github.com/nhle/tutor-scheduler/internal/theme"
	"github.com/nhle/tutor-scheduler/internal/ui/studentform"
)

// Store is the part of the store the students view uses.
type Store interface {
	GetStudents(ctx context.Context) ([]model.Student, error)
	GetLessons(ctx context.Context) ([]model.Lesson, error)
	SearchStudents(ctx context.Context, query string) ([]model.Student, error)
	AddStudent(ctx context.Context, s model.Student) (int64, error)
	UpdateStudent(ctx context.Context, id int64, patch model.StudentPatch) error
	DeleteStudent(ctx context.Context, id int64) error
}

// CloseMsg signals the parent to close the students view.
type CloseMsg struct{}

// ChangedMsg signals that students were added, edited or deleted.
type ChangedMsg struct{}

type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

type studentsLoadedMsg struct {
	all       []model.Student
	students  []model.Student
	summaries map[int64]stats.StudentSummary
	err       error
}

type studentSavedMsg struct{ err error }
type studentDeletedMsg struct{ err error }

// Model is the Bubble Tea model for the students view.
type Model struct {
	mode        viewMode
	store       Store
	keys        *keys.KeyMap
	settings    *model.Settings
	all         []model.Student
	students    []model.Student
	summaries   map[int64]stats.StudentSummary
	selectedIdx int
	query       string
	search      textinput.Model
	form        studentform.Model
	confirmForm *huh.Form
	confirm     *bool
	statusMsg   string
	width       int
	height      int
}

// New creates a new students view.
func New(s Store, k *keys.KeyMap, width, height int) Model {
	si := textinput.New()
	si.Placeholder = "имя ученика..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		mode:    modeList,
		store:   s,
		keys:    k,
		search:  si,
		form:    studentform.New(width, height),
		confirm: new(bool),
		width:   width,
		height:  height,
	}
}

// SetSettings replaces the settings used for subject names and the form.
func (m *Model) SetSettings(s *model.Settings) {
	m.settings = s
}

// Init loads students from the store.
func (m Model) Init() tea.Cmd {
	return m.loadStudents("")
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case studentsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Ошибка: %v", msg.err)
			return m, nil
		}
		m.all = msg.all
		m.students = msg.students
		m.summaries = msg.summaries
		if m.selectedIdx >= len(m.students) {
			m.selectedIdx = max(len(m.students)-1, 0)
		}
		return m, nil

	case studentSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Ошибка: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Ученик сохранён"
		return m, tea.Batch(m.loadStudents(m.query), func() tea.Msg { return ChangedMsg{} })

	case studentDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Ошибка: %v", msg.err)
			return m, nil
		}
		m.statusMsg = "Ученик удалён, занятия сохранены"
		return m, tea.Batch(m.loadStudents(m.query), func() tea.Msg { return ChangedMsg{} })

	case studentform.SubmittedMsg:
		return m, m.saveStudent(msg)

	case studentform.CancelMsg:
		m.mode = modeList
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeForm, modeConfirmDelete:
		return m.updateActiveForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.query != "" {
			m.query = ""
			return m, m.loadStudents("")
		}
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.students) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.students)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.students) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.students) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.query)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.New):
		m.form.SetOptions(m.settings, m.all)
		m.form.SetSize(m.width, m.height)
		m.mode = modeForm
		return m, m.form.StartCreate()

	case key.Matches(msg, m.keys.Edit):
		s, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.form.SetOptions(m.settings, m.all)
		m.form.SetSize(m.width, m.height)
		m.mode = modeForm
		return m, m.form.StartEdit(s)

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.Selected(); !ok {
			return m, nil
		}
		*m.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.query = strings.TrimSpace(m.search.Value())
		m.selectedIdx = 0
		return m, m.loadStudents(m.query)
	case "esc":
		m.mode = modeList
		m.search.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// Selected returns the student under the cursor.
func (m Model) Selected() (model.Student, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.students) {
		return model.Student{}, false
	}
	return m.students[m.selectedIdx], true
}

func (m Model) buildConfirmForm() *huh.Form {
	s, _ := m.Selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Удалить ученика %q?", s.Name)).
				Description("Занятия ученика останутся в расписании.").
				Affirmative("Удалить").
				Negative("Отмена").
				Value(m.confirm),
		),
	).WithWidth(min(max(m.width-4, 40), 100))
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case modeConfirmDelete:
		if m.confirmForm == nil {
			return m, nil
		}
		mdl, cmd := m.confirmForm.Update(msg)
		if f, ok := mdl.(*huh.Form); ok {
			m.confirmForm = f
		}
		switch m.confirmForm.State {
		case huh.StateCompleted:
			m.mode = modeList
			if s, ok := m.Selected(); ok && *m.confirm {
				return m, m.deleteStudent(s.ID)
			}
			return m, nil
		case huh.StateAborted:
			m.mode = modeList
			return m, nil
		}
		return m, cmd
	}
	return m, nil
}

// View renders the students view.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.form.View()
	case modeConfirmDelete:
		if m.confirmForm == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := "Ученики"
	if m.query != "" {
		title += fmt.Sprintf(": поиск %q", m.query)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if m.mode == modeSearch {
		b.WriteString(m.search.View())
	}
	b.WriteString("\n")

	if len(m.students) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		if m.query != "" {
			b.WriteString(emptyStyle.Render("Никого не найдено."))
		} else {
			b.WriteString(emptyStyle.Render("Учеников пока нет. Нажмите n, чтобы добавить."))
		}
	}
	for i, s := range m.students {
		label := theme.Swatch(s.Color) + " " + s.Name
		if s.Level != "" {
			label += theme.DimmedStyle.Render(" · " + s.Level)
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if s, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(m.renderCard(s))
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderCard(s model.Student) string {
	sum := m.summaries[s.ID]

	var subjects []string
	for _, id := range s.Subjects {
		name := id
		if m.settings != nil {
			sub, _ := m.settings.SubjectByID(id)
			name = sub.Name
		}
		subjects = append(subjects, name)
	}

	lines := []string{
		fmt.Sprintf("Всего: %s, проведено: %d", plural.WithNumber(sum.Total, plural.Lessons), sum.Completed),
		fmt.Sprintf("Часов: %s · Заработано: %s", plural.FormatHours(sum.Hours), plural.FormatMoney(sum.Earned)),
	}
	if sum.Unpaid > 0 {
		lines = append(lines, theme.PaymentStyle(false).Render("Долг: "+plural.FormatMoney(sum.Unpaid)))
	}
	if len(subjects) > 0 {
		lines = append(lines, "Предметы: "+strings.Join(subjects, ", "))
	}
	if s.DefaultPrice != nil {
		lines = append(lines, "Стоимость занятия: "+plural.FormatMoney(*s.DefaultPrice))
	}
	if s.Phone != "" || s.Email != "" {
		lines = append(lines, strings.TrimSpace(s.Phone+"  "+s.Email))
	}
	if s.Goals != "" {
		lines = append(lines, "Цели: "+s.Goals)
	}

	return theme.PanelStyle.Width(min(m.width-6, 80)).Render(strings.Join(lines, "\n"))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = width - 4
	m.form.SetSize(width, height)
}

// Searching reports whether keyboard input goes to a text field.
func (m Model) Searching() bool {
	return m.mode != modeList
}

func (m Model) loadStudents(query string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		all, err := s.GetStudents(ctx)
		if err != nil {
			return studentsLoadedMsg{err: err}
		}
		lessons, err := s.GetLessons(ctx)
		if err != nil {
			return studentsLoadedMsg{err: err}
		}
		summaries := stats.SummarizeStudents(all, lessons)

		if query == "" {
			return studentsLoadedMsg{all: all, students: all, summaries: summaries}
		}
		found, err := s.SearchStudents(ctx, query)
		if err != nil {
			return studentsLoadedMsg{err: err}
		}
		return studentsLoadedMsg{all: all, students: found, summaries: summaries}
	}
}

func (m Model) saveStudent(msg studentform.SubmittedMsg) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		if msg.ID == 0 {
			_, err := s.AddStudent(ctx, msg.Student)
			return studentSavedMsg{err: err}
		}
		err := s.UpdateStudent(ctx, msg.ID, studentform.PatchFrom(msg.Student))
		return studentSavedMsg{err: err}
	}
}

func (m Model) deleteStudent(id int64) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteStudent(context.Background(), id)
		return studentDeletedMsg{err: err}
	}
}
