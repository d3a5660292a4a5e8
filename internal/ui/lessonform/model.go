// Package lessonform is the create/edit form for lessons.
package lessonform

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/schedule"
	"github.com/nhle/tutor-scheduler/internal/theme"
	"github.com/nhle/tutor-scheduler/internal/ui"
)

// LessonCreatedMsg is dispatched when a new lesson is submitted.
type LessonCreatedMsg struct {
	Lesson     model.Lesson
	Recurrence schedule.Recurrence
}

// LessonUpdatedMsg is dispatched when an existing lesson is submitted.
type LessonUpdatedMsg struct {
	ID     int64
	Lesson model.Lesson
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	studentID   int64
	subject     string
	topic       string
	date        string
	startTime   string
	duration    int
	price       string
	isOnline    bool
	meetingLink string
	notes       string
	repeat      string
	status      model.LessonStatus
	paid        bool
}

// Model is the Bubble Tea model for the lesson form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editing  model.Lesson
	settings *model.Settings
	students []model.Student
	width    int
	height   int
}

// New creates a new lesson form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetOptions sets the students and settings the selectors offer.
func (m *Model) SetOptions(settings *model.Settings, students []model.Student) {
	if settings == nil {
		defaults := model.DefaultSettings()
		settings = &defaults
	}
	m.settings = settings
	m.students = students
}

// StartCreate initializes the form for a new lesson on date.
func (m *Model) StartCreate(date model.Date) tea.Cmd {
	m.editMode = false
	m.editing = model.Lesson{}

	draft := schedule.Draft(m.settings, nil, date, m.settings.WorkingHours.Start)
	m.load(draft)
	m.fb.price = ""
	m.fb.repeat = ""
	if len(m.students) > 0 {
		m.fb.studentID = m.students[0].ID
		if subs := m.students[0].Subjects; len(subs) > 0 {
			m.fb.subject = subs[0]
		}
	}

	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing l.
func (m *Model) StartEdit(l model.Lesson) tea.Cmd {
	m.editMode = true
	m.editing = l
	m.load(l)
	m.fb.price = strconv.FormatInt(l.Price, 10)

	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) load(l model.Lesson) {
	m.fb.studentID = l.StudentID
	m.fb.subject = l.Subject
	m.fb.topic = l.Topic
	m.fb.date = l.Date.String()
	m.fb.startTime = l.StartTime.String()
	m.fb.duration = l.Minutes()
	m.fb.isOnline = l.IsOnline
	m.fb.meetingLink = l.MeetingLink
	m.fb.notes = l.Notes
	m.fb.status = l.Status
	m.fb.paid = l.Paid
}

// Update handles messages for the lesson form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the lesson form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Новое занятие"
	if m.editMode {
		titleText = "Редактирование занятия"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	// Closures read the heap-held bindings, never the model copy.
	fb, settings, students := m.fb, m.settings, m.students

	groups := []*huh.Group{
		huh.NewGroup(
			m.studentField(),
			m.subjectField(),
			huh.NewInput().
				Title("Тема").
				Placeholder("Необязательно").
				SuggestionsFunc(func() []string {
					return settings.SuggestTopics(fb.subject, "")
				}, &fb.subject).
				Value(&m.fb.topic),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Дата").
				Placeholder("ГГГГ-ММ-ДД").
				Value(&m.fb.date).
				Validate(validateDate),
			huh.NewInput().
				Title("Начало").
				Placeholder("ЧЧ:ММ").
				Value(&m.fb.startTime).
				Validate(validateTime),
			m.durationField(),
			huh.NewInput().
				Title("Стоимость, ₽").
				PlaceholderFunc(func() string {
					return strconv.FormatInt(schedule.PriceFor(settings, findStudent(students, fb.studentID)), 10)
				}, &fb.studentID).
				Value(&m.fb.price).
				Validate(validatePrice),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Онлайн").
				Affirmative("Да").
				Negative("Нет").
				Value(&m.fb.isOnline),
			huh.NewInput().
				Title("Ссылка на встречу").
				Placeholder("https://...").
				Value(&m.fb.meetingLink),
			huh.NewText().
				Title("Заметки").
				Value(&m.fb.notes),
		),
	}

	if m.editMode {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[model.LessonStatus]().
				Title("Статус").
				Options(
					huh.NewOption(theme.StatusLabel(model.LessonScheduled), model.LessonScheduled),
					huh.NewOption(theme.StatusLabel(model.LessonCompleted), model.LessonCompleted),
					huh.NewOption(theme.StatusLabel(model.LessonCancelled), model.LessonCancelled),
				).
				Value(&m.fb.status),
			huh.NewConfirm().
				Title("Оплачено").
				Affirmative("Да").
				Negative("Нет").
				Value(&m.fb.paid),
		))
	} else {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Повторять еженедельно").
				Description(fmt.Sprintf("Сколько ещё недель (до %d). Пусто или 0 без повтора.", schedule.MaxRepeatCount)).
				Placeholder("0").
				Value(&m.fb.repeat),
		))
	}

	return huh.NewForm(groups...).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) studentField() huh.Field {
	opts := make([]huh.Option[int64], 0, len(m.students)+1)
	for _, s := range m.students {
		opts = append(opts, huh.NewOption(s.Name, s.ID))
	}
	// A lesson of a deleted student keeps pointing at it.
	if m.editMode && findStudent(m.students, m.fb.studentID) == nil {
		opts = append(opts, huh.NewOption(model.UnknownStudentName, m.fb.studentID))
	}
	return huh.NewSelect[int64]().
		Title("Ученик").
		Options(opts...).
		Validate(func(id int64) error {
			if id == 0 {
				return fmt.Errorf("выберите ученика")
			}
			return nil
		}).
		Value(&m.fb.studentID)
}

func (m *Model) subjectField() huh.Field {
	fb, settings, students := m.fb, m.settings, m.students
	current := fb.subject
	return huh.NewSelect[string]().
		Title("Предмет").
		OptionsFunc(func() []huh.Option[string] {
			return subjectOptions(settings, findStudent(students, fb.studentID), current)
		}, &fb.studentID).
		Value(&fb.subject)
}

// subjectOptions lists the student's subjects first, then the rest. An
// unknown current subject stays selectable.
func subjectOptions(settings *model.Settings, student *model.Student, current string) []huh.Option[string] {
	var opts []huh.Option[string]
	seen := make(map[string]bool)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		sub, _ := settings.SubjectByID(id)
		opts = append(opts, huh.NewOption(sub.Name, id))
	}

	if student != nil {
		for _, id := range student.Subjects {
			add(id)
		}
	}
	for _, sub := range settings.Subjects {
		add(sub.ID)
	}
	add(current)
	return opts
}

func (m *Model) durationField() huh.Field {
	durations := slices.Clone(model.LessonDurations)
	if !slices.Contains(durations, m.fb.duration) {
		durations = append(durations, m.fb.duration)
		slices.Sort(durations)
	}
	opts := make([]huh.Option[int], len(durations))
	for i, d := range durations {
		opts[i] = huh.NewOption(plural.FormatDuration(d), d)
	}
	return huh.NewSelect[int]().
		Title("Длительность").
		Options(opts...).
		Value(&m.fb.duration)
}

func findStudent(students []model.Student, id int64) *model.Student {
	for i := range students {
		if students[i].ID == id {
			return &students[i]
		}
	}
	return nil
}

func (m Model) handleSubmit() tea.Cmd {
	fb := m.fb

	date, _ := model.ParseDate(fb.date)
	start, _ := model.ParseTimeOfDay(fb.startTime)

	price := schedule.PriceFor(m.settings, findStudent(m.students, fb.studentID))
	if s := strings.TrimSpace(fb.price); s != "" {
		price, _ = strconv.ParseInt(s, 10, 64)
	}

	l := model.Lesson{
		StudentID:   fb.studentID,
		Subject:     fb.subject,
		Topic:       strings.TrimSpace(fb.topic),
		Date:        date,
		StartTime:   start,
		Duration:    fb.duration,
		Price:       price,
		IsOnline:    fb.isOnline,
		MeetingLink: strings.TrimSpace(fb.meetingLink),
		Notes:       fb.notes,
		Status:      model.LessonScheduled,
	}

	if m.editMode {
		l.ID = m.editing.ID
		l.Status = fb.status
		l.Paid = fb.paid
		l.CreatedAt = m.editing.CreatedAt
		return func() tea.Msg { return LessonUpdatedMsg{ID: l.ID, Lesson: l} }
	}

	count := schedule.ParseRepeatCount(fb.repeat)
	rec := schedule.Recurrence{Enabled: count > 0, Count: count, Unit: schedule.UnitWeeks}
	return func() tea.Msg { return LessonCreatedMsg{Lesson: l, Recurrence: rec} }
}

func (m Model) formWidth() int {
	return ui.FormWidth(m.width)
}

func (m Model) formHeight() int {
	return ui.FormHeight(m.height)
}

func validateDate(s string) error {
	if _, err := model.ParseDate(s); err != nil {
		return fmt.Errorf("дата в формате ГГГГ-ММ-ДД")
	}
	return nil
}

func validateTime(s string) error {
	if _, err := model.ParseTimeOfDay(s); err != nil {
		return fmt.Errorf("время в формате ЧЧ:ММ")
	}
	return nil
}

func validatePrice(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("неотрицательное целое число")
	}
	return nil
}
