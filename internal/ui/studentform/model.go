// Package studentform is the create/edit form for students.
package studentform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/theme"
	"github.com/nhle/tutor-scheduler/internal/ui"
)

// SubmittedMsg is dispatched when the form is completed. ID is zero for
// a new student.
type SubmittedMsg struct {
	ID      int64
	Student model.Student
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type formBindings struct {
	name         string
	phone        string
	email        string
	subjects     []string
	level        string
	defaultPrice string
	color        string
	goals        string
	notes        string
}

// Model is the Bubble Tea model for the student form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editing  model.Student
	settings *model.Settings
	students []model.Student
	width    int
	height   int
}

// New creates a new student form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetOptions sets the subjects on offer and the existing students used
// for colour suggestions.
func (m *Model) SetOptions(settings *model.Settings, students []model.Student) {
	if settings == nil {
		defaults := model.DefaultSettings()
		settings = &defaults
	}
	m.settings = settings
	m.students = students
}

// Editing reports whether the form edits an existing student.
func (m Model) Editing() bool {
	return m.editing.ID != 0
}

// StartCreate initializes the form for a new student with the first free
// palette colour.
func (m *Model) StartCreate() tea.Cmd {
	m.editing = model.Student{}
	*m.fb = formBindings{color: model.NextFreeColor(m.students)}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing s.
func (m *Model) StartEdit(s model.Student) tea.Cmd {
	m.editing = s
	*m.fb = formBindings{
		name:     s.Name,
		phone:    s.Phone,
		email:    s.Email,
		subjects: append([]string(nil), s.Subjects...),
		level:    s.Level,
		color:    s.Color,
		goals:    s.Goals,
		notes:    s.Notes,
	}
	if s.DefaultPrice != nil {
		m.fb.defaultPrice = strconv.FormatInt(*s.DefaultPrice, 10)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the student form.
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

// View renders the student form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Новый ученик"
	if m.Editing() {
		titleText = "Ученик: " + m.editing.Name
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(titleText) + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fb, students, editID := m.fb, m.students, m.editing.ID

	subjectOpts := make([]huh.Option[string], len(m.settings.Subjects))
	for i, sub := range m.settings.Subjects {
		subjectOpts[i] = huh.NewOption(sub.Name, sub.ID)
	}

	levelOpts := []huh.Option[string]{huh.NewOption("Не указан", "")}
	for _, lvl := range model.StudentLevels {
		levelOpts = append(levelOpts, huh.NewOption(lvl, lvl))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Имя").
				Value(&fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("имя обязательно")
					}
					return nil
				}),
			huh.NewInput().
				Title("Телефон").
				Value(&fb.phone),
			huh.NewInput().
				Title("Email").
				Value(&fb.email),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Предметы").
				Options(subjectOpts...).
				Value(&fb.subjects),
			huh.NewSelect[string]().
				Title("Уровень").
				Options(levelOpts...).
				Value(&fb.level),
			huh.NewInput().
				Title("Своя стоимость занятия, ₽").
				Placeholder(strconv.FormatInt(m.settings.DefaultPrice, 10)).
				Value(&fb.defaultPrice).
				Validate(validatePrice),
			huh.NewInput().
				Title("Цвет").
				DescriptionFunc(func() string {
					return colorWarning(students, fb.color, editID)
				}, &fb.color).
				Value(&fb.color).
				Validate(validateColor),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Цели").
				Value(&fb.goals),
			huh.NewText().
				Title("Заметки").
				Value(&fb.notes),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// colorWarning is advisory only; a shared colour is still accepted.
func colorWarning(students []model.Student, color string, exceptID int64) string {
	if other, ok := model.ColorTakenBy(students, color, exceptID); ok {
		return "Этот цвет уже у ученика " + other.Name
	}
	return ""
}

func (m Model) handleSubmit() tea.Cmd {
	fb := m.fb
	s := model.Student{
		ID:        m.editing.ID,
		Name:      strings.TrimSpace(fb.name),
		Phone:     strings.TrimSpace(fb.phone),
		Email:     strings.TrimSpace(fb.email),
		Subjects:  append([]string{}, fb.subjects...),
		Level:     fb.level,
		Color:     strings.ToLower(strings.TrimSpace(fb.color)),
		Goals:     fb.goals,
		Notes:     fb.notes,
		CreatedAt: m.editing.CreatedAt,
	}
	if p := strings.TrimSpace(fb.defaultPrice); p != "" {
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			s.DefaultPrice = &n
		}
	}
	return func() tea.Msg { return SubmittedMsg{ID: s.ID, Student: s} }
}

// PatchFrom returns a patch overwriting every editable field with s.
func PatchFrom(s model.Student) model.StudentPatch {
	subjects := append([]string{}, s.Subjects...)
	price := s.DefaultPrice
	return model.StudentPatch{
		Name:         &s.Name,
		Phone:        &s.Phone,
		Email:        &s.Email,
		Subjects:     &subjects,
		Level:        &s.Level,
		DefaultPrice: &price,
		Color:        &s.Color,
		Goals:        &s.Goals,
		Notes:        &s.Notes,
	}
}

func (m Model) formWidth() int {
	return ui.FormWidth(m.width)
}

func (m Model) formHeight() int {
	return ui.FormHeight(m.height)
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

func validateColor(s string) error {
	if !hexColor.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("цвет в формате #rrggbb")
	}
	return nil
}
