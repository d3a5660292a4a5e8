// Package settingsview edits the settings singleton: defaults, subjects,
// topic dictionaries and per-year tax records.
package settingsview

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/theme"
	"github.com/nhle/tutor-scheduler/internal/ui"
)

// Updater persists settings patches.
type Updater interface {
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (*model.Settings, error)
}

// CloseMsg signals the parent to close the settings view.
type CloseMsg struct{}

// SavedMsg carries the settings after a successful update.
type SavedMsg struct {
	Settings *model.Settings
}

type section int

const (
	sectionGeneral section = iota
	sectionSubjects
	sectionTopics
	sectionTaxes
)

var sectionTitles = []string{"Общие", "Предметы", "Темы", "Налоги"}

type viewMode int

const (
	modeList viewMode = iota
	modeForm
	modeConfirmDelete
)

type formKind int

const (
	formGeneral formKind = iota
	formSubject
	formTopic
	formTax
)

var regimes = []model.TaxRegime{
	model.RegimePatent,
	model.RegimeUSN,
	model.RegimeSelfEmployed,
	model.RegimeNone,
}

type settingsSavedMsg struct {
	settings *model.Settings
	notice   string
	err      error
}

type topicRow struct {
	subjectID string
	topic     string
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode        viewMode
	section     section
	kind        formKind
	store       Updater
	keys        *keys.KeyMap
	settings    *model.Settings
	now         func() time.Time
	selectedIdx int

	fb          *formBindings
	form        *huh.Form
	editing     bool
	editSubject string
	editYear    int

	confirmForm *huh.Form
	confirm     *bool

	statusMsg string
	width     int
	height    int
}

// New creates a settings view.
func New(s Updater, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    modeList,
		store:   s,
		keys:    k,
		now:     time.Now,
		fb:      &formBindings{},
		confirm: new(bool),
		width:   width,
		height:  height,
	}
}

// SetSettings replaces the settings shown and edited.
func (m *Model) SetSettings(s *model.Settings) {
	m.settings = s
	m.clampSelection()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Ошибка: %v", msg.err)
			return m, nil
		}
		m.settings = msg.settings
		m.statusMsg = msg.notice
		m.clampSelection()
		saved := msg.settings
		return m, func() tea.Msg { return SavedMsg{Settings: saved} }

	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateActiveForm(msg)
		}
		return m.handleListKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.settings == nil {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.CyclePeriod):
		m.section = (m.section + 1) % section(len(sectionTitles))
		m.selectedIdx = 0
		m.statusMsg = ""
		return m, nil

	case msg.String() == "shift+tab":
		m.section = (m.section + section(len(sectionTitles)) - 1) % section(len(sectionTitles))
		m.selectedIdx = 0
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if n := m.rowCount(); n > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if n := m.rowCount(); n > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = n - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m.startNew()

	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()

	case key.Matches(msg, m.keys.Delete):
		if m.section == sectionGeneral || m.rowCount() == 0 {
			return m, nil
		}
		*m.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) startNew() (Model, tea.Cmd) {
	m.editing = false
	switch m.section {
	case sectionSubjects:
		m.fb.loadSubject(model.Subject{Color: model.DefaultEventColor})
		return m.openForm(formSubject)
	case sectionTopics:
		if len(m.settings.Subjects) == 0 {
			m.statusMsg = "Сначала добавьте предмет"
			return m, nil
		}
		subjectID := m.settings.Subjects[0].ID
		if row, ok := m.selectedTopic(); ok {
			subjectID = row.subjectID
		}
		m.fb.topicSubject = subjectID
		m.fb.topic = ""
		return m.openForm(formTopic)
	case sectionTaxes:
		m.fb.loadTax(m.settings.NewTaxRecord(m.now()))
		return m.openForm(formTax)
	default:
		return m.startEdit()
	}
}

func (m Model) startEdit() (Model, tea.Cmd) {
	switch m.section {
	case sectionGeneral:
		m.fb.loadGeneral(m.settings)
		return m.openForm(formGeneral)
	case sectionSubjects:
		if m.selectedIdx >= len(m.settings.Subjects) {
			return m, nil
		}
		sub := m.settings.Subjects[m.selectedIdx]
		m.editing = true
		m.editSubject = sub.ID
		m.fb.loadSubject(sub)
		return m.openForm(formSubject)
	case sectionTaxes:
		records := m.settings.SortedTaxRecords()
		if m.selectedIdx >= len(records) {
			return m, nil
		}
		m.editing = true
		m.editYear = records[m.selectedIdx].Year
		m.fb.loadTax(records[m.selectedIdx])
		return m.openForm(formTax)
	}
	return m, nil
}

func (m Model) openForm(kind formKind) (Model, tea.Cmd) {
	m.kind = kind
	m.mode = modeForm
	m.statusMsg = ""
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		if m.form == nil {
			return m, nil
		}
		mdl, cmd := m.form.Update(msg)
		if f, ok := mdl.(*huh.Form); ok {
			m.form = f
		}
		switch m.form.State {
		case huh.StateCompleted:
			return m, m.handleSubmit()
		case huh.StateAborted:
			m.mode = modeList
			return m, nil
		}
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
			if *m.confirm {
				return m, m.handleDelete()
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

// handleSubmit turns the completed form into a settings patch.
func (m Model) handleSubmit() tea.Cmd {
	fb := m.fb
	switch m.kind {
	case formGeneral:
		patch, err := fb.generalPatch()
		if err != nil {
			return m.fail(err)
		}
		return m.save(patch, "Настройки сохранены")

	case formSubject:
		sub := fb.subject()
		if m.editing {
			sub.ID = m.editSubject
			subjects := slices.Clone(m.settings.Subjects)
			for i := range subjects {
				if subjects[i].ID == sub.ID {
					subjects[i] = sub
				}
			}
			return m.save(model.SettingsPatch{Subjects: &subjects}, "Предмет сохранён")
		}
		patch, err := m.settings.AddSubject(sub)
		if err != nil {
			return m.fail(err)
		}
		return m.save(patch, "Предмет добавлен")

	case formTopic:
		patch, ok := m.settings.AddTopic(fb.topicSubject, fb.topic)
		if !ok {
			return m.fail(model.NewValidationError("topic", "тема пустая или уже есть"))
		}
		return m.save(patch, "Тема добавлена")

	case formTax:
		rec, err := fb.taxRecord()
		if err != nil {
			return m.fail(err)
		}
		base := *m.settings
		if m.editing {
			if rec.Year != m.editYear && hasTaxYear(&base, rec.Year) {
				return m.fail(model.NewValidationError("taxRecords", fmt.Sprintf("запись за %d год уже есть", rec.Year)))
			}
			base.Apply(base.RemoveTaxRecord(m.editYear))
		} else if hasTaxYear(&base, rec.Year) {
			return m.fail(model.NewValidationError("taxRecords", fmt.Sprintf("запись за %d год уже есть", rec.Year)))
		}
		return m.save(base.PutTaxRecord(rec), fmt.Sprintf("Налоги за %d год сохранены", rec.Year))
	}
	return nil
}

func (m Model) handleDelete() tea.Cmd {
	switch m.section {
	case sectionSubjects:
		if m.selectedIdx < len(m.settings.Subjects) {
			sub := m.settings.Subjects[m.selectedIdx]
			return m.save(m.settings.RemoveSubject(sub.ID), "Предмет удалён")
		}
	case sectionTopics:
		if row, ok := m.selectedTopic(); ok {
			return m.save(m.settings.RemoveTopic(row.subjectID, row.topic), "Тема удалена")
		}
	case sectionTaxes:
		records := m.settings.SortedTaxRecords()
		if m.selectedIdx < len(records) {
			return m.save(m.settings.RemoveTaxRecord(records[m.selectedIdx].Year), "Запись удалена")
		}
	}
	return nil
}

func (m Model) save(patch model.SettingsPatch, notice string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		updated, err := s.UpdateSettings(context.Background(), patch)
		return settingsSavedMsg{settings: updated, notice: notice, err: err}
	}
}

func (m Model) fail(err error) tea.Cmd {
	return func() tea.Msg { return settingsSavedMsg{err: err} }
}

func hasTaxYear(s *model.Settings, year int) bool {
	return slices.ContainsFunc(s.TaxRecords, func(r model.TaxRecord) bool { return r.Year == year })
}

func (m Model) topicRows() []topicRow {
	if m.settings == nil {
		return nil
	}
	var rows []topicRow
	for _, sub := range m.settings.Subjects {
		for _, t := range m.settings.Topics[sub.ID] {
			rows = append(rows, topicRow{subjectID: sub.ID, topic: t})
		}
	}
	return rows
}

func (m Model) selectedTopic() (topicRow, bool) {
	rows := m.topicRows()
	if m.selectedIdx < 0 || m.selectedIdx >= len(rows) {
		return topicRow{}, false
	}
	return rows[m.selectedIdx], true
}

func (m Model) rowCount() int {
	if m.settings == nil {
		return 0
	}
	switch m.section {
	case sectionSubjects:
		return len(m.settings.Subjects)
	case sectionTopics:
		return len(m.topicRows())
	case sectionTaxes:
		return len(m.settings.TaxRecords)
	}
	return 0
}

func (m *Model) clampSelection() {
	if n := m.rowCount(); m.selectedIdx >= n {
		m.selectedIdx = max(n-1, 0)
	}
}

func (m Model) buildConfirmForm() *huh.Form {
	var title string
	switch m.section {
	case sectionSubjects:
		title = fmt.Sprintf("Удалить предмет %q?", m.settings.Subjects[m.selectedIdx].Name)
	case sectionTopics:
		row, _ := m.selectedTopic()
		title = fmt.Sprintf("Удалить тему %q?", row.topic)
	case sectionTaxes:
		title = fmt.Sprintf("Удалить налоговую запись за %d год?", m.settings.SortedTaxRecords()[m.selectedIdx].Year)
	}

	confirm := huh.NewConfirm().
		Title(title).
		Affirmative("Удалить").
		Negative("Отмена").
		Value(m.confirm)
	if m.section == sectionSubjects {
		confirm = confirm.Description("Ученики и занятия с этим предметом не изменятся.")
	}
	return huh.NewForm(huh.NewGroup(confirm)).WithWidth(m.formWidth())
}

// View renders the settings view.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		if m.form == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
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
	b.WriteString(titleStyle.Render("Настройки"))
	b.WriteString("\n\n")

	tabs := make([]string, len(sectionTitles))
	for i, t := range sectionTitles {
		if section(i) == m.section {
			tabs[i] = theme.HeaderStyle.Render(" " + t + " ")
		} else {
			tabs[i] = theme.DimmedStyle.Render(" " + t + " ")
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	if m.settings == nil {
		b.WriteString(theme.DimmedStyle.Render("Загрузка..."))
	} else {
		switch m.section {
		case sectionGeneral:
			b.WriteString(m.viewGeneral())
		default:
			b.WriteString(m.viewRows())
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hint := "tab раздел | n добавить | e изменить | d удалить | esc назад"
	if m.section == sectionGeneral {
		hint = "tab раздел | e изменить | esc назад"
	}
	b.WriteString(theme.HelpStyle.Render(hint))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewGeneral() string {
	s := m.settings
	name := s.UserName
	if name == "" {
		name = "не указано"
	}
	themeLabel := "Светлая"
	if s.Theme == "dark" {
		themeLabel = "Тёмная"
	}

	rows := [][2]string{
		{"Имя", name},
		{"Длительность занятия", plural.FormatDuration(s.DefaultLessonDuration)},
		{"Стоимость занятия", plural.FormatMoney(s.DefaultPrice)},
		{"Рабочие часы", s.WorkingHours.Start.String() + "–" + s.WorkingHours.End.String()},
		{"Тема оформления", themeLabel},
		{"Налоговый режим", s.TaxRegime.Label()},
	}

	label := lipgloss.NewStyle().Width(24).Foreground(theme.ColorGray)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = label.Render(r[0]) + r[1]
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRows() string {
	var lines []string
	switch m.section {
	case sectionSubjects:
		for _, sub := range m.settings.Subjects {
			lines = append(lines, theme.Swatch(sub.Color)+" "+sub.Name+theme.DimmedStyle.Render(" · "+sub.ID))
		}
	case sectionTopics:
		for _, row := range m.topicRows() {
			sub, _ := m.settings.SubjectByID(row.subjectID)
			lines = append(lines, row.topic+theme.DimmedStyle.Render(" · "+sub.Name))
		}
	case sectionTaxes:
		for _, r := range m.settings.SortedTaxRecords() {
			lines = append(lines, fmt.Sprintf("%d  патент %s · взносы %s · ставка %s%%",
				r.Year, plural.FormatMoney(r.PatentCost), plural.FormatMoney(r.InsuranceCost), formatRate(r.TaxRate)))
		}
	}

	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).
			Render("Пусто. Нажмите n, чтобы добавить.")
	}

	var b strings.Builder
	for i, line := range lines {
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Editing reports whether keyboard input goes to a form.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return ui.FormWidth(m.width)
}
