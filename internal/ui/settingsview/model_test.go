package settingsview

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/testutil"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	s := testutil.NewTestStore(t)
	settings, err := s.InitializeSettings(context.Background())
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 100, 40)
	m.SetSettings(settings)
	m.now = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

// submit runs the form's submit command and feeds the result back.
func submit(t *testing.T, m Model) (Model, tea.Msg) {
	t.Helper()
	cmd := m.handleSubmit()
	require.NotNil(t, cmd)
	m, next := m.Update(cmd())
	if next == nil {
		return m, nil
	}
	return m, next()
}

func TestSectionsCycle(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "Рабочие часы")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, sectionSubjects, m.section)
	assert.Contains(t, m.View(), "Литература")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, sectionTaxes, m.section)
	assert.Contains(t, m.View(), "Пусто")
}

func TestAddSubject(t *testing.T) {
	m := newTestModel(t)
	m.section = sectionSubjects

	m, _ = m.startNew()
	require.Equal(t, modeForm, m.mode)
	m.fb.subjectID = "chemistry"
	m.fb.subjectName = "Химия"
	m.fb.subjectColor = "#10B981"

	m, msg := submit(t, m)
	saved, ok := msg.(SavedMsg)
	require.True(t, ok)
	require.Len(t, saved.Settings.Subjects, 5)
	assert.Equal(t, model.Subject{ID: "chemistry", Name: "Химия", Color: "#10b981"}, saved.Settings.Subjects[4])
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Предмет добавлен", m.statusMsg)
}

func TestAddDuplicateSubjectFails(t *testing.T) {
	m := newTestModel(t)
	m.section = sectionSubjects

	m, _ = m.startNew()
	m.fb.subjectID = "english"
	m.fb.subjectName = "Английский"
	m.fb.subjectColor = "#000000"

	m, msg := submit(t, m)
	assert.Nil(t, msg)
	assert.Contains(t, m.statusMsg, "already exists")
	assert.Len(t, m.settings.Subjects, 4)
}

func TestEditSubjectKeepsID(t *testing.T) {
	m := newTestModel(t)
	m.section = sectionSubjects
	m.selectedIdx = 2

	m, _ = m.startEdit()
	assert.Equal(t, "english", m.editSubject)
	m.fb.subjectName = "English"

	m, _ = submit(t, m)
	sub, ok := m.settings.SubjectByID("english")
	require.True(t, ok)
	assert.Equal(t, "English", sub.Name)
	assert.Len(t, m.settings.Subjects, 4)
}

func TestAddAndRemoveTopic(t *testing.T) {
	m := newTestModel(t)
	m.section = sectionTopics

	m, _ = m.startNew()
	assert.Equal(t, "russian", m.fb.topicSubject)
	m.fb.topicSubject = "spanish"
	m.fb.topic = "  Сериалы "

	m, _ = submit(t, m)
	assert.Contains(t, m.settings.Topics["spanish"], "Сериалы")

	m, _ = m.startNew()
	m.fb.topicSubject = "spanish"
	m.fb.topic = "Сериалы"
	m, _ = submit(t, m)
	assert.Contains(t, m.statusMsg, "уже есть")

	rows := m.topicRows()
	last := len(rows) - 1
	require.Equal(t, topicRow{subjectID: "spanish", topic: "Сериалы"}, rows[last])
	m.selectedIdx = last
	m, _ = m.Update(m.handleDelete()())
	assert.NotContains(t, m.settings.Topics["spanish"], "Сериалы")
}

func TestTaxRecords(t *testing.T) {
	m := newTestModel(t)
	m.section = sectionTaxes

	m, _ = m.startNew()
	assert.Equal(t, "2024", m.fb.taxYear)
	assert.Equal(t, "30000", m.fb.patentCost)
	assert.Equal(t, "6", m.fb.taxRate)
	m, _ = submit(t, m)
	require.Len(t, m.settings.TaxRecords, 1)

	// A second new record lands on the nearest free year.
	m, _ = m.startNew()
	assert.Equal(t, "2023", m.fb.taxYear)
	m.fb.taxRate = "4,5"
	m, _ = submit(t, m)
	require.Len(t, m.settings.TaxRecords, 2)
	assert.Equal(t, 4.5, m.settings.TaxRecordFor(2023).TaxRate)

	// Moving 2023 onto 2024 is rejected.
	m.selectedIdx = 1
	m, _ = m.startEdit()
	assert.Equal(t, 2023, m.editYear)
	m.fb.taxYear = "2024"
	m, _ = submit(t, m)
	assert.Contains(t, m.statusMsg, "уже есть")

	m, _ = m.startEdit()
	m.fb.taxYear = "2022"
	m, _ = submit(t, m)
	years := []int{}
	for _, r := range m.settings.SortedTaxRecords() {
		years = append(years, r.Year)
	}
	assert.Equal(t, []int{2024, 2022}, years)
}

func TestGeneralForm(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.startEdit()
	require.Equal(t, formGeneral, m.kind)
	assert.Equal(t, "09:00", m.fb.workStart)
	assert.Equal(t, model.RegimePatent, m.fb.regime)

	m.fb.workEnd = "08:00"
	m, msg := submit(t, m)
	assert.Nil(t, msg)
	assert.Contains(t, m.statusMsg, "раньше начала")

	m, _ = m.startEdit()
	m.fb.duration = "90"
	m.fb.price = "2000"
	m.fb.regime = model.RegimeUSN
	m.fb.userName = " Ольга "
	m, _ = submit(t, m)
	assert.Equal(t, 90, m.settings.DefaultLessonDuration)
	assert.Equal(t, int64(2000), m.settings.DefaultPrice)
	assert.Equal(t, model.RegimeUSN, m.settings.TaxRegime)
	assert.Equal(t, "Ольга", m.settings.UserName)
}

func TestFormValidators(t *testing.T) {
	assert.NoError(t, validateRate("6,5"))
	assert.Error(t, validateRate("101"))
	assert.NoError(t, validateAmount(""))
	assert.Error(t, validateAmount("-1"))
	assert.Error(t, validateYear("1999"))
	assert.NoError(t, validateSubjectID("history-2"))
	assert.Error(t, validateSubjectID("История"))
	assert.Error(t, validatePositive("0"))
}
