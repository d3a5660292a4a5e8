package lessonform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/schedule"
)

func newForm(t *testing.T) Model {
	t.Helper()
	price := int64(2000)
	m := New(80, 40)
	m.SetOptions(nil, []model.Student{
		{ID: 1, Name: "Анна", Subjects: []string{"english"}, DefaultPrice: &price},
		{ID: 2, Name: "Борис"},
	})
	return m
}

func TestStartCreateDefaults(t *testing.T) {
	m := newForm(t)
	m.StartCreate(model.NewDate(2024, time.March, 11))

	assert.False(t, m.editMode)
	assert.Equal(t, int64(1), m.fb.studentID)
	assert.Equal(t, "english", m.fb.subject)
	assert.Equal(t, "2024-03-11", m.fb.date)
	assert.Equal(t, "09:00", m.fb.startTime)
	assert.Equal(t, 60, m.fb.duration)
	assert.Empty(t, m.fb.price)
}

func TestSubmitCreateUsesStudentPriceAndRepeat(t *testing.T) {
	m := newForm(t)
	m.StartCreate(model.NewDate(2024, time.March, 11))
	m.fb.topic = "  IELTS "
	m.fb.repeat = "4"

	msg := m.handleSubmit()()
	created, ok := msg.(LessonCreatedMsg)
	require.True(t, ok)

	assert.Equal(t, int64(2000), created.Lesson.Price)
	assert.Equal(t, "IELTS", created.Lesson.Topic)
	assert.Equal(t, model.LessonScheduled, created.Lesson.Status)
	assert.Equal(t, schedule.Recurrence{Enabled: true, Count: 4, Unit: schedule.UnitWeeks}, created.Recurrence)
}

func TestSubmitCreateWithoutRepeat(t *testing.T) {
	m := newForm(t)
	m.StartCreate(model.NewDate(2024, time.March, 11))
	m.fb.studentID = 2
	m.fb.price = "1800"
	m.fb.repeat = "abc"

	created := m.handleSubmit()().(LessonCreatedMsg)
	assert.Equal(t, int64(1800), created.Lesson.Price)
	assert.False(t, created.Recurrence.Enabled)
	assert.Zero(t, created.Recurrence.Steps())
}

func TestSubmitEditKeepsIdentity(t *testing.T) {
	m := newForm(t)
	created := time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC)
	m.StartEdit(model.Lesson{
		ID: 7, StudentID: 99, Subject: "russian",
		Date: model.NewDate(2024, time.March, 12), StartTime: model.TimeOfDay{Hour: 10, Minute: 30},
		Duration: 75, Price: 1500, Status: model.LessonCompleted, CreatedAt: created,
	})
	assert.Equal(t, "1500", m.fb.price)

	m.fb.paid = true
	updated := m.handleSubmit()().(LessonUpdatedMsg)

	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, int64(99), updated.Lesson.StudentID)
	assert.Equal(t, 75, updated.Lesson.Duration)
	assert.Equal(t, model.LessonCompleted, updated.Lesson.Status)
	assert.True(t, updated.Lesson.Paid)
	assert.Equal(t, created, updated.Lesson.CreatedAt)
}

func TestSubjectOptionsStudentFirst(t *testing.T) {
	settings := model.DefaultSettings()
	student := &model.Student{Subjects: []string{"spanish"}}

	opts := subjectOptions(&settings, student, "chemistry")
	// spanish moves to the front instead of appearing twice.
	require.Len(t, opts, 5)
	assert.Equal(t, "spanish", opts[0].Value)
	assert.Equal(t, "russian", opts[1].Value)
	assert.Equal(t, "chemistry", opts[4].Value)
	assert.Equal(t, "chemistry", opts[4].Key)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate("2024-03-11"))
	assert.Error(t, validateDate("11.03.2024"))
	assert.NoError(t, validateTime("09:30"))
	assert.Error(t, validateTime("9.30"))
	assert.NoError(t, validatePrice(""))
	assert.NoError(t, validatePrice("0"))
	assert.Error(t, validatePrice("-5"))
	assert.Error(t, validatePrice("abc"))
}
