package calendar

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/model"
)

func fixture() ([]model.Lesson, model.StudentDirectory, *model.Settings) {
	settings := model.DefaultSettings()
	students := model.NewStudentDirectory([]model.Student{
		{ID: 1, Name: "Анна", Color: "#22c55e"},
		{ID: 2, Name: "Борис"},
	})
	lessons := []model.Lesson{
		{
			ID: 10, StudentID: 1, Subject: "english", Topic: "IELTS",
			Date: model.NewDate(2024, time.March, 11), StartTime: model.TimeOfDay{Hour: 15},
			Duration: 90, Status: model.LessonCompleted, Paid: true,
			MeetingLink: "https://meet.example.com/abc",
		},
		{
			ID: 11, StudentID: 2, Subject: "russian",
			Date: model.NewDate(2024, time.March, 12), StartTime: model.TimeOfDay{Hour: 10, Minute: 30},
			Duration: 60, Status: model.LessonScheduled,
		},
		{
			ID: 12, StudentID: 99, Subject: "chemistry",
			Date: model.NewDate(2024, time.March, 13), StartTime: model.TimeOfDay{Hour: 9},
			Status: model.LessonCancelled,
		},
	}
	return lessons, students, &settings
}

func TestProject(t *testing.T) {
	lessons, students, settings := fixture()
	events := Project(lessons, students, settings, time.UTC)
	require.Len(t, events, 3)

	assert.Equal(t, "✓ Анна • Английский язык: IELTS 💰", events[0].Title)
	assert.Equal(t, "#22c55e", events[0].Color)
	assert.Equal(t, time.Date(2024, time.March, 11, 15, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2024, time.March, 11, 16, 30, 0, 0, time.UTC), events[0].End)

	// Student without a colour falls back to the subject's.
	assert.Equal(t, "Борис • Русский язык 💳", events[1].Title)
	assert.Equal(t, "#ef4444", events[1].Color)

	// Unknown student and subject, cancelled, default duration.
	assert.Equal(t, "❌ "+model.UnknownStudentName+" • chemistry", events[2].Title)
	assert.Equal(t, model.DefaultEventColor, events[2].Color)
	assert.Equal(t, time.Hour, events[2].End.Sub(events[2].Start))
	assert.True(t, events[2].Cancelled())
}

func TestPaymentIcon(t *testing.T) {
	assert.Equal(t, " 💰", PaymentIcon(model.Lesson{Status: model.LessonScheduled, Paid: true}))
	assert.Equal(t, " 💳", PaymentIcon(model.Lesson{Status: model.LessonCompleted}))
	assert.Empty(t, PaymentIcon(model.Lesson{Status: model.LessonCancelled, Paid: true}))
}

func TestEventUIDIsStable(t *testing.T) {
	assert.Equal(t, EventUID(42), EventUID(42))
	assert.NotEqual(t, EventUID(42), EventUID(43))
}

func TestWriteAndParseICS(t *testing.T) {
	lessons, students, settings := fixture()
	events := Project(lessons, students, settings, time.UTC)
	now := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, "Уроки", events, now))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "UID:"+EventUID(10))
	assert.Contains(t, out, "STATUS:CANCELLED")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))

	parsed, err := ParseICS(&buf, time.UTC)
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, int64(10), parsed[0].LessonID)
	assert.Equal(t, events[0].Title, parsed[0].Title)
	assert.True(t, events[0].Start.Equal(parsed[0].Start))
	assert.True(t, events[0].End.Equal(parsed[0].End))
	assert.Equal(t, "https://meet.example.com/abc", parsed[0].MeetingLink)
	assert.Equal(t, model.LessonScheduled, parsed[0].Status)

	assert.Equal(t, model.LessonCancelled, parsed[2].Status)
}

func TestParseICSRejectsGarbage(t *testing.T) {
	_, err := ParseICS(strings.NewReader("BEGIN:VTODO\nEND:VTODO\n"), time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrFormat))
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, time.March, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "tutor-scheduler-2024-03-09.ics", FileName(now))
}
