// Package calendar projects lessons onto calendar events and exchanges
// them as iCalendar feeds.
package calendar

import (
	"strings"
	"time"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Event is one lesson as a calendar surface draws it.
type Event struct {
	LessonID int64
	Title    string
	Start    time.Time
	End      time.Time
	Color    string

	Status      model.LessonStatus
	Paid        bool
	MeetingLink string
}

// Cancelled reports whether the event's lesson is cancelled.
func (e Event) Cancelled() bool {
	return e.Status == model.LessonCancelled
}

// Project converts lessons into events in loc. Missing students and
// subjects resolve to placeholders.
func Project(
	lessons []model.Lesson,
	students model.StudentDirectory,
	settings *model.Settings,
	loc *time.Location,
) []Event {
	events := make([]Event, 0, len(lessons))
	for _, l := range lessons {
		subject, _ := settings.SubjectByID(l.Subject)

		color := students.Color(l.StudentID)
		if color == "" {
			color = subject.Color
		}
		if color == "" {
			color = model.DefaultEventColor
		}

		events = append(events, Event{
			LessonID:    l.ID,
			Title:       Title(l, students.Name(l.StudentID), subject.Name),
			Start:       l.Start(loc),
			End:         l.End(loc),
			Color:       color,
			Status:      l.Status,
			Paid:        l.Paid,
			MeetingLink: l.MeetingLink,
		})
	}
	return events
}

// Title renders the event label:
// "<status icon><student> • <subject>[: <topic>]<payment icon>".
func Title(l model.Lesson, studentName, subjectName string) string {
	var b strings.Builder
	b.WriteString(StatusIcon(l.Status))
	b.WriteString(studentName)
	b.WriteString(" • ")
	b.WriteString(subjectName)
	if l.Topic != "" {
		b.WriteString(": ")
		b.WriteString(l.Topic)
	}
	b.WriteString(PaymentIcon(l))
	return b.String()
}

// StatusIcon returns the title prefix for status.
func StatusIcon(status model.LessonStatus) string {
	switch status {
	case model.LessonCompleted:
		return "✓ "
	case model.LessonCancelled:
		return "❌ "
	default:
		return ""
	}
}

// PaymentIcon returns the title suffix for the lesson's payment state.
// Cancelled lessons carry none.
func PaymentIcon(l model.Lesson) string {
	switch {
	case l.Status == model.LessonCancelled:
		return ""
	case l.Paid:
		return " 💰"
	default:
		return " 💳"
	}
}
