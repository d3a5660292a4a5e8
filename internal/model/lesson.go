package model

import (
	"strings"
	"time"
)

// LessonStatus is the lifecycle state of a lesson. Payment is tracked
// separately by Lesson.Paid.
type LessonStatus string

const (
	LessonScheduled LessonStatus = "scheduled"
	LessonCompleted LessonStatus = "completed"
	LessonCancelled LessonStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonScheduled, LessonCompleted, LessonCancelled:
		return true
	}
	return false
}

// DefaultLessonMinutes is used wherever a lesson has no duration.
const DefaultLessonMinutes = 60

// LessonDurations are the durations offered by the lesson form.
var LessonDurations = []int{30, 45, 60, 90, 120}

// Lesson is one tutoring session with one student in one subject.
type Lesson struct {
	ID        int64 `json:"id"`
	StudentID int64 `json:"studentId"`

	// Subject references Settings.Subjects by id; it is not enforced.
	Subject string `json:"subject"`
	Topic   string `json:"topic"`

	Date      Date      `json:"date"`
	StartTime TimeOfDay `json:"startTime"`
	Duration  int       `json:"duration"` // minutes
	Price     int64     `json:"price"`    // whole currency units

	IsOnline    bool   `json:"isOnline"`
	MeetingLink string `json:"meetingLink"`

	Status    LessonStatus `json:"status"`
	Paid      bool         `json:"isPaid"`
	Notes     string       `json:"notes"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Validate checks the fields a lesson cannot be saved without.
func (l Lesson) Validate() error {
	if l.StudentID == 0 {
		return NewValidationError("studentId", "student is required")
	}
	if strings.TrimSpace(l.Subject) == "" {
		return NewValidationError("subject", "subject is required")
	}
	if l.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if l.Duration <= 0 {
		return NewValidationError("duration", "duration must be positive")
	}
	if l.Price < 0 {
		return NewValidationError("price", "price must not be negative")
	}
	if l.Status != "" && !l.Status.Valid() {
		return NewValidationError("status", "unknown status "+string(l.Status))
	}
	return nil
}

// Minutes returns the duration, defaulting to DefaultLessonMinutes.
func (l Lesson) Minutes() int {
	if l.Duration <= 0 {
		return DefaultLessonMinutes
	}
	return l.Duration
}

// Hours returns the duration in hours.
func (l Lesson) Hours() float64 {
	return float64(l.Minutes()) / 60
}

// Start returns the moment the lesson begins in loc.
func (l Lesson) Start(loc *time.Location) time.Time {
	return l.StartTime.On(l.Date, loc)
}

// End returns the moment the lesson ends in loc.
func (l Lesson) End(loc *time.Location) time.Time {
	return l.Start(loc).Add(time.Duration(l.Minutes()) * time.Minute)
}

// LessonPatch is a partial update. Nil fields are left unchanged.
type LessonPatch struct {
	StudentID   *int64
	Subject     *string
	Topic       *string
	Date        *Date
	StartTime   *TimeOfDay
	Duration    *int
	Price       *int64
	IsOnline    *bool
	MeetingLink *string
	Status      *LessonStatus
	Paid        *bool
	Notes       *string
}

// Validate checks the fields the patch sets.
func (p LessonPatch) Validate() error {
	if p.StudentID != nil && *p.StudentID == 0 {
		return NewValidationError("studentId", "student is required")
	}
	if p.Subject != nil && strings.TrimSpace(*p.Subject) == "" {
		return NewValidationError("subject", "subject is required")
	}
	if p.Date != nil && p.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if p.Duration != nil && *p.Duration <= 0 {
		return NewValidationError("duration", "duration must be positive")
	}
	if p.Price != nil && *p.Price < 0 {
		return NewValidationError("price", "price must not be negative")
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "unknown status "+string(*p.Status))
	}
	return nil
}

// PatchFrom returns a patch that overwrites every editable field with
// the values of l. Edits made through the lesson form use it.
func PatchFrom(l Lesson) LessonPatch {
	status := l.Status
	if status == "" {
		status = LessonScheduled
	}
	return LessonPatch{
		StudentID:   &l.StudentID,
		Subject:     &l.Subject,
		Topic:       &l.Topic,
		Date:        &l.Date,
		StartTime:   &l.StartTime,
		Duration:    &l.Duration,
		Price:       &l.Price,
		IsOnline:    &l.IsOnline,
		MeetingLink: &l.MeetingLink,
		Status:      &status,
		Paid:        &l.Paid,
		Notes:       &l.Notes,
	}
}
