// Package schedule creates lessons, expands weekly series and applies
// calendar drag and resize intents.
package schedule

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// UnitWeeks is the only supported repeat unit.
const UnitWeeks = "weeks"

// MaxRepeatCount caps how many lessons a series adds after the first.
const MaxRepeatCount = 52

// LessonStore is the part of the store the planner writes through.
type LessonStore interface {
	AddLesson(ctx context.Context, lesson model.Lesson) (int64, error)
	BulkAddLessons(ctx context.Context, lessons []model.Lesson) ([]int64, error)
	UpdateLesson(ctx context.Context, id int64, patch model.LessonPatch) error
}

// Recurrence asks for a new lesson to be repeated weekly. It is a request
// parameter only and never stored.
type Recurrence struct {
	Enabled bool
	// Count is the number of lessons added after the first one.
	Count int
	// Unit must be UnitWeeks or empty.
	Unit string
}

// Validate rejects repeat units other than weeks.
func (r Recurrence) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Unit != "" && r.Unit != UnitWeeks {
		return model.NewValidationError("repeatUnit", "unsupported repeat unit "+r.Unit)
	}
	return nil
}

// Steps returns the number of lessons to generate after the base one,
// clamped to [0, MaxRepeatCount].
func (r Recurrence) Steps() int {
	if !r.Enabled || r.Count <= 0 {
		return 0
	}
	return min(r.Count, MaxRepeatCount)
}

// ParseRepeatCount reads a repeat count typed by the user. Anything that
// is not a positive number yields 0, i.e. no repetition.
func ParseRepeatCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Created reports what Create persisted.
type Created struct {
	BaseID    int64
	SeriesIDs []int64
}

// Total returns the number of lessons created.
func (c Created) Total() int {
	return 1 + len(c.SeriesIDs)
}

// Planner creates lessons and applies calendar intents.
type Planner struct {
	store  LessonStore
	logger *zap.Logger
}

// NewPlanner creates a Planner writing through store.
func NewPlanner(store LessonStore, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{store: store, logger: logger}
}

// Draft returns a new scheduled lesson with the settings' defaults and the
// student's own price when one is set.
func Draft(settings *model.Settings, student *model.Student, date model.Date, start model.TimeOfDay) model.Lesson {
	l := model.Lesson{
		Date:      date,
		StartTime: start,
		Duration:  settings.DefaultLessonDuration,
		Price:     PriceFor(settings, student),
		Status:    model.LessonScheduled,
	}
	if student != nil {
		l.StudentID = student.ID
		if len(student.Subjects) > 0 {
			l.Subject = student.Subjects[0]
		}
	}
	return l
}

// PriceFor returns the student's override price or the default price.
func PriceFor(settings *model.Settings, student *model.Student) int64 {
	if student != nil && student.DefaultPrice != nil {
		return *student.DefaultPrice
	}
	return settings.DefaultPrice
}

// Create persists lesson and, when rec is enabled, a weekly series after
// it. The base lesson is written first; the series follows in one bulk
// insert. If the bulk insert fails the base lesson stays and the returned
// Created still carries its id.
func (p *Planner) Create(
	ctx context.Context,
	settings *model.Settings,
	lesson model.Lesson,
	rec Recurrence,
) (Created, error) {
	if lesson.Duration <= 0 {
		lesson.Duration = settings.DefaultLessonDuration
	}
	if lesson.Status == "" {
		lesson.Status = model.LessonScheduled
	}
	lesson.Topic = strings.TrimSpace(lesson.Topic)

	if err := lesson.Validate(); err != nil {
		return Created{}, err
	}
	if err := rec.Validate(); err != nil {
		return Created{}, err
	}

	baseID, err := p.store.AddLesson(ctx, lesson)
	if err != nil {
		return Created{}, err
	}
	created := Created{BaseID: baseID}

	steps := rec.Steps()
	if steps == 0 {
		return created, nil
	}

	ids, err := p.store.BulkAddLessons(ctx, Series(lesson, steps))
	if err != nil {
		p.logger.Error("creating lesson series",
			zap.Int64("base_id", baseID),
			zap.Int("count", steps),
			zap.Error(err),
		)
		return created, fmt.Errorf("creating %d repeated lessons: %w", steps, err)
	}
	created.SeriesIDs = ids

	p.logger.Info("lesson series created",
		zap.Int64("base_id", baseID),
		zap.Int("count", len(ids)),
	)
	return created, nil
}

// Series returns count copies of base dated 1..count weeks after it. The
// copies are scheduled, unpaid and carry no notes.
func Series(base model.Lesson, count int) []model.Lesson {
	out := make([]model.Lesson, 0, count)
	for i := 1; i <= count; i++ {
		l := base
		l.ID = 0
		l.Date = base.Date.AddDays(7 * i)
		l.Status = model.LessonScheduled
		l.Paid = false
		l.Notes = ""
		l.CreatedAt = time.Time{}
		out = append(out, l)
	}
	return out
}

// Reschedule moves a lesson to the date and time of newStart.
func (p *Planner) Reschedule(ctx context.Context, id int64, newStart time.Time) error {
	date := model.DateOf(newStart)
	start := model.ClockOf(newStart)
	if err := p.store.UpdateLesson(ctx, id, model.LessonPatch{Date: &date, StartTime: &start}); err != nil {
		return err
	}
	p.logger.Debug("lesson rescheduled", zap.Int64("id", id), zap.Time("start", newStart))
	return nil
}

// Resize sets a lesson's duration to the whole minutes between start and
// end.
func (p *Planner) Resize(ctx context.Context, id int64, start, end time.Time) error {
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes <= 0 {
		return model.NewValidationError("duration", "lesson must end after it starts")
	}
	if err := p.store.UpdateLesson(ctx, id, model.LessonPatch{Duration: &minutes}); err != nil {
		return err
	}
	p.logger.Debug("lesson resized", zap.Int64("id", id), zap.Int("minutes", minutes))
	return nil
}
