package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
)

const lessonColumns = `id, student_id, subject, topic, date, start_time,
	duration, price, is_online, meeting_link, status, paid, notes, created_at`

const lessonOrder = " ORDER BY date, start_time, id"

// lessonRow mirrors the lessons table.
type lessonRow struct {
	ID          int64           `db:"id"`
	StudentID   int64           `db:"student_id"`
	Subject     string          `db:"subject"`
	Topic       string          `db:"topic"`
	Date        model.Date      `db:"date"`
	StartTime   model.TimeOfDay `db:"start_time"`
	Duration    int             `db:"duration"`
	Price       int64           `db:"price"`
	IsOnline    int             `db:"is_online"`
	MeetingLink string          `db:"meeting_link"`
	Status      string          `db:"status"`
	Paid        int             `db:"paid"`
	Notes       string          `db:"notes"`
	CreatedAt   string          `db:"created_at"`
}

func (r lessonRow) toModel() (model.Lesson, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return model.Lesson{}, err
	}
	return model.Lesson{
		ID:          r.ID,
		StudentID:   r.StudentID,
		Subject:     r.Subject,
		Topic:       r.Topic,
		Date:        r.Date,
		StartTime:   r.StartTime,
		Duration:    r.Duration,
		Price:       r.Price,
		IsOnline:    r.IsOnline != 0,
		MeetingLink: r.MeetingLink,
		Status:      model.LessonStatus(r.Status),
		Paid:        r.Paid != 0,
		Notes:       r.Notes,
		CreatedAt:   createdAt,
	}, nil
}

// GetLessons returns every lesson ordered by date and start time.
func (s *SQLiteStore) GetLessons(ctx context.Context) ([]model.Lesson, error) {
	return s.queryLessons(ctx, "")
}

// GetLessonByID retrieves a single lesson by its ID.
func (s *SQLiteStore) GetLessonByID(ctx context.Context, id int64) (*model.Lesson, error) {
	var row lessonRow
	err := s.db.GetContext(ctx, &row, "SELECT "+lessonColumns+" FROM lessons WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("getting", "lesson", id)
	}
	if err != nil {
		return nil, model.NewStorageError("getting", "lesson", id, err)
	}

	l, err := row.toModel()
	if err != nil {
		return nil, model.NewStorageError("getting", "lesson", id, err)
	}
	return &l, nil
}

// GetLessonsByDateRange returns the lessons whose date lies within
// [start, end], both ends inclusive.
func (s *SQLiteStore) GetLessonsByDateRange(
	ctx context.Context,
	start, end model.Date,
) ([]model.Lesson, error) {
	return s.queryLessons(ctx, "date BETWEEN ? AND ?", start.String(), end.String())
}

// GetLessonsByStudent returns the lessons of one student.
func (s *SQLiteStore) GetLessonsByStudent(ctx context.Context, studentID int64) ([]model.Lesson, error) {
	return s.queryLessons(ctx, "student_id = ?", studentID)
}

// GetTodayLessons returns the lessons dated on the current local day.
func (s *SQLiteStore) GetTodayLessons(ctx context.Context) ([]model.Lesson, error) {
	return s.queryLessons(ctx, "date = ?", model.DateOf(s.now()).String())
}

// GetUpcomingLessons returns scheduled lessons starting at or after now,
// soonest first. A non-positive limit returns all of them.
func (s *SQLiteStore) GetUpcomingLessons(ctx context.Context, limit int) ([]model.Lesson, error) {
	now := s.now()
	today := model.DateOf(now).String()
	clock := model.ClockOf(now).String()

	// Start times have minute precision; a lesson in the current minute has
	// already started unless now is exactly on the minute.
	op := ">="
	if now.Second() != 0 || now.Nanosecond() != 0 {
		op = ">"
	}

	where := fmt.Sprintf("status = ? AND (date > ? OR (date = ? AND start_time %s ?))", op)
	query := "SELECT " + lessonColumns + " FROM lessons WHERE " + where + lessonOrder
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	lessons, err := s.selectLessons(ctx, s.db, query,
		string(model.LessonScheduled), today, today, clock)
	if err != nil {
		return nil, model.NewStorageError("querying", "lessons", 0, err)
	}
	return lessons, nil
}

// GetUnpaidLessons returns the lessons that are not cancelled and not paid.
func (s *SQLiteStore) GetUnpaidLessons(ctx context.Context) ([]model.Lesson, error) {
	return s.queryLessons(ctx, "status != ? AND paid = 0", string(model.LessonCancelled))
}

// AddLesson inserts a new lesson and returns its assigned id. A missing
// status defaults to scheduled.
func (s *SQLiteStore) AddLesson(ctx context.Context, lesson model.Lesson) (int64, error) {
	if err := lesson.Validate(); err != nil {
		return 0, err
	}
	lesson.ID = 0
	lesson.CreatedAt = s.now()

	id, err := insertLesson(ctx, s.db, lesson)
	if err != nil {
		return 0, model.NewStorageError("adding", "lesson", 0, err)
	}

	s.logger.Debug("lesson added", zap.Int64("id", id), zap.Stringer("date", lesson.Date))
	return id, nil
}

// BulkAddLessons inserts all lessons in one transaction, timestamping each
// individually, and returns their ids in input order. Any failure rolls
// back the whole batch and is reported as a single error.
func (s *SQLiteStore) BulkAddLessons(ctx context.Context, lessons []model.Lesson) ([]int64, error) {
	if len(lessons) == 0 {
		return nil, nil
	}
	for i, l := range lessons {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("lesson %d of %d: %w", i+1, len(lessons), err)
		}
	}

	ids := make([]int64, 0, len(lessons))
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for i, l := range lessons {
			l.ID = 0
			l.CreatedAt = s.now()
			id, err := insertLesson(ctx, tx, l)
			if err != nil {
				return fmt.Errorf("inserting lesson %d of %d: %w", i+1, len(lessons), err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, model.NewStorageError("bulk adding", "lessons", 0, err)
	}

	s.logger.Debug("lessons added", zap.Int("count", len(ids)))
	return ids, nil
}

// UpdateLesson applies a partial update to the lesson with the given id.
func (s *SQLiteStore) UpdateLesson(ctx context.Context, id int64, patch model.LessonPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	var sets []string
	var args []interface{}

	if patch.StudentID != nil {
		sets = append(sets, "student_id = ?")
		args = append(args, *patch.StudentID)
	}
	if patch.Subject != nil {
		sets = append(sets, "subject = ?")
		args = append(args, *patch.Subject)
	}
	if patch.Topic != nil {
		sets = append(sets, "topic = ?")
		args = append(args, strings.TrimSpace(*patch.Topic))
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, patch.Date.String())
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, patch.StartTime.String())
	}
	if patch.Duration != nil {
		sets = append(sets, "duration = ?")
		args = append(args, *patch.Duration)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.IsOnline != nil {
		sets = append(sets, "is_online = ?")
		args = append(args, boolToInt(*patch.IsOnline))
	}
	if patch.MeetingLink != nil {
		sets = append(sets, "meeting_link = ?")
		args = append(args, *patch.MeetingLink)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Paid != nil {
		sets = append(sets, "paid = ?")
		args = append(args, boolToInt(*patch.Paid))
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}

	return s.updateByID(ctx, "lessons", "lesson", id, sets, args)
}

// DeleteLesson removes a lesson by ID.
func (s *SQLiteStore) DeleteLesson(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "lessons", "lesson", id)
}

// MarkLessonCompleted sets the lesson's status to completed.
func (s *SQLiteStore) MarkLessonCompleted(ctx context.Context, id int64) error {
	status := model.LessonCompleted
	return s.UpdateLesson(ctx, id, model.LessonPatch{Status: &status})
}

// MarkLessonPaid sets the lesson's payment flag.
func (s *SQLiteStore) MarkLessonPaid(ctx context.Context, id int64) error {
	paid := true
	return s.UpdateLesson(ctx, id, model.LessonPatch{Paid: &paid})
}

// MarkLessonCancelled sets the lesson's status to cancelled.
func (s *SQLiteStore) MarkLessonCancelled(ctx context.Context, id int64) error {
	status := model.LessonCancelled
	return s.UpdateLesson(ctx, id, model.LessonPatch{Status: &status})
}

// queryLessons selects lessons matching an optional WHERE clause.
func (s *SQLiteStore) queryLessons(
	ctx context.Context,
	where string,
	args ...interface{},
) ([]model.Lesson, error) {
	query := "SELECT " + lessonColumns + " FROM lessons"
	if where != "" {
		query += " WHERE " + where
	}
	query += lessonOrder

	lessons, err := s.selectLessons(ctx, s.db, query, args...)
	if err != nil {
		return nil, model.NewStorageError("querying", "lessons", 0, err)
	}
	return lessons, nil
}

func (s *SQLiteStore) selectLessons(
	ctx context.Context,
	q sqlx.QueryerContext,
	query string,
	args ...interface{},
) ([]model.Lesson, error) {
	var rows []lessonRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}

	lessons := make([]model.Lesson, 0, len(rows))
	for _, r := range rows {
		l, err := r.toModel()
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// insertLesson writes l, keeping its id when non-zero.
func insertLesson(ctx context.Context, ex sqlx.ExecerContext, l model.Lesson) (int64, error) {
	if l.Status == "" {
		l.Status = model.LessonScheduled
	}
	if l.Duration <= 0 {
		l.Duration = model.DefaultLessonMinutes
	}

	result, err := ex.ExecContext(ctx, `
		INSERT INTO lessons (
			id, student_id, subject, topic, date, start_time,
			duration, price, is_online, meeting_link,
			status, paid, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(l.ID), l.StudentID, l.Subject, strings.TrimSpace(l.Topic),
		l.Date.String(), l.StartTime.String(),
		l.Duration, l.Price, boolToInt(l.IsOnline), l.MeetingLink,
		string(l.Status), boolToInt(l.Paid), l.Notes, formatTimestamp(l.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
