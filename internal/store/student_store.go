package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/tutor-scheduler/internal/model"
)

const studentColumns = `id, name, phone, email, subjects, level,
	default_price, color, goals, notes, created_at`

// studentRow mirrors the students table.
type studentRow struct {
	ID           int64         `db:"id"`
	Name         string        `db:"name"`
	Phone        string        `db:"phone"`
	Email        string        `db:"email"`
	Subjects     string        `db:"subjects"`
	Level        string        `db:"level"`
	DefaultPrice sql.NullInt64 `db:"default_price"`
	Color        string        `db:"color"`
	Goals        string        `db:"goals"`
	Notes        string        `db:"notes"`
	CreatedAt    string        `db:"created_at"`
}

func (r studentRow) toModel() (model.Student, error) {
	st := model.Student{
		ID:    r.ID,
		Name:  r.Name,
		Phone: r.Phone,
		Email: r.Email,
		Level: r.Level,
		Color: r.Color,
		Goals: r.Goals,
		Notes: r.Notes,
	}
	if r.DefaultPrice.Valid {
		price := r.DefaultPrice.Int64
		st.DefaultPrice = &price
	}
	if r.Subjects != "" {
		if err := json.Unmarshal([]byte(r.Subjects), &st.Subjects); err != nil {
			return model.Student{}, fmt.Errorf("unmarshaling subjects of student %d: %w", r.ID, err)
		}
	}
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return model.Student{}, err
	}
	st.CreatedAt = createdAt
	return st, nil
}

// GetStudents returns every student in creation order.
func (s *SQLiteStore) GetStudents(ctx context.Context) ([]model.Student, error) {
	students, err := s.selectStudents(ctx, s.db, "SELECT "+studentColumns+" FROM students ORDER BY id")
	if err != nil {
		return nil, model.NewStorageError("querying", "students", 0, err)
	}
	return students, nil
}

// GetStudentByID retrieves a single student by its ID.
func (s *SQLiteStore) GetStudentByID(ctx context.Context, id int64) (*model.Student, error) {
	var row studentRow
	err := s.db.GetContext(ctx, &row, "SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("getting", "student", id)
	}
	if err != nil {
		return nil, model.NewStorageError("getting", "student", id, err)
	}

	st, err := row.toModel()
	if err != nil {
		return nil, model.NewStorageError("getting", "student", id, err)
	}
	return &st, nil
}

// AddStudent inserts a new student and returns its assigned id. The
// creation timestamp is set by the store.
func (s *SQLiteStore) AddStudent(ctx context.Context, student model.Student) (int64, error) {
	if err := student.Validate(); err != nil {
		return 0, err
	}
	student.ID = 0
	student.CreatedAt = s.now()

	id, err := insertStudent(ctx, s.db, student)
	if err != nil {
		return 0, model.NewStorageError("adding", "student", 0, err)
	}

	s.logger.Debug("student added")
	return id, nil
}

// UpdateStudent applies a partial update to the student with the given id.
func (s *SQLiteStore) UpdateStudent(ctx context.Context, id int64, patch model.StudentPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	var sets []string
	var args []interface{}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Subjects != nil {
		subjects, err := jsonText(nonNilStrings(*patch.Subjects))
		if err != nil {
			return model.NewStorageError("updating", "student", id, err)
		}
		sets = append(sets, "subjects = ?")
		args = append(args, subjects)
	}
	if patch.Level != nil {
		sets = append(sets, "level = ?")
		args = append(args, *patch.Level)
	}
	if patch.DefaultPrice != nil {
		sets = append(sets, "default_price = ?")
		args = append(args, *patch.DefaultPrice)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.Goals != nil {
		sets = append(sets, "goals = ?")
		args = append(args, *patch.Goals)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}

	return s.updateByID(ctx, "students", "student", id, sets, args)
}

// DeleteStudent removes a student by ID. Lessons referencing the student
// are left in place.
func (s *SQLiteStore) DeleteStudent(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "students", "student", id)
}

// SearchStudents returns the students whose name contains query,
// case-insensitively. An empty query matches everyone.
func (s *SQLiteStore) SearchStudents(ctx context.Context, query string) ([]model.Student, error) {
	students, err := s.GetStudents(ctx)
	if err != nil {
		return nil, err
	}

	// SQLite's LIKE folds ASCII only, so Cyrillic names are matched here.
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return students, nil
	}

	var matched []model.Student
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), q) {
			matched = append(matched, st)
		}
	}
	return matched, nil
}

func (s *SQLiteStore) selectStudents(
	ctx context.Context,
	q sqlx.QueryerContext,
	query string,
	args ...interface{},
) ([]model.Student, error) {
	var rows []studentRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}

	students := make([]model.Student, 0, len(rows))
	for _, r := range rows {
		st, err := r.toModel()
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

// insertStudent writes st, keeping its id when non-zero.
func insertStudent(ctx context.Context, ex sqlx.ExecerContext, st model.Student) (int64, error) {
	subjects, err := jsonText(nonNilStrings(st.Subjects))
	if err != nil {
		return 0, err
	}

	var price sql.NullInt64
	if st.DefaultPrice != nil {
		price = sql.NullInt64{Int64: *st.DefaultPrice, Valid: true}
	}

	result, err := ex.ExecContext(ctx, `
		INSERT INTO students (
			id, name, phone, email, subjects, level,
			default_price, color, goals, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(st.ID), strings.TrimSpace(st.Name), st.Phone, st.Email, subjects, st.Level,
		price, st.Color, st.Goals, st.Notes, formatTimestamp(st.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
