package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Snapshot returns the complete contents of the store. Settings is nil
// when the singleton has not been created.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*model.Dataset, error) {
	students, err := s.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := s.GetLessons(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	return &model.Dataset{
		Students: students,
		Lessons:  lessons,
		Settings: settings,
	}, nil
}

// ReplaceAll clears all three collections and inserts data in their place,
// keeping the record ids it carries. It runs in one transaction: on any
// failure the previous contents are left untouched.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, data model.Dataset) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}
		for i, st := range data.Students {
			if _, err := insertStudent(ctx, tx, st); err != nil {
				return fmt.Errorf("inserting student %d of %d: %w", i+1, len(data.Students), err)
			}
		}
		for i, l := range data.Lessons {
			if _, err := insertLesson(ctx, tx, l); err != nil {
				return fmt.Errorf("inserting lesson %d of %d: %w", i+1, len(data.Lessons), err)
			}
		}
		if data.Settings != nil {
			if err := writeSettings(ctx, tx, data.Settings); err != nil {
				return fmt.Errorf("inserting settings: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.NewStorageError("replacing", "data", 0, err)
	}

	s.logger.Info("data replaced",
		zap.Int("students", len(data.Students)),
		zap.Int("lessons", len(data.Lessons)),
		zap.Bool("settings", data.Settings != nil),
	)
	return nil
}

// ClearAll removes every student, lesson and the settings record.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return clearTables(ctx, tx)
	})
	if err != nil {
		return model.NewStorageError("clearing", "data", 0, err)
	}

	s.logger.Info("data cleared")
	return nil
}

func clearTables(ctx context.Context, ex sqlx.ExecerContext) error {
	for _, table := range []string{"lessons", "students", "settings"} {
		if _, err := ex.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}
