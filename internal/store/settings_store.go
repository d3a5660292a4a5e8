package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/tutor-scheduler/internal/model"
)

const settingsColumns = `id, default_lesson_duration, default_price, work_start, work_end,
	subjects, topics, theme, user_name, tax_system, tax_records`

// settingsRow mirrors the settings table. List and map fields are stored
// as JSON text.
type settingsRow struct {
	ID                    int             `db:"id"`
	DefaultLessonDuration int             `db:"default_lesson_duration"`
	DefaultPrice          int64           `db:"default_price"`
	WorkStart             model.TimeOfDay `db:"work_start"`
	WorkEnd               model.TimeOfDay `db:"work_end"`
	Subjects              string          `db:"subjects"`
	Topics                string          `db:"topics"`
	Theme                 string          `db:"theme"`
	UserName              string          `db:"user_name"`
	TaxSystem             string          `db:"tax_system"`
	TaxRecords            string          `db:"tax_records"`
}

func (r settingsRow) toModel() (*model.Settings, error) {
	st := &model.Settings{
		ID:                    r.ID,
		DefaultLessonDuration: r.DefaultLessonDuration,
		DefaultPrice:          r.DefaultPrice,
		WorkingHours:          model.WorkingHours{Start: r.WorkStart, End: r.WorkEnd},
		Theme:                 r.Theme,
		UserName:              r.UserName,
		TaxRegime:             model.TaxRegime(r.TaxSystem),
	}
	if err := json.Unmarshal([]byte(r.Subjects), &st.Subjects); err != nil {
		return nil, fmt.Errorf("unmarshaling subjects: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Topics), &st.Topics); err != nil {
		return nil, fmt.Errorf("unmarshaling topics: %w", err)
	}
	if err := json.Unmarshal([]byte(r.TaxRecords), &st.TaxRecords); err != nil {
		return nil, fmt.Errorf("unmarshaling tax records: %w", err)
	}
	if st.Subjects == nil {
		st.Subjects = []model.Subject{}
	}
	if st.Topics == nil {
		st.Topics = map[string][]string{}
	}
	if st.TaxRecords == nil {
		st.TaxRecords = []model.TaxRecord{}
	}
	return st, nil
}

// InitializeSettings inserts the default settings if none exist yet and
// returns the current settings either way.
func (s *SQLiteStore) InitializeSettings(ctx context.Context) (*model.Settings, error) {
	defaults := model.DefaultSettings()
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM settings WHERE id = ?", model.SettingsID); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		s.logger.Info("initializing default settings")
		return writeSettings(ctx, tx, &defaults)
	})
	if err != nil {
		return nil, model.NewStorageError("initializing", "settings", 0, err)
	}
	return s.GetSettings(ctx)
}

// GetSettings returns the settings singleton.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*model.Settings, error) {
	st, err := readSettings(ctx, s.db)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("getting", "settings", model.SettingsID)
	}
	if err != nil {
		return nil, model.NewStorageError("getting", "settings", 0, err)
	}
	return st, nil
}

// UpdateSettings applies a partial update to the settings singleton and
// returns the result.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (*model.Settings, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Settings
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		current, err := readSettings(ctx, tx)
		if err != nil {
			return err
		}
		current.Apply(patch)
		if err := writeSettings(ctx, tx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("updating", "settings", model.SettingsID)
	}
	if err != nil {
		return nil, model.NewStorageError("updating", "settings", 0, err)
	}
	return updated, nil
}

func readSettings(ctx context.Context, q sqlx.QueryerContext) (*model.Settings, error) {
	var row settingsRow
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT "+settingsColumns+" FROM settings WHERE id = ?", model.SettingsID)
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// writeSettings upserts the singleton row. The id is always SettingsID.
func writeSettings(ctx context.Context, ex sqlx.ExecerContext, st *model.Settings) error {
	subjects := st.Subjects
	if subjects == nil {
		subjects = []model.Subject{}
	}
	topics := st.Topics
	if topics == nil {
		topics = map[string][]string{}
	}
	records := st.TaxRecords
	if records == nil {
		records = []model.TaxRecord{}
	}

	subjectsJSON, err := jsonText(subjects)
	if err != nil {
		return err
	}
	topicsJSON, err := jsonText(topics)
	if err != nil {
		return err
	}
	recordsJSON, err := jsonText(records)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (
			id, default_lesson_duration, default_price, work_start, work_end,
			subjects, topics, theme, user_name, tax_system, tax_records
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		model.SettingsID, st.DefaultLessonDuration, st.DefaultPrice,
		st.WorkingHours.Start.String(), st.WorkingHours.End.String(),
		subjectsJSON, topicsJSON, st.Theme, st.UserName,
		string(st.TaxRegime), recordsJSON,
	)
	return err
}
