package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/backup"
	"github.com/nhle/tutor-scheduler/internal/calendar"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/report"
	"github.com/nhle/tutor-scheduler/internal/stats"
	"github.com/nhle/tutor-scheduler/internal/store"
)

// Files runs the file operations shared by the palette commands and the
// one-shot command line flags. An empty path picks the default file name
// in the working directory.
type Files struct {
	store   store.Store
	codec   *backup.Codec
	stats   *stats.Service
	reports *report.Writer
	cfg     *model.AppConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewFiles creates Files over s.
func NewFiles(s store.Store, cfg *model.AppConfig, logger *zap.Logger) *Files {
	return &Files{
		store:   s,
		codec:   backup.NewCodec(s, logger),
		stats:   stats.NewService(s, logger),
		reports: report.NewWriter(logger),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// ExportBackup writes the whole data set to path and returns the path used.
func (f *Files) ExportBackup(ctx context.Context, path string) (string, backup.Result, error) {
	if path == "" {
		path = backup.FileName(f.now())
	}
	var res backup.Result
	err := writeFile(path, func(w io.Writer) error {
		var err error
		res, err = f.codec.Export(ctx, w)
		return err
	})
	if err != nil {
		return path, backup.Result{}, err
	}
	f.logger.Info("backup exported",
		zap.String("path", path),
		zap.Int("students", res.Students),
		zap.Int("lessons", res.Lessons),
	)
	return path, res, nil
}

// ImportBackup replaces the data set with the document at path.
func (f *Files) ImportBackup(ctx context.Context, path string) (backup.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return backup.Result{}, fmt.Errorf("opening backup %s: %w", path, err)
	}
	defer file.Close()

	return f.codec.Import(ctx, file)
}

// Reset clears every record, settings included.
func (f *Files) Reset(ctx context.Context) error {
	return f.codec.Reset(ctx)
}

// ExportCalendar writes every lesson as an iCalendar feed and returns the
// path used and the number of events.
func (f *Files) ExportCalendar(ctx context.Context, path string, settings *model.Settings) (string, int, error) {
	now := f.now()
	if path == "" {
		path = calendar.FileName(now)
	}

	lessons, err := f.store.GetLessons(ctx)
	if err != nil {
		return path, 0, err
	}
	students, err := f.store.GetStudents(ctx)
	if err != nil {
		return path, 0, err
	}

	events := calendar.Project(lessons, model.NewStudentDirectory(students), settings, time.Local)
	name := "Занятия"
	if settings.UserName != "" {
		name += ": " + settings.UserName
	}

	err = writeFile(path, func(w io.Writer) error {
		return calendar.WriteICS(w, name, events, now)
	})
	if err != nil {
		return path, 0, err
	}
	f.logger.Info("calendar exported", zap.String("path", path), zap.Int("events", len(events)))
	return path, len(events), nil
}

// CheckCalendar reads the iCalendar file at path and returns how many
// events it holds and how many of them are cancelled.
func (f *Files) CheckCalendar(path string) (events, cancelled int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening calendar %s: %w", path, err)
	}
	defer file.Close()

	parsed, err := calendar.ParseICS(file, time.Local)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range parsed {
		if e.Cancelled() {
			cancelled++
		}
	}
	f.logger.Debug("calendar checked", zap.String("path", path), zap.Int("events", len(parsed)))
	return len(parsed), cancelled, nil
}

// ExportReport writes the statistics workbook for preset ending today and
// the current year's financials.
func (f *Files) ExportReport(ctx context.Context, path string, preset stats.Preset, settings *model.Settings) (string, error) {
	now := f.now()
	if path == "" {
		path = report.FileName(preset, now)
	}

	ps, err := f.stats.ForPeriod(ctx, stats.PeriodFor(preset, now))
	if err != nil {
		return path, err
	}
	year, err := f.stats.Financials(ctx, settings, now.Year())
	if err != nil {
		return path, err
	}

	in := report.Input{
		Preset:      preset,
		Stats:       ps,
		Year:        year,
		Settings:    settings,
		TopTopics:   f.cfg.Reports.TopTopics,
		TopStudents: f.cfg.Reports.TopStudents,
		GeneratedAt: now,
	}
	if err := writeFile(path, func(w io.Writer) error { return f.reports.Write(w, in) }); err != nil {
		return path, err
	}
	f.logger.Info("report exported", zap.String("path", path), zap.String("preset", string(preset)))
	return path, nil
}

const exportFileMode os.FileMode = 0o644

// writeFile writes through a temporary file in the target directory and
// renames it into place, so a failed export never leaves a partial file.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp opens the file owner-only; exports are ordinary documents.
	if err := tmp.Chmod(exportFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
