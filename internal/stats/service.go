package stats

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Reader is the read-only part of the store reports need.
type Reader interface {
	GetStudents(ctx context.Context) ([]model.Student, error)
	GetLessonsByDateRange(ctx context.Context, start, end model.Date) ([]model.Lesson, error)
}

// Service loads lessons and students and feeds them to the aggregators.
// It never writes.
type Service struct {
	store  Reader
	logger *zap.Logger
}

// NewService creates a Service reading from store.
func NewService(store Reader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ForPeriod aggregates the completed lessons dated within p.
func (s *Service) ForPeriod(ctx context.Context, p Period) (*PeriodStats, error) {
	start, end := p.Dates()

	lessons, err := s.store.GetLessonsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	students, err := s.store.GetStudents(ctx)
	if err != nil {
		return nil, err
	}

	ps := Aggregate(lessons, model.NewStudentDirectory(students), start, end)
	s.logger.Debug("period aggregated",
		zap.Stringer("start", start),
		zap.Stringer("end", end),
		zap.Int("lessons", ps.TotalLessons),
	)
	return ps, nil
}

// Financials computes the year summary under the settings' tax regime.
func (s *Service) Financials(ctx context.Context, settings *model.Settings, year int) (YearSummary, error) {
	ps, err := s.ForPeriod(ctx, YearPeriod(year, time.Local))
	if err != nil {
		return YearSummary{}, err
	}
	return SummarizeYear(year, ps, settings), nil
}
