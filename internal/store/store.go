package store

import (
	"context"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Store defines the persistence interface for students, lessons and the
// settings singleton. Every method may fail with a *model.StorageError;
// updates and deletes addressing a missing id fail with one that also
// matches model.ErrNotFound.
type Store interface {
	// === Students ===

	GetStudents(ctx context.Context) ([]model.Student, error)
	GetStudentByID(ctx context.Context, id int64) (*model.Student, error)
	AddStudent(ctx context.Context, student model.Student) (int64, error)
	UpdateStudent(ctx context.Context, id int64, patch model.StudentPatch) error
	DeleteStudent(ctx context.Context, id int64) error
	SearchStudents(ctx context.Context, query string) ([]model.Student, error)

	// === Lessons ===

	GetLessons(ctx context.Context) ([]model.Lesson, error)
	GetLessonByID(ctx context.Context, id int64) (*model.Lesson, error)
	GetLessonsByDateRange(ctx context.Context, start, end model.Date) ([]model.Lesson, error)
	GetLessonsByStudent(ctx context.Context, studentID int64) ([]model.Lesson, error)
	GetTodayLessons(ctx context.Context) ([]model.Lesson, error)
	GetUpcomingLessons(ctx context.Context, limit int) ([]model.Lesson, error)
	GetUnpaidLessons(ctx context.Context) ([]model.Lesson, error)
	AddLesson(ctx context.Context, lesson model.Lesson) (int64, error)
	BulkAddLessons(ctx context.Context, lessons []model.Lesson) ([]int64, error)
	UpdateLesson(ctx context.Context, id int64, patch model.LessonPatch) error
	DeleteLesson(ctx context.Context, id int64) error
	MarkLessonCompleted(ctx context.Context, id int64) error
	MarkLessonPaid(ctx context.Context, id int64) error
	MarkLessonCancelled(ctx context.Context, id int64) error

	// === Settings ===

	InitializeSettings(ctx context.Context) (*model.Settings, error)
	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (*model.Settings, error)

	// === Whole data set ===

	Snapshot(ctx context.Context) (*model.Dataset, error)
	ReplaceAll(ctx context.Context, data model.Dataset) error
	ClearAll(ctx context.Context) error

	Close() error
}
