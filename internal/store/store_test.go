package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/testutil"
)

var now = time.Date(2025, time.March, 12, 14, 30, 15, 0, time.Local)

func newLesson(studentID int64, date model.Date, start string) model.Lesson {
	tod, _ := model.ParseTimeOfDay(start)
	return model.Lesson{
		StudentID: studentID,
		Subject:   "english",
		Date:      date,
		StartTime: tod,
		Duration:  60,
		Price:     1500,
		Status:    model.LessonScheduled,
	}
}

func TestStudents_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t, testutil.WithFixedClock(now))

	price := int64(2000)
	id, err := s.AddStudent(ctx, model.Student{
		Name:         "Анна Петрова",
		Subjects:     []string{"english", "spanish"},
		DefaultPrice: &price,
		Color:        "#ef4444",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Анна Петрова", got.Name)
	assert.Equal(t, []string{"english", "spanish"}, got.Subjects)
	require.NotNil(t, got.DefaultPrice)
	assert.Equal(t, int64(2000), *got.DefaultPrice)
	assert.True(t, got.CreatedAt.Equal(now))

	name := "Анна Сидорова"
	var noPrice *int64
	require.NoError(t, s.UpdateStudent(ctx, id, model.StudentPatch{Name: &name, DefaultPrice: &noPrice}))

	got, err = s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Анна Сидорова", got.Name)
	assert.Nil(t, got.DefaultPrice)
	assert.Equal(t, "#ef4444", got.Color)

	require.NoError(t, s.DeleteStudent(ctx, id))
	_, err = s.GetStudentByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStudents_AddRequiresName(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.AddStudent(context.Background(), model.Student{Name: "  "})
	assert.ErrorIs(t, err, model.ErrValidation)

	students, err := s.GetStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestStudents_MissingIDIsStorageError(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	name := "Кто-то"
	err := s.UpdateStudent(ctx, 42, model.StudentPatch{Name: &name})
	assert.ErrorIs(t, err, model.ErrStorage)
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.DeleteStudent(ctx, 42)
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.UpdateStudent(ctx, 42, model.StudentPatch{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStudents_SearchIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	for _, name := range []string{"Анна Петрова", "Иван Иванов", "Mike Smith"} {
		_, err := s.AddStudent(ctx, model.Student{Name: name})
		require.NoError(t, err)
	}

	found, err := s.SearchStudents(ctx, "АННА")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Анна Петрова", found[0].Name)

	found, err = s.SearchStudents(ctx, "smith")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = s.SearchStudents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestLessons_DeletingStudentKeepsLessons(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	sid, err := s.AddStudent(ctx, model.Student{Name: "Олег"})
	require.NoError(t, err)
	_, err = s.AddLesson(ctx, newLesson(sid, model.NewDate(2025, 3, 10), "10:00"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteStudent(ctx, sid))

	lessons, err := s.GetLessonsByStudent(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestLessons_DateRangeIsInclusive(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	for _, day := range []int{9, 10, 12, 14, 15} {
		_, err := s.AddLesson(ctx, newLesson(1, model.NewDate(2025, 3, day), "10:00"))
		require.NoError(t, err)
	}

	lessons, err := s.GetLessonsByDateRange(ctx, model.NewDate(2025, 3, 10), model.NewDate(2025, 3, 14))
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, model.NewDate(2025, 3, 10), lessons[0].Date)
	assert.Equal(t, model.NewDate(2025, 3, 14), lessons[2].Date)
}

func TestLessons_TodayUpcomingUnpaid(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t, testutil.WithFixedClock(now))

	today := model.DateOf(now)
	past, err := s.AddLesson(ctx, newLesson(1, today, "09:00"))
	require.NoError(t, err)
	later, err := s.AddLesson(ctx, newLesson(1, today, "16:00"))
	require.NoError(t, err)
	tomorrow, err := s.AddLesson(ctx, newLesson(1, today.AddDays(1), "08:00"))
	require.NoError(t, err)
	cancelled, err := s.AddLesson(ctx, newLesson(1, today.AddDays(2), "08:00"))
	require.NoError(t, err)
	require.NoError(t, s.MarkLessonCancelled(ctx, cancelled))
	require.NoError(t, s.MarkLessonPaid(ctx, tomorrow))

	todays, err := s.GetTodayLessons(ctx)
	require.NoError(t, err)
	assert.Len(t, todays, 2)

	upcoming, err := s.GetUpcomingLessons(ctx, 5)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, later, upcoming[0].ID)
	assert.Equal(t, tomorrow, upcoming[1].ID)

	upcoming, err = s.GetUpcomingLessons(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	unpaid, err := s.GetUnpaidLessons(ctx)
	require.NoError(t, err)
	ids := []int64{}
	for _, l := range unpaid {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []int64{past, later}, ids)
}

func TestLessons_MarkersArePartialUpdates(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	l := newLesson(1, model.NewDate(2025, 3, 10), "10:00")
	l.Topic = "Present Perfect"
	l.Notes = "принести учебник"
	id, err := s.AddLesson(ctx, l)
	require.NoError(t, err)

	require.NoError(t, s.MarkLessonCompleted(ctx, id))
	require.NoError(t, s.MarkLessonPaid(ctx, id))

	got, err := s.GetLessonByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.LessonCompleted, got.Status)
	assert.True(t, got.Paid)
	assert.Equal(t, "Present Perfect", got.Topic)
	assert.Equal(t, "принести учебник", got.Notes)

	assert.ErrorIs(t, s.MarkLessonCompleted(ctx, 999), model.ErrNotFound)
}

func TestLessons_BulkAddIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	good := newLesson(1, model.NewDate(2025, 3, 10), "10:00")
	bad := good
	bad.Subject = ""

	_, err := s.BulkAddLessons(ctx, []model.Lesson{good, bad})
	assert.ErrorIs(t, err, model.ErrValidation)

	all, err := s.GetLessons(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	ids, err := s.BulkAddLessons(ctx, []model.Lesson{good, good, good})
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestSettings_InitializeOnce(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.GetSettings(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	st, err := s.InitializeSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, st.DefaultLessonDuration)
	assert.Equal(t, int64(1500), st.DefaultPrice)
	assert.Len(t, st.Subjects, 4)
	assert.Equal(t, model.RegimePatent, st.TaxRegime)

	price := int64(2500)
	_, err = s.UpdateSettings(ctx, model.SettingsPatch{DefaultPrice: &price})
	require.NoError(t, err)

	st, err = s.InitializeSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), st.DefaultPrice)
}

func TestSettings_UpdateTaxRecords(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	st, err := s.InitializeSettings(ctx)
	require.NoError(t, err)

	regime := model.RegimeUSN
	patch := st.PutTaxRecord(model.TaxRecord{Year: 2025, InsuranceCost: 49500, TaxRate: 6})
	patch.TaxRegime = &regime

	updated, err := s.UpdateSettings(ctx, patch)
	require.NoError(t, err)
	assert.Equal(t, model.RegimeUSN, updated.TaxRegime)

	reloaded, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)
	assert.Equal(t, int64(49500), reloaded.TaxRecordFor(2025).InsuranceCost)

	dup := []model.TaxRecord{{Year: 2024}, {Year: 2024}}
	_, err = s.UpdateSettings(ctx, model.SettingsPatch{TaxRecords: &dup})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDataset_ReplaceAllKeepsIDs(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.AddStudent(ctx, model.Student{Name: "Старый"})
	require.NoError(t, err)

	settings := model.DefaultSettings()
	data := model.Dataset{
		Students: []model.Student{{ID: 7, Name: "Мария", Subjects: []string{}}},
		Lessons:  []model.Lesson{{ID: 30, StudentID: 7, Subject: "russian", Date: model.NewDate(2025, 1, 5), Duration: 45, Status: model.LessonCompleted}},
		Settings: &settings,
	}
	require.NoError(t, s.ReplaceAll(ctx, data))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Students, 1)
	assert.Equal(t, int64(7), snap.Students[0].ID)
	require.Len(t, snap.Lessons, 1)
	assert.Equal(t, int64(30), snap.Lessons[0].ID)
	require.NotNil(t, snap.Settings)

	require.NoError(t, s.ClearAll(ctx))
	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Students)
	assert.Empty(t, snap.Lessons)
	assert.Nil(t, snap.Settings)
}

func TestDataset_ReplaceAllRollsBack(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	id, err := s.AddStudent(ctx, model.Student{Name: "Останется"})
	require.NoError(t, err)

	// Duplicate ids violate the primary key mid-import.
	data := model.Dataset{
		Students: []model.Student{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}},
	}
	err = s.ReplaceAll(ctx, data)
	assert.ErrorIs(t, err, model.ErrStorage)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Останется", got.Name)
}
