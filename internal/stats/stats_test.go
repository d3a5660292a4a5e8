package stats

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/testutil"
)

var march = model.NewDate(2025, time.March, 10)

func lesson(status model.LessonStatus, subject string, minutes int, price int64, paid bool) model.Lesson {
	return model.Lesson{
		StudentID: 1,
		Subject:   subject,
		Date:      march,
		Duration:  minutes,
		Price:     price,
		Paid:      paid,
		Status:    status,
	}
}

func TestAggregate_CompletedOnly(t *testing.T) {
	lessons := []model.Lesson{
		lesson(model.LessonCompleted, "A", 60, 1000, true),
		lesson(model.LessonCompleted, "A", 30, 500, false),
		lesson(model.LessonScheduled, "B", 60, 1500, false),
	}

	ps := Aggregate(lessons, nil, march.AddDays(-1), march.AddDays(1))

	assert.Equal(t, 2, ps.TotalLessons)
	assert.InDelta(t, 1.5, ps.TotalHours, 1e-9)
	assert.Equal(t, int64(1500), ps.TotalEarnings)
	assert.Equal(t, int64(1000), ps.PaidAmount)
	assert.Equal(t, int64(500), ps.UnpaidAmount)

	a, ok := ps.Subject("A")
	require.True(t, ok)
	assert.Equal(t, 2, a.Count)
	assert.InDelta(t, 1.5, a.Hours, 1e-9)

	_, ok = ps.Subject("B")
	assert.False(t, ok)
}

func TestAggregate_WindowIsInclusive(t *testing.T) {
	lessons := []model.Lesson{
		lesson(model.LessonCompleted, "A", 60, 100, false),
		lesson(model.LessonCompleted, "A", 60, 100, false),
		lesson(model.LessonCompleted, "A", 60, 100, false),
	}
	lessons[0].Date = march.AddDays(-1)
	lessons[2].Date = march.AddDays(1)

	ps := Aggregate(lessons, nil, march, march.AddDays(1))
	assert.Equal(t, 2, ps.TotalLessons)
}

func TestAggregate_UnknownStudentAndDefaults(t *testing.T) {
	students := model.NewStudentDirectory([]model.Student{{ID: 1, Name: "Анна"}})
	l1 := lesson(model.LessonCompleted, "A", 0, 0, false)
	l2 := lesson(model.LessonCompleted, "A", 90, 1200, true)
	l2.StudentID = 99

	ps := Aggregate([]model.Lesson{l1, l2}, students, march, march)

	anna, ok := ps.Student(1)
	require.True(t, ok)
	assert.Equal(t, "Анна", anna.Name)
	assert.InDelta(t, 1.0, anna.Hours, 1e-9)

	ghost, ok := ps.Student(99)
	require.True(t, ok)
	assert.Equal(t, model.UnknownStudentName, ghost.Name)
	assert.Equal(t, int64(1200), ghost.Earnings)
}

func TestAggregate_TopicsAndTopN(t *testing.T) {
	var lessons []model.Lesson
	add := func(topic, subject string, n int) {
		for i := 0; i < n; i++ {
			l := lesson(model.LessonCompleted, subject, 60, 100, false)
			l.Topic = topic
			lessons = append(lessons, l)
		}
	}
	add("Грамматика", "english", 2)
	add("", "english", 3)
	add("Сочинение", "russian", 3)
	add("Грамматика", "russian", 1)
	add("Орфография", "russian", 3)

	ps := Aggregate(lessons, nil, march, march)

	gram, ok := ps.Topic("Грамматика")
	require.True(t, ok)
	assert.Equal(t, 3, gram.Count)
	assert.Equal(t, "english", gram.SubjectID)
	assert.Len(t, ps.Topics, 3)

	top := ps.TopTopics(2)
	require.Len(t, top, 2)
	// All three have count 3; ties keep first-seen order.
	assert.Equal(t, "Грамматика", top[0].Topic)
	assert.Equal(t, "Сочинение", top[1].Topic)

	assert.Equal(t, []string{"english", "russian"}, []string{ps.Subjects[0].SubjectID, ps.Subjects[1].SubjectID})
}

func TestPeriodFor(t *testing.T) {
	now := time.Date(2025, time.March, 31, 15, 4, 5, 0, time.UTC)

	week := PeriodFor(PresetWeek, now)
	assert.Equal(t, time.Date(2025, time.March, 24, 0, 0, 0, 0, time.UTC), week.Start)
	assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), week.End)

	quarter := PeriodFor(PresetQuarter, now)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), quarter.Start)

	year := PeriodFor(PresetYear, now)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), year.Start)

	_, err := ParsePreset("decade")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, PresetWeek, PresetYear.Next())
}

func TestWeekOf_StartsOnMonday(t *testing.T) {
	sunday := time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC)
	w := WeekOf(sunday)
	from, to := w.Dates()
	assert.Equal(t, model.NewDate(2025, time.March, 10), from)
	assert.Equal(t, model.NewDate(2025, time.March, 16), to)
}

func TestPeriodEndsOnSameDayAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2024-03-31, a 23-hour day.
	springForward := time.Date(2024, time.March, 31, 12, 0, 0, 0, berlin)
	lastMilli := time.Date(2024, time.March, 31, 23, 59, 59, int(999*time.Millisecond), berlin)

	week := WeekOf(springForward)
	assert.True(t, lastMilli.Equal(week.End), "week ends at %v", week.End)
	from, to := week.Dates()
	assert.Equal(t, model.NewDate(2024, time.March, 25), from)
	assert.Equal(t, model.NewDate(2024, time.March, 31), to)

	month := PeriodFor(PresetMonth, springForward)
	assert.True(t, lastMilli.Equal(month.End), "month ends at %v", month.End)
	_, to = month.Dates()
	assert.Equal(t, model.NewDate(2024, time.March, 31), to)
}

func TestSummarizeWeek(t *testing.T) {
	now := time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC)
	lessons := []model.Lesson{
		lesson(model.LessonCompleted, "A", 90, 1000, false),
		lesson(model.LessonScheduled, "A", 60, 1000, false),
		lesson(model.LessonCancelled, "A", 60, 1000, false),
		lesson(model.LessonScheduled, "A", 60, 1000, false),
	}
	lessons[3].Date = march.AddDays(7)

	ws := SummarizeWeek(lessons, lessons[:2], now)
	assert.Equal(t, 2, ws.PlannedCount)
	assert.InDelta(t, 2.5, ws.PlannedHours, 1e-9)
	assert.Equal(t, 1, ws.CompletedCount)
	assert.Equal(t, 2, ws.UnpaidCount)
	assert.Equal(t, int64(2000), ws.UnpaidTotal)
}

func TestSummarizeStudent(t *testing.T) {
	lessons := []model.Lesson{
		lesson(model.LessonCompleted, "A", 60, 1000, true),
		lesson(model.LessonCompleted, "A", 0, 800, false),
		lesson(model.LessonScheduled, "A", 60, 1000, false),
	}
	other := lesson(model.LessonCompleted, "A", 60, 5000, false)
	other.StudentID = 2
	lessons = append(lessons, other)

	ss := SummarizeStudent(1, lessons)
	assert.Equal(t, 3, ss.Total)
	assert.Equal(t, 2, ss.Completed)
	assert.InDelta(t, 2.0, ss.Hours, 1e-9)
	assert.Equal(t, int64(1800), ss.Earned)
	assert.Equal(t, int64(800), ss.Unpaid)

	all := SummarizeStudents([]model.Student{{ID: 1}, {ID: 2}, {ID: 3}}, lessons)
	assert.Equal(t, int64(5000), all[2].Unpaid)
	assert.Zero(t, all[3].Total)
}

func TestComputeBurden(t *testing.T) {
	record := model.TaxRecord{Year: 2025, PatentCost: 30000, InsuranceCost: 49500, TaxRate: 6}

	usn := ComputeBurden(record.Terms(model.RegimeUSN), 100000)
	assert.Equal(t, int64(6000), usn.TaxAmount)
	assert.Equal(t, int64(55500), usn.Total)
	assert.Equal(t, "УСН 6% + Страховые", usn.Description)

	patent := ComputeBurden(record.Terms(model.RegimePatent), 100000)
	assert.Equal(t, int64(30000), patent.TaxAmount)
	assert.Equal(t, int64(79500), patent.Total)

	none := ComputeBurden(record.Terms(model.RegimeNone), 100000)
	assert.Zero(t, none.Total)
	assert.Equal(t, "Без налогов", none.Description)

	unknown := ComputeBurden(record.Terms("barter"), 100000)
	assert.Zero(t, unknown.Total)
	assert.Equal(t, "Не указано", unknown.Description)

	empty := model.TaxRecord{Year: 2025}
	se := ComputeBurden(empty.Terms(model.RegimeSelfEmployed), 100000)
	assert.Equal(t, 4.0, se.Rate)
	assert.Equal(t, int64(4000), se.Total)
	assert.Equal(t, "НПД 4%", se.Description)

	usnDefault := ComputeBurden(empty.Terms(model.RegimeUSN), 12345)
	assert.Equal(t, int64(741), usnDefault.TaxAmount)

	emptyRegime := ComputeBurden(record.Terms(""), 0)
	assert.Equal(t, model.RegimePatent, emptyRegime.Regime)
}

func TestService_Financials(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	svc := NewService(s, zap.NewNop())

	settings := model.DefaultSettings()
	settings.TaxRegime = model.RegimeUSN
	settings.TaxRecords = []model.TaxRecord{{Year: 2025, InsuranceCost: 49500, TaxRate: 6}}

	for i, paid := range []bool{true, false} {
		l := lesson(model.LessonCompleted, "english", 60, 50000, paid)
		l.Date = model.NewDate(2025, time.Month(i+1), 15)
		_, err := s.AddLesson(ctx, l)
		require.NoError(t, err)
	}
	outside := lesson(model.LessonCompleted, "english", 60, 99999, true)
	outside.Date = model.NewDate(2024, time.December, 31)
	_, err := s.AddLesson(ctx, outside)
	require.NoError(t, err)

	ys, err := svc.Financials(ctx, &settings, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, ys.LessonsCount)
	assert.Equal(t, int64(100000), ys.TotalEarnings)
	assert.Equal(t, int64(50000), ys.PaidAmount)
	assert.Equal(t, int64(55500), ys.Burden.Total)
	assert.Equal(t, int64(50000-55500), ys.NetIncome)
}

func TestService_ForPeriodResolvesDeletedStudent(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	svc := NewService(s, nil)

	sid, err := s.AddStudent(ctx, model.Student{Name: "Пётр"})
	require.NoError(t, err)
	l := lesson(model.LessonCompleted, "english", 60, 1000, false)
	l.StudentID = sid
	_, err = s.AddLesson(ctx, l)
	require.NoError(t, err)
	require.NoError(t, s.DeleteStudent(ctx, sid))

	ps, err := svc.ForPeriod(ctx, Period{Start: march.In(time.Local), End: march.In(time.Local)})
	require.NoError(t, err)
	st, ok := ps.Student(sid)
	require.True(t, ok)
	assert.Equal(t, model.UnknownStudentName, st.Name)
}
