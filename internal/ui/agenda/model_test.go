package agenda

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/keys"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/testutil"
)

// Wednesday.
var now = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.Local)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	ctx := context.Background()
	s := testutil.NewTestStore(t, testutil.WithFixedClock(now))

	id, err := s.AddStudent(ctx, model.Student{Name: "Анна", Subjects: []string{"english"}})
	require.NoError(t, err)
	for _, l := range []model.Lesson{
		{Date: model.NewDate(2024, time.March, 18), StartTime: model.TimeOfDay{Hour: 10}, Price: 1500},
		{Date: model.NewDate(2024, time.March, 20), StartTime: model.TimeOfDay{Hour: 9}, Price: 2000, Status: model.LessonCompleted, Paid: true},
		{Date: model.NewDate(2024, time.March, 21), StartTime: model.TimeOfDay{Hour: 15}, Price: 2000, Status: model.LessonCancelled},
		{Date: model.NewDate(2024, time.March, 26), StartTime: model.TimeOfDay{Hour: 10}, Price: 1800},
	} {
		l.StudentID = id
		l.Subject = "english"
		l.Duration = 60
		_, err := s.AddLesson(ctx, l)
		require.NoError(t, err)
	}

	m := New(s, keys.DefaultKeyMap(), 5, 100, 40)
	m.SetClock(func() time.Time { return now })
	return m
}

func load(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestLoadCurrentWeek(t *testing.T) {
	m := newTestModel(t)
	m = load(t, m, m.Init())

	require.NoError(t, m.err)
	assert.Len(t, m.list.Items(), 3)
	assert.Equal(t, 2, m.summary.PlannedCount)
	assert.Equal(t, 1, m.summary.CompletedCount)
	assert.Equal(t, 2, m.summary.UnpaidCount)
	assert.Equal(t, int64(3300), m.summary.UnpaidTotal)
	require.Len(t, m.upcoming, 1)
	assert.Equal(t, model.NewDate(2024, time.March, 26), m.upcoming[0].Date)

	view := m.View()
	assert.Contains(t, view, "Неделя 18.03 – 24.03.2024")
	assert.Contains(t, view, "Запланировано: 2 занятия")
	assert.Contains(t, view, "Ближайшие: Вт 26.03 10:00 Анна")
}

func TestWeekNavigation(t *testing.T) {
	m := newTestModel(t)
	stale := m.Init()
	m = load(t, m, stale)

	m, cmd := m.Update(runes("l"))
	assert.Equal(t, 1, m.offset)
	m = load(t, m, cmd)
	require.Len(t, m.list.Items(), 1)

	// A result for the week we just left must not overwrite the list.
	m = load(t, m, stale)
	assert.Len(t, m.list.Items(), 1)

	m, cmd = m.Update(runes("0"))
	assert.Equal(t, 0, m.offset)
	m = load(t, m, cmd)
	assert.Len(t, m.list.Items(), 3)

	m, _ = m.Update(runes("h"))
	assert.Equal(t, -1, m.offset)
}

func TestEmptyWeek(t *testing.T) {
	m := newTestModel(t)
	m.offset = 5
	m = load(t, m, m.LoadWeek())

	assert.Empty(t, m.list.Items())
	assert.Contains(t, m.View(), "На этой неделе занятий нет.")

	_, cmd := m.Update(runes("c"))
	assert.Nil(t, cmd)
}

func TestNewLessonDate(t *testing.T) {
	m := newTestModel(t)
	m = load(t, m, m.Init())

	_, cmd := m.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewLessonMsg{Date: model.NewDate(2024, time.March, 20)}, cmd())

	// On another week the form opens on that week's Monday.
	m.offset = 1
	_, cmd = m.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewLessonMsg{Date: model.NewDate(2024, time.March, 25)}, cmd())
}

func TestLessonActions(t *testing.T) {
	m := newTestModel(t)
	m = load(t, m, m.Init())

	tests := []struct {
		key    string
		action Action
	}{
		{"c", ActionComplete},
		{"p", ActionTogglePaid},
		{"x", ActionCancel},
		{"d", ActionDelete},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, cmd := m.Update(runes(tt.key))
			require.NotNil(t, cmd)
			msg, ok := cmd().(LessonActionMsg)
			require.True(t, ok)
			assert.Equal(t, tt.action, msg.Action)
			assert.Equal(t, model.NewDate(2024, time.March, 18), msg.Lesson.Date)
		})
	}

	_, cmd := m.Update(runes("e"))
	require.NotNil(t, cmd)
	edit, ok := cmd().(EditLessonMsg)
	require.True(t, ok)
	assert.Equal(t, int64(1500), edit.Lesson.Price)
}

func TestMoveAndResizeKeys(t *testing.T) {
	m := newTestModel(t)
	m = load(t, m, m.Init())
	start := time.Date(2024, time.March, 18, 10, 0, 0, 0, time.Local)

	_, cmd := m.Update(runes("L"))
	require.NotNil(t, cmd)
	move, ok := cmd().(MoveLessonMsg)
	require.True(t, ok)
	assert.Equal(t, start.AddDate(0, 0, 1), move.Start)

	_, cmd = m.Update(runes("H"))
	require.NotNil(t, cmd)
	assert.Equal(t, start.AddDate(0, 0, -1), cmd().(MoveLessonMsg).Start)

	_, cmd = m.Update(runes("+"))
	require.NotNil(t, cmd)
	resize, ok := cmd().(ResizeLessonMsg)
	require.True(t, ok)
	assert.Equal(t, start, resize.Start)
	assert.Equal(t, start.Add(75*time.Minute), resize.End)

	_, cmd = m.Update(runes("-"))
	require.NotNil(t, cmd)
	assert.Equal(t, start.Add(45*time.Minute), cmd().(ResizeLessonMsg).End)
}

func TestShorterStopsAtOneStep(t *testing.T) {
	m := newTestModel(t)
	m = load(t, m, m.Init())
	items := m.list.Items()
	item := items[0].(LessonItem)
	item.Lesson.Duration = 15
	items[0] = item
	m.list.SetItems(items)

	_, cmd := m.Update(runes("-"))
	assert.Nil(t, cmd)

	_, cmd = m.Update(runes("+"))
	require.NotNil(t, cmd)
	resize := cmd().(ResizeLessonMsg)
	assert.Equal(t, 30*time.Minute, resize.End.Sub(resize.Start))
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "Пн 11.03", DayLabel(model.NewDate(2024, time.March, 11)))
	assert.Equal(t, "Вс 01.12", DayLabel(model.NewDate(2024, time.December, 1)))
}
