package students

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
	"github.com/nhle/tutor-scheduler/internal/ui/studentform"
)

func TestLoadListsStudentsWithSummaries(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	annaID, err := s.AddStudent(ctx, model.Student{Name: "Анна"})
	require.NoError(t, err)
	_, err = s.AddStudent(ctx, model.Student{Name: "Борис"})
	require.NoError(t, err)
	_, err = s.AddLesson(ctx, model.Lesson{
		StudentID: annaID, Subject: "english", Date: model.NewDate(2024, time.March, 11),
		Duration: 90, Price: 2000, Status: model.LessonCompleted,
	})
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 80, 40)
	m, _ = m.Update(m.Init()())

	require.Len(t, m.students, 2)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Анна", sel.Name)
	assert.Equal(t, int64(2000), m.summaries[annaID].Unpaid)
	assert.Contains(t, m.View(), "Борис")
}

func TestSearchNarrowsList(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	for _, name := range []string{"Анна", "Борис", "Анастасия"} {
		_, err := s.AddStudent(ctx, model.Student{Name: name})
		require.NoError(t, err)
	}

	m := New(s, keys.DefaultKeyMap(), 80, 40)
	m, _ = m.Update(m.Init()())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	assert.True(t, m.Searching())
	m.search.SetValue("ан")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.False(t, m.Searching())
	require.Len(t, m.students, 2)
	assert.Len(t, m.all, 3)
}

func TestSubmittedFormIsSaved(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	m := New(s, keys.DefaultKeyMap(), 80, 40)

	_, cmd := m.Update(studentform.SubmittedMsg{Student: model.Student{Name: "Вера", Color: "#22c55e"}})
	require.NotNil(t, cmd)
	saved, ok := cmd().(studentSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	all, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	price := int64(1700)
	_, cmd = m.Update(studentform.SubmittedMsg{ID: all[0].ID, Student: model.Student{
		ID: all[0].ID, Name: "Вера", DefaultPrice: &price,
	}})
	saved = cmd().(studentSavedMsg)
	require.NoError(t, saved.err)

	got, err := s.GetStudentByID(ctx, all[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.DefaultPrice)
	assert.Equal(t, int64(1700), *got.DefaultPrice)
}
