package studentform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tutor-scheduler/internal/model"
)

func TestStartCreatePicksFreeColor(t *testing.T) {
	m := New(80, 40)
	m.SetOptions(nil, []model.Student{{ID: 1, Name: "Анна", Color: model.StudentColors[0]}})
	m.StartCreate()

	assert.False(t, m.Editing())
	assert.Equal(t, model.StudentColors[1], m.fb.color)
}

func TestSubmitNewStudent(t *testing.T) {
	m := New(80, 40)
	m.SetOptions(nil, nil)
	m.StartCreate()
	m.fb.name = "  Вера "
	m.fb.subjects = []string{"english"}
	m.fb.defaultPrice = "1800"
	m.fb.color = "#22C55E"

	msg := m.handleSubmit()().(SubmittedMsg)
	assert.Zero(t, msg.ID)
	assert.Equal(t, "Вера", msg.Student.Name)
	assert.Equal(t, "#22c55e", msg.Student.Color)
	require.NotNil(t, msg.Student.DefaultPrice)
	assert.Equal(t, int64(1800), *msg.Student.DefaultPrice)
}

func TestSubmitEditClearsPrice(t *testing.T) {
	price := int64(2500)
	m := New(80, 40)
	m.SetOptions(nil, nil)
	m.StartEdit(model.Student{ID: 4, Name: "Глеб", DefaultPrice: &price, Color: "#3b82f6"})
	assert.True(t, m.Editing())
	assert.Equal(t, "2500", m.fb.defaultPrice)

	m.fb.defaultPrice = ""
	msg := m.handleSubmit()().(SubmittedMsg)
	assert.Equal(t, int64(4), msg.ID)
	assert.Nil(t, msg.Student.DefaultPrice)

	patch := PatchFrom(msg.Student)
	require.NotNil(t, patch.DefaultPrice)
	assert.Nil(t, *patch.DefaultPrice)
	assert.Equal(t, "Глеб", *patch.Name)
}

func TestColorWarning(t *testing.T) {
	students := []model.Student{{ID: 1, Name: "Анна", Color: "#ef4444"}}
	assert.Contains(t, colorWarning(students, "#EF4444", 0), "Анна")
	assert.Empty(t, colorWarning(students, "#ef4444", 1))
	assert.Empty(t, colorWarning(students, "#000000", 0))
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, validateColor("#a1B2c3"))
	assert.Error(t, validateColor("red"))
	assert.Error(t, validateColor("#abc"))
}
