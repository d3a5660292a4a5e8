package help

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/tutor-scheduler/internal/keys"
)

func TestViewListsKeysAndCommands(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetSize(160, 50)

	view := m.View()
	for _, want := range []string{
		"Неделя", "Занятие", "Общее",
		"прошлая неделя", "оплачено", "настройки",
		"Команды (:)", "reset confirm", "отчёт в Excel",
	} {
		assert.Contains(t, view, want)
	}
}

func TestViewSkipsDisabledBindings(t *testing.T) {
	k := keys.DefaultKeyMap()
	enabled := strings.Count(New(k, 160, 50).View(), "удалить")

	k.Delete.SetEnabled(false)
	disabled := strings.Count(New(k, 160, 50).View(), "удалить")

	assert.Equal(t, enabled-1, disabled)
}
