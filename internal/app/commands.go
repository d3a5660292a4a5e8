package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/ui/command"
)

// commandResultMsg reports a finished palette command. Settings is set
// when the command replaced the data set and settings were reloaded.
type commandResultMsg struct {
	notice   string
	err      error
	settings *model.Settings
}

var eventForms = plural.Forms{"событие", "события", "событий"}

// executeCommand handles a parsed command from the palette.
func (m *Model) executeCommand(cmd command.Command) tea.Cmd {
	switch cmd.Name {
	case command.Quit:
		return tea.Quit
	case command.Today:
		m.currentView = ViewAgenda
		return m.agenda.JumpToToday()
	case command.Students:
		return m.open(ViewStudents)
	case command.Stats:
		return m.open(ViewStats)
	case command.Settings:
		return m.open(ViewSettings)
	}

	files, settings, logger := m.files, m.settings, m.logger
	return func() tea.Msg {
		ctx := context.Background()
		res := runFileCommand(ctx, files, settings, cmd)
		if res.err != nil {
			logger.Error("command failed", zap.String("command", string(cmd.Name)), zap.Error(res.err))
		}
		return res
	}
}

func runFileCommand(ctx context.Context, files *Files, settings *model.Settings, cmd command.Command) commandResultMsg {
	switch cmd.Name {
	case command.Export:
		path, res, err := files.ExportBackup(ctx, cmd.Path)
		if err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{notice: fmt.Sprintf("Сохранено в %s: %s, %s", path,
			plural.WithNumber(res.Students, plural.Students),
			plural.WithNumber(res.Lessons, plural.Lessons))}

	case command.Import:
		res, err := files.ImportBackup(ctx, cmd.Path)
		if err != nil {
			return commandResultMsg{err: err}
		}
		reloaded, err := files.store.InitializeSettings(ctx)
		if err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{notice: res.Message(), settings: reloaded}

	case command.Reset:
		if err := files.Reset(ctx); err != nil {
			return commandResultMsg{err: err}
		}
		reloaded, err := files.store.InitializeSettings(ctx)
		if err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{notice: "Все данные удалены", settings: reloaded}

	case command.ICS:
		path, n, err := files.ExportCalendar(ctx, cmd.Path, settings)
		if err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{notice: fmt.Sprintf("Календарь %s: %s", path, plural.WithNumber(n, eventForms))}

	case command.ICSCheck:
		n, cancelled, err := files.CheckCalendar(cmd.Path)
		if err != nil {
			return commandResultMsg{err: err}
		}
		notice := fmt.Sprintf("Календарь %s: %s", cmd.Path, plural.WithNumber(n, eventForms))
		if cancelled > 0 {
			notice += fmt.Sprintf(", отменено: %d", cancelled)
		}
		return commandResultMsg{notice: notice}

	case command.XLSX:
		path, err := files.ExportReport(ctx, cmd.Path, cmd.Preset, settings)
		if err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{notice: "Отчёт сохранён в " + path}
	}
	return commandResultMsg{err: fmt.Errorf("unsupported command %q", cmd.Name)}
}
