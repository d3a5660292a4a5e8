package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/schedule"
	"github.com/nhle/tutor-scheduler/internal/ui/agenda"
)

// lessonsChangedMsg is sent after lessons were written. The agenda is
// reloaded whether or not the write succeeded.
type lessonsChangedMsg struct {
	notice string
	err    error
}

// todayLoadedMsg carries today's lessons for the header.
type todayLoadedMsg struct {
	lessons []model.Lesson
	err     error
}

// formOptionsLoadedMsg carries the students the lesson form offers. Lesson
// is nil when a new lesson is being created on Date.
type formOptionsLoadedMsg struct {
	students []model.Student
	date     model.Date
	lesson   *model.Lesson
	err      error
}

// loadToday fetches today's lessons.
func (m Model) loadToday() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		lessons, err := s.GetTodayLessons(context.Background())
		return todayLoadedMsg{lessons: lessons, err: err}
	}
}

// loadFormOptions fetches the students before the lesson form opens.
func (m Model) loadFormOptions(date model.Date, lesson *model.Lesson) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		students, err := s.GetStudents(context.Background())
		return formOptionsLoadedMsg{students: students, date: date, lesson: lesson, err: err}
	}
}

// createLesson persists a new lesson and its weekly repetitions.
func (m Model) createLesson(lesson model.Lesson, rec schedule.Recurrence) tea.Cmd {
	p, settings, logger := m.planner, m.settings, m.logger
	return func() tea.Msg {
		created, err := p.Create(context.Background(), settings, lesson, rec)
		if err != nil {
			logger.Error("creating lesson", zap.Error(err))
			if created.BaseID != 0 {
				return lessonsChangedMsg{
					notice: "Занятие добавлено, повторы не созданы",
					err:    err,
				}
			}
			return lessonsChangedMsg{err: err}
		}
		if created.Total() == 1 {
			return lessonsChangedMsg{notice: "Занятие добавлено"}
		}
		return lessonsChangedMsg{
			notice: "Добавлено " + plural.WithNumber(created.Total(), plural.Lessons),
		}
	}
}

// updateLesson writes every editable field of lesson.
func (m Model) updateLesson(id int64, lesson model.Lesson) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.UpdateLesson(context.Background(), id, model.PatchFrom(lesson)); err != nil {
			return lessonsChangedMsg{err: err}
		}
		return lessonsChangedMsg{notice: "Занятие сохранено"}
	}
}

// moveLesson puts a lesson on the date and time of start.
func (m Model) moveLesson(id int64, start time.Time) tea.Cmd {
	p := m.planner
	return func() tea.Msg {
		if err := p.Reschedule(context.Background(), id, start); err != nil {
			return lessonsChangedMsg{err: err}
		}
		return lessonsChangedMsg{notice: "Занятие перенесено на " + start.Format("02.01 15:04")}
	}
}

// resizeLesson sets a lesson's duration to the span from start to end.
func (m Model) resizeLesson(id int64, start, end time.Time) tea.Cmd {
	p := m.planner
	return func() tea.Msg {
		if err := p.Resize(context.Background(), id, start, end); err != nil {
			return lessonsChangedMsg{err: err}
		}
		minutes := int(end.Sub(start).Round(time.Minute).Minutes())
		return lessonsChangedMsg{notice: fmt.Sprintf("Длительность: %d мин", minutes)}
	}
}

// applyAction runs a one-key agenda action against the store.
func (m Model) applyAction(msg agenda.LessonActionMsg) tea.Cmd {
	s := m.store
	l := msg.Lesson
	return func() tea.Msg {
		ctx := context.Background()
		var (
			err    error
			notice string
		)

		switch msg.Action {
		case agenda.ActionComplete:
			err = s.MarkLessonCompleted(ctx, l.ID)
			notice = "Занятие проведено"
		case agenda.ActionTogglePaid:
			paid := !l.Paid
			err = s.UpdateLesson(ctx, l.ID, model.LessonPatch{Paid: &paid})
			notice = "Отмечено как оплаченное"
			if !paid {
				notice = "Оплата снята"
			}
		case agenda.ActionCancel:
			err = s.MarkLessonCancelled(ctx, l.ID)
			notice = "Занятие отменено"
		case agenda.ActionDelete:
			err = s.DeleteLesson(ctx, l.ID)
			notice = "Занятие удалено"
		default:
			err = fmt.Errorf("unknown lesson action %d", msg.Action)
		}

		if err != nil {
			return lessonsChangedMsg{err: err}
		}
		return lessonsChangedMsg{notice: notice}
	}
}
