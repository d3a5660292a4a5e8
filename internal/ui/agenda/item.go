package agenda

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/calendar"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/plural"
	"github.com/nhle/tutor-scheduler/internal/theme"
)

var weekdayShort = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// DayLabel renders a date as "Пн 11.03".
func DayLabel(d model.Date) string {
	return fmt.Sprintf("%s %02d.%02d", weekdayShort[d.Weekday()], d.Day, int(d.Month))
}

// LessonItem wraps a lesson and its calendar projection so it can be
// used in a bubbles/list.
type LessonItem struct {
	Lesson model.Lesson
	Event  calendar.Event
}

// FilterValue returns the string used for fuzzy filtering.
func (i LessonItem) FilterValue() string { return i.Event.Title }

// Title returns the event label.
func (i LessonItem) Title() string { return i.Event.Title }

// Description returns the time span, price and status.
func (i LessonItem) Description() string {
	parts := []string{
		timeSpan(i.Event),
		plural.FormatMoney(i.Lesson.Price),
		theme.StatusLabel(i.Lesson.Status),
	}
	if i.Lesson.IsOnline {
		parts = append(parts, "онлайн")
	}
	return strings.Join(parts, " | ")
}

func timeSpan(e calendar.Event) string {
	return e.Start.Format("15:04") + "–" + e.End.Format("15:04")
}

// ItemDelegate implements list.ItemDelegate for lesson lines. The day
// column is printed only on the first lesson of each day.
type ItemDelegate struct {
	today model.Date
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single lesson line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(LessonItem)
	if !ok {
		return
	}

	day := strings.Repeat(" ", 8)
	items := m.Items()
	if index == 0 || items[index-1].(LessonItem).Lesson.Date != li.Lesson.Date {
		style := theme.DayHeaderStyle.MarginTop(0)
		if li.Lesson.Date == d.today {
			style = theme.TodayHeaderStyle.MarginTop(0)
		}
		day = style.Render(DayLabel(li.Lesson.Date))
	}

	swatch := theme.Swatch(li.Event.Color)
	span := theme.DimmedStyle.Render(timeSpan(li.Event))
	title := li.Event.Title
	if li.Lesson.Status == model.LessonCancelled {
		title = theme.DimmedStyle.Strikethrough(true).Render(title)
	}
	price := theme.PaymentStyle(li.Lesson.Paid).Render(plural.FormatMoney(li.Lesson.Price))

	line := fmt.Sprintf("%s  %s %s  %s  %s", day, swatch, span, title, price)
	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

// weekTitle renders "11.03 – 17.03.2024".
func weekTitle(from, to model.Date) string {
	return fmt.Sprintf("%02d.%02d – %02d.%02d.%d", from.Day, int(from.Month), to.Day, int(to.Month), to.Year)
}

func joinLines(lines ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
