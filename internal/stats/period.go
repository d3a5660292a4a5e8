package stats

import (
	"fmt"
	"time"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Preset names a reporting window ending today.
type Preset string

const (
	PresetWeek    Preset = "week"
	PresetMonth   Preset = "month"
	PresetQuarter Preset = "quarter"
	PresetYear    Preset = "year"
)

// Presets lists the presets in the order the statistics view cycles them.
var Presets = []Preset{PresetWeek, PresetMonth, PresetQuarter, PresetYear}

// ParsePreset validates a preset name.
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", model.NewValidationError("period", fmt.Sprintf("unknown period %q", s))
}

// Label returns the preset's display name.
func (p Preset) Label() string {
	switch p {
	case PresetWeek:
		return "Неделя"
	case PresetQuarter:
		return "Квартал"
	case PresetYear:
		return "Год"
	default:
		return "Месяц"
	}
}

// Next returns the preset after p, wrapping around.
func (p Preset) Next() Preset {
	for i, candidate := range Presets {
		if candidate == p {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return PresetMonth
}

// Period is an inclusive window of instants.
type Period struct {
	Start time.Time
	End   time.Time
}

// Dates returns the calendar days of the period's bounds.
func (p Period) Dates() (model.Date, model.Date) {
	return model.DateOf(p.Start), model.DateOf(p.End)
}

// PeriodFor returns the window for preset ending today: it starts at
// midnight of the day the offset lands on and ends at the last
// millisecond of today. Unknown presets behave like a month.
func PeriodFor(preset Preset, now time.Time) Period {
	start := now
	switch preset {
	case PresetWeek:
		start = now.AddDate(0, 0, -7)
	case PresetQuarter:
		start = now.AddDate(0, -3, 0)
	case PresetYear:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, -1, 0)
	}

	return Period{
		Start: startOfDay(start),
		End:   endOfDay(now),
	}
}

// YearPeriod returns January 1st through December 31st of year in loc.
func YearPeriod(year int, loc *time.Location) Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, int(999*time.Millisecond), loc)
	return Period{Start: start, End: end}
}

// WeekOf returns the Monday-to-Sunday week containing now.
func WeekOf(now time.Time) Period {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := startOfDay(now.AddDate(0, 0, -offset))
	sunday := monday.AddDate(0, 0, 6)
	return Period{
		Start: monday,
		End:   endOfDay(sunday),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last millisecond of t's calendar day. Days are not
// always 24 hours long across DST changes.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}
