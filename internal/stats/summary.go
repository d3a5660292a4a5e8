package stats

import (
	"time"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// WeekSummary is the dashboard view of the current Monday-to-Sunday week.
type WeekSummary struct {
	Week Period

	PlannedCount   int
	PlannedHours   float64
	CompletedCount int
	CompletedHours float64

	// Unpaid covers every unpaid lesson, not only this week's.
	UnpaidCount int
	UnpaidTotal int64
}

// SummarizeWeek counts this week's non-cancelled lessons and, among them,
// the completed ones. unpaid is the store's unpaid-lesson list.
func SummarizeWeek(lessons, unpaid []model.Lesson, now time.Time) WeekSummary {
	week := WeekOf(now)
	from, to := week.Dates()

	ws := WeekSummary{Week: week}
	for _, l := range lessons {
		if l.Status == model.LessonCancelled || l.Date.Before(from) || l.Date.After(to) {
			continue
		}
		ws.PlannedCount++
		ws.PlannedHours += l.Hours()
		if l.Status == model.LessonCompleted {
			ws.CompletedCount++
			ws.CompletedHours += l.Hours()
		}
	}

	for _, l := range unpaid {
		ws.UnpaidCount++
		ws.UnpaidTotal += l.Price
	}
	return ws
}

// StudentSummary is the per-student card on the students view.
type StudentSummary struct {
	StudentID int64
	Total     int
	Completed int
	Hours     float64
	Earned    int64
	// Unpaid is the price of completed lessons not yet paid for.
	Unpaid int64
}

// SummarizeStudent aggregates one student's lessons. Hours and money
// count completed lessons only.
func SummarizeStudent(studentID int64, lessons []model.Lesson) StudentSummary {
	ss := StudentSummary{StudentID: studentID}
	for _, l := range lessons {
		if l.StudentID != studentID {
			continue
		}
		ss.Total++
		if l.Status != model.LessonCompleted {
			continue
		}
		ss.Completed++
		ss.Hours += l.Hours()
		ss.Earned += l.Price
		if !l.Paid {
			ss.Unpaid += l.Price
		}
	}
	return ss
}

// SummarizeStudents returns a summary for every student in one pass over
// lessons, keyed by student id.
func SummarizeStudents(students []model.Student, lessons []model.Lesson) map[int64]StudentSummary {
	byStudent := make(map[int64][]model.Lesson, len(students))
	for _, l := range lessons {
		byStudent[l.StudentID] = append(byStudent[l.StudentID], l)
	}

	out := make(map[int64]StudentSummary, len(students))
	for _, st := range students {
		out[st.ID] = SummarizeStudent(st.ID, byStudent[st.ID])
	}
	return out
}
