// Package stats aggregates completed lessons into period statistics,
// dashboard summaries and yearly tax figures.
package stats

import (
	"slices"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// Bucket accumulates count, hours and earnings for one group.
type Bucket struct {
	Count    int
	Hours    float64
	Earnings int64
}

func (b *Bucket) add(l model.Lesson) {
	b.Count++
	b.Hours += l.Hours()
	b.Earnings += l.Price
}

// SubjectStat is the bucket of one subject id.
type SubjectStat struct {
	SubjectID string
	Bucket
}

// StudentStat is the bucket of one student id. Name falls back to the
// unknown-student placeholder when the student no longer exists.
type StudentStat struct {
	StudentID int64
	Name      string
	Bucket
}

// TopicStat counts lessons per topic. SubjectID is the subject of the
// first lesson seen with that topic.
type TopicStat struct {
	Topic     string
	Count     int
	SubjectID string
}

// PeriodStats aggregates the completed lessons of a date window. Earnings
// (accrued) and PaidAmount (received) are kept apart.
type PeriodStats struct {
	Start model.Date
	End   model.Date

	TotalLessons  int
	TotalHours    float64
	TotalEarnings int64
	PaidAmount    int64
	UnpaidAmount  int64

	// Groups in first-seen order.
	Subjects []SubjectStat
	Students []StudentStat
	Topics   []TopicStat

	subjectIdx map[string]int
	studentIdx map[int64]int
	topicIdx   map[string]int
}

// Aggregate scans lessons once and groups the completed ones dated within
// [start, end] by subject, student and topic.
func Aggregate(lessons []model.Lesson, students model.StudentDirectory, start, end model.Date) *PeriodStats {
	ps := &PeriodStats{
		Start:      start,
		End:        end,
		subjectIdx: make(map[string]int),
		studentIdx: make(map[int64]int),
		topicIdx:   make(map[string]int),
	}

	for _, l := range lessons {
		if l.Status != model.LessonCompleted {
			continue
		}
		if l.Date.Before(start) || l.Date.After(end) {
			continue
		}

		i, ok := ps.subjectIdx[l.Subject]
		if !ok {
			i = len(ps.Subjects)
			ps.subjectIdx[l.Subject] = i
			ps.Subjects = append(ps.Subjects, SubjectStat{SubjectID: l.Subject})
		}
		ps.Subjects[i].add(l)

		i, ok = ps.studentIdx[l.StudentID]
		if !ok {
			i = len(ps.Students)
			ps.studentIdx[l.StudentID] = i
			ps.Students = append(ps.Students, StudentStat{
				StudentID: l.StudentID,
				Name:      students.Name(l.StudentID),
			})
		}
		ps.Students[i].add(l)

		if l.Topic != "" {
			i, ok = ps.topicIdx[l.Topic]
			if !ok {
				i = len(ps.Topics)
				ps.topicIdx[l.Topic] = i
				ps.Topics = append(ps.Topics, TopicStat{Topic: l.Topic, SubjectID: l.Subject})
			}
			ps.Topics[i].Count++
		}

		ps.TotalLessons++
		ps.TotalHours += l.Hours()
		ps.TotalEarnings += l.Price
		if l.Paid {
			ps.PaidAmount += l.Price
		}
	}

	ps.UnpaidAmount = ps.TotalEarnings - ps.PaidAmount
	return ps
}

// Subject returns the bucket of subjectID.
func (ps *PeriodStats) Subject(subjectID string) (SubjectStat, bool) {
	i, ok := ps.subjectIdx[subjectID]
	if !ok {
		return SubjectStat{SubjectID: subjectID}, false
	}
	return ps.Subjects[i], true
}

// Student returns the bucket of studentID.
func (ps *PeriodStats) Student(studentID int64) (StudentStat, bool) {
	i, ok := ps.studentIdx[studentID]
	if !ok {
		return StudentStat{StudentID: studentID}, false
	}
	return ps.Students[i], true
}

// Topic returns the counter of topic.
func (ps *PeriodStats) Topic(topic string) (TopicStat, bool) {
	i, ok := ps.topicIdx[topic]
	if !ok {
		return TopicStat{Topic: topic}, false
	}
	return ps.Topics[i], true
}

// TopTopics returns up to n topics by count, most frequent first. Ties
// keep first-seen order.
func (ps *PeriodStats) TopTopics(n int) []TopicStat {
	out := slices.Clone(ps.Topics)
	slices.SortStableFunc(out, func(a, b TopicStat) int { return b.Count - a.Count })
	return truncate(out, n)
}

// TopStudents returns up to n students by earnings, highest first. Ties
// keep first-seen order.
func (ps *PeriodStats) TopStudents(n int) []StudentStat {
	out := slices.Clone(ps.Students)
	slices.SortStableFunc(out, func(a, b StudentStat) int { return cmpEarnings(a.Earnings, b.Earnings) })
	return truncate(out, n)
}

// SubjectsByEarnings returns every subject, highest earnings first.
func (ps *PeriodStats) SubjectsByEarnings() []SubjectStat {
	out := slices.Clone(ps.Subjects)
	slices.SortStableFunc(out, func(a, b SubjectStat) int { return cmpEarnings(a.Earnings, b.Earnings) })
	return out
}

func cmpEarnings(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func truncate[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
