package calendar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/nhle/tutor-scheduler/internal/model"
)

// propLessonID carries the lesson id so a feed can be matched back to
// stored lessons.
const propLessonID = ics.ComponentProperty("X-TUTOR-LESSON-ID")

// lessonNamespace seeds the stable event UIDs.
var lessonNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://tutor-scheduler.local/lessons"))

// EventUID returns the stable iCalendar UID of a lesson.
func EventUID(lessonID int64) string {
	return uuid.NewSHA1(lessonNamespace, []byte(strconv.FormatInt(lessonID, 10))).String()
}

// FileName returns the default feed name for the day of now.
func FileName(now time.Time) string {
	return fmt.Sprintf("tutor-scheduler-%s.ics", now.Format(model.DateLayout))
}

// WriteICS writes events as an iCalendar document stamped with now.
func WriteICS(w io.Writer, name string, events []Event, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tutor-scheduler//RU")
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	for _, e := range events {
		evt := cal.AddEvent(EventUID(e.LessonID))
		evt.SetDtStampTime(now)
		evt.SetStartAt(e.Start)
		evt.SetEndAt(e.End)
		evt.SetSummary(e.Title)
		evt.SetColor(e.Color)
		evt.SetProperty(propLessonID, strconv.FormatInt(e.LessonID, 10))

		if e.Cancelled() {
			evt.SetStatus(ics.ObjectStatusCancelled)
		} else {
			evt.SetStatus(ics.ObjectStatusConfirmed)
		}
		if e.MeetingLink != "" {
			evt.SetURL(e.MeetingLink)
			evt.SetLocation(e.MeetingLink)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// ParseICS reads events from an iCalendar document. Only the cancelled
// state survives the round trip; every other event comes back scheduled.
// Events without a start are skipped.
func ParseICS(r io.Reader, loc *time.Location) ([]Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, &model.FormatError{Reason: "malformed calendar", Err: err}
	}

	var events []Event
	for _, evt := range cal.Events() {
		start, err := evt.GetStartAt()
		if err != nil {
			continue
		}
		end, err := evt.GetEndAt()
		if err != nil {
			end = start.Add(model.DefaultLessonMinutes * time.Minute)
		}

		e := Event{
			Title:  propValue(evt, ics.ComponentPropertySummary),
			Start:  start.In(loc),
			End:    end.In(loc),
			Color:  propValue(evt, ics.ComponentPropertyColor),
			Status: model.LessonScheduled,
		}
		if strings.EqualFold(propValue(evt, ics.ComponentPropertyStatus), string(ics.ObjectStatusCancelled)) {
			e.Status = model.LessonCancelled
		}
		e.MeetingLink = propValue(evt, ics.ComponentPropertyUrl)
		if id, err := strconv.ParseInt(propValue(evt, propLessonID), 10, 64); err == nil {
			e.LessonID = id
		}

		events = append(events, e)
	}
	return events, nil
}

func propValue(evt *ics.VEvent, prop ics.ComponentProperty) string {
	p := evt.GetProperty(prop)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Value)
}
