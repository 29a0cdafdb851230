package calendar

import (
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/sidereusnuntius/campus/internal/domain"
)

const productID = "-//campus//events//EN"

// ExportICS writes events as an iCalendar feed named name. Events with no start time are left out;
// an event with no end time lasts one hour.
func ExportICS(w io.Writer, events []domain.Event, name string) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := time.Now().UTC()
	for _, e := range events {
		if e.StartTime.IsZero() {
			continue
		}
		end := e.EndTime.Time
		if end.IsZero() || end.Before(e.StartTime.Time) {
			end = e.StartTime.Add(time.Hour)
		}

		ev := cal.AddEvent(uid(e))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(e.StartTime.Time)
		ev.SetEndAt(end)
		ev.SetSummary(e.Name)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func uid(e domain.Event) string {
	if e.ID == "" {
		return e.StartTime.UTC().Format("20060102T150405Z") + "@campus"
	}
	return "event-" + string(e.ID) + "@campus"
}
