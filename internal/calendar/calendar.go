// Package calendar turns a flat list of events into the month grid shown by the calendar view.
//
// Days are keyed by the yyyy-MM-dd projection of each event's start time in the grid's location,
// so an event right at local midnight may land on a different day on a device in another zone.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/sidereusnuntius/campus/internal/domain"
)

// DateLayout is the format of day keys.
const DateLayout = "2006-01-02"

type Day struct {
	Date            time.Time
	InSelectedMonth bool
	IsToday         bool
	// Events that start on this day, in the order of the source list.
	Events []domain.Event
}

func (d Day) Key() string {
	return d.Date.Format(DateLayout)
}

// Interactive reports whether selecting the day should open its detail view.
func (d Day) Interactive() bool {
	return len(d.Events) > 0
}

type Week [7]Day

type Options struct {
	WeekStart time.Weekday
	// Now decides which day is flagged as today. Defaults to time.Now.
	Now func() time.Time
}

// Index groups events by the day their start time falls on in loc. Events with no start time are
// skipped.
func Index(events []domain.Event, loc *time.Location) map[string][]domain.Event {
	idx := make(map[string][]domain.Event)
	for _, e := range events {
		if e.StartTime.IsZero() {
			continue
		}
		key := e.StartTime.In(loc).Format(DateLayout)
		idx[key] = append(idx[key], e)
	}
	return idx
}

// BucketMonth builds the weeks overlapping the month of anchor, in anchor's location. The first and
// last weeks are completed with days of the adjacent months.
func BucketMonth(events []domain.Event, anchor time.Time, opts Options) []Week {
	loc := anchor.Location()
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	today := now().In(loc).Format(DateLayout)

	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, -1)
	idx := Index(events, loc)

	var weeks []Week
	for start := startOfWeek(monthStart, opts.WeekStart); !start.After(monthEnd); start = start.AddDate(0, 0, 7) {
		var w Week
		for i := range w {
			date := start.AddDate(0, 0, i)
			key := date.Format(DateLayout)
			w[i] = Day{
				Date:            date,
				InSelectedMonth: date.Month() == monthStart.Month() && date.Year() == monthStart.Year(),
				IsToday:         key == today,
				Events:          idx[key],
			}
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// startOfWeek returns midnight of the first day of the week containing t.
func startOfWeek(t time.Time, first time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(first) + 7) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

// DayDetail returns the grid day with the given key.
func DayDetail(weeks []Week, key string) (Day, bool) {
	for _, w := range weeks {
		for _, d := range w {
			if d.Key() == key {
				return d, true
			}
		}
	}
	return Day{}, false
}

// ParseMonth reads a YYYY-MM string as the first day of that month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t, nil
}

// ParseWeekday accepts an English day name, full or abbreviated.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// ActivityLevels maps the yearly activity counts onto the five intensities of the heat map, 0 for
// no events and 4 for the busiest days.
func ActivityLevels(counts []domain.DayCount) map[string]int {
	peak := 0
	for _, c := range counts {
		if c.Count > peak {
			peak = c.Count
		}
	}
	levels := make(map[string]int, len(counts))
	for _, c := range counts {
		if c.Count <= 0 || peak == 0 {
			levels[c.Date] = 0
			continue
		}
		// ceil(4 * count / peak)
		levels[c.Date] = (4*c.Count + peak - 1) / peak
	}
	return levels
}
