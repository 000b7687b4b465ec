package attendance

import (
	"fmt"
	"time"
)

// DateLayout is the civil date format used for keys and on the wire.
const DateLayout = "2006-01-02"

// ExcludedWeekday is the non-working day left out of every window.
const ExcludedWeekday = time.Friday

var dayNames = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// Window is one Sunday-to-Saturday week and the working dates it shows.
type Window struct {
	Start time.Time
	End   time.Time
	Dates []time.Time
}

// ComputeWeek returns the window containing anchor. Dates are civil dates at
// midnight in the anchor's location.
func ComputeWeek(anchor time.Time) Window {
	day := civil(anchor)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)

	dates := make([]time.Time, 0, 6)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		if d.Weekday() == ExcludedWeekday {
			continue
		}
		dates = append(dates, d)
	}
	return Window{Start: start, End: end, Dates: dates}
}

// Next returns the following week.
func (w Window) Next() Window {
	return ComputeWeek(w.Start.AddDate(0, 0, 7))
}

// Previous returns the preceding week.
func (w Window) Previous() Window {
	return ComputeWeek(w.Start.AddDate(0, 0, -7))
}

// Keys returns the visible dates formatted as date keys.
func (w Window) Keys() []string {
	keys := make([]string, len(w.Dates))
	for i, d := range w.Dates {
		keys[i] = DateKey(d)
	}
	return keys
}

// Contains reports whether key is one of the visible dates.
func (w Window) Contains(key string) bool {
	for _, d := range w.Dates {
		if DateKey(d) == key {
			return true
		}
	}
	return false
}

// StartKey and EndKey bound the query range for the window.
func (w Window) StartKey() string { return DateKey(w.Start) }
func (w Window) EndKey() string   { return DateKey(w.End) }

// Label renders the range for headings, e.g. "05 Jan 2025 - 11 Jan 2025".
func (w Window) Label() string {
	return fmt.Sprintf("%s - %s", w.Start.Format("02 Jan 2006"), w.End.Format("02 Jan 2006"))
}

// CanGoNext reports whether the following week may be opened. Weeks that
// have not started yet are closed: navigation is allowed only once today is
// past the current window's end.
func CanGoNext(w Window, today time.Time) bool {
	nextStart := w.End.AddDate(0, 0, 1)
	return !civilIn(today, w.Start.Location()).Before(nextStart)
}

// DateKey formats a civil date without shifting it through UTC.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a date key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// DayName returns the Indonesian weekday name.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// ColumnLabel renders a grid header such as "Senin, 06/01".
func ColumnLabel(t time.Time) string {
	return fmt.Sprintf("%s, %s", DayName(t.Weekday()), t.Format("02/01"))
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func civilIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return civil(t)
	}
	return civil(t.In(loc))
}
