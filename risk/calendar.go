package risk

import (
	"fmt"
	"time"
)

// Calendar describes one trading session window per day in UTC.
// Days outside Weekdays have no session at all.
type Calendar struct {
	Name     string
	Open     time.Duration // offset from midnight UTC
	Close    time.Duration
	Weekdays map[time.Weekday]bool
}

var weekdaysOnly = map[time.Weekday]bool{
	time.Monday:    true,
	time.Tuesday:   true,
	time.Wednesday: true,
	time.Thursday:  true,
	time.Friday:    true,
}

var allDays = map[time.Weekday]bool{
	time.Sunday: true, time.Monday: true, time.Tuesday: true, time.Wednesday: true,
	time.Thursday: true, time.Friday: true, time.Saturday: true,
}

var calendars = map[string]Calendar{
	// NYSE regular session, 09:30-16:00 America/New_York expressed in UTC.
	// Fixed at the standard-time offset; DST precision is not needed for
	// the order-admission gate.
	"XNYS": {
		Name:     "XNYS",
		Open:     14*time.Hour + 30*time.Minute,
		Close:    21 * time.Hour,
		Weekdays: weekdaysOnly,
	},
	"24x5": {
		Name:     "24x5",
		Open:     0,
		Close:    24 * time.Hour,
		Weekdays: weekdaysOnly,
	},
	"24x7": {
		Name:     "24x7",
		Open:     0,
		Close:    24 * time.Hour,
		Weekdays: allDays,
	},
}

// LookupCalendar resolves a calendar identifier.
func LookupCalendar(name string) (Calendar, error) {
	c, ok := calendars[name]
	if !ok {
		return Calendar{}, fmt.Errorf("unknown market calendar %q", name)
	}
	return c, nil
}

// IsOpen reports whether t (converted to UTC) falls inside the session
// window. Boundaries are inclusive.
func (c Calendar) IsOpen(t time.Time) bool {
	t = t.UTC()
	if !c.Weekdays[t.Weekday()] {
		return false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := t.Sub(midnight)
	return offset >= c.Open && offset <= c.Close
}
