// Package tracking decides which trackers are due on a day, whether they are
// completed, what the board shows for a date/filter/search and the
// statistics derived from completion history. Everything here is a pure
// function of its inputs.
package tracking

import (
	"time"

	"habit-tracker/internal/model"
)

// DayLayout is the layout of record day keys and date arguments.
const DayLayout = "2006-01-02"

// Calendar does day-granularity arithmetic in one location.
// The zero value uses time.Local.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar for loc (time.Local when nil).
func NewCalendar(loc *time.Location) Calendar {
	return Calendar{loc: loc}
}

// Location returns the calendar time zone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// StartOfDay truncates t to midnight of its calendar day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	loc := c.Location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AddDays moves t by n calendar days and returns the start of that day.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	loc := c.Location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, loc)
}

// DayKey formats the calendar day of t.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format(DayLayout)
}

// ParseDay parses a day key as the start of that day.
func (c Calendar) ParseDay(key string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, key, c.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	loc := c.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts calendar days from a to b; DST shifts do not matter.
func (c Calendar) DaysBetween(a, b time.Time) int {
	loc := c.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Weekday returns the weekday of t in the calendar numbering.
func (c Calendar) Weekday(t time.Time) (model.Weekday, bool) {
	return model.WeekdayFromNumber(int(t.In(c.Location()).Weekday()) + 1)
}

// IsAfterToday reports whether date lies on a later calendar day than now.
func (c Calendar) IsAfterToday(date, now time.Time) bool {
	return c.DaysBetween(now, date) > 0
}
