package tracking

import (
	"time"

	"habit-tracker/internal/model"
)

// IsDue reports whether tracker t should appear on date.
// Events are due on their own day only; habits on the weekdays of their schedule.
func (c Calendar) IsDue(t model.Tracker, date time.Time) bool {
	if t.Date != nil {
		return c.SameDay(*t.Date, date)
	}
	wd, ok := c.Weekday(date)
	if !ok {
		return false
	}
	return t.Schedule.Contains(wd)
}

// DueTrackers keeps the trackers due on date, preserving order.
func (c Calendar) DueTrackers(trackers []model.Tracker, date time.Time) []model.Tracker {
	due := make([]model.Tracker, 0, len(trackers))
	for _, t := range trackers {
		if c.IsDue(t, date) {
			due = append(due, t)
		}
	}
	return due
}
