package tracking

import (
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
)

// Completions indexes one snapshot of records by tracker and day.
type Completions struct {
	cal  Calendar
	days map[uuid.UUID]map[string]struct{}
}

// NewCompletions builds the index. Records repeating a (tracker, day) pair count once.
func NewCompletions(cal Calendar, records []model.TrackerRecord) *Completions {
	c := &Completions{cal: cal, days: make(map[uuid.UUID]map[string]struct{})}
	for _, r := range records {
		set, ok := c.days[r.TrackerID]
		if !ok {
			set = make(map[string]struct{})
			c.days[r.TrackerID] = set
		}
		set[recordDay(cal, r)] = struct{}{}
	}
	return c
}

// IsCompleted reports whether trackerID has a record on the day of date.
func (c *Completions) IsCompleted(trackerID uuid.UUID, date time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.days[trackerID][c.cal.DayKey(date)]
	return ok
}

// Count returns how many days trackerID was completed, regardless of its schedule.
func (c *Completions) Count(trackerID uuid.UUID) int {
	if c == nil {
		return 0
	}
	return len(c.days[trackerID])
}

func recordDay(cal Calendar, r model.TrackerRecord) string {
	if r.Day != "" {
		return r.Day
	}
	return cal.DayKey(r.Date)
}
