package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habit-tracker/internal/model"
)

func TestIsDue_ScheduleMatchesWeekday(t *testing.T) {
	schedules := []model.WeekdaySet{
		model.NewWeekdaySet(model.Monday),
		model.NewWeekdaySet(model.Saturday, model.Sunday),
		model.EveryDay(),
		model.NewWeekdaySet(model.Tuesday, model.Thursday),
	}
	for _, s := range schedules {
		tr := habit("run")
		tr.Schedule = s
		for i := 0; i < 14; i++ {
			date := monday.AddDate(0, 0, i)
			wd, _ := utc.Weekday(date)
			assert.Equal(t, s.Contains(wd), utc.IsDue(tr, date), "schedule %s on %s", s, date.Weekday())
		}
	}
}

func TestIsDue_EmptyScheduleNeverDue(t *testing.T) {
	tr := habit("nothing")
	for i := 0; i < 7; i++ {
		assert.False(t, utc.IsDue(tr, monday.AddDate(0, 0, i)))
	}
}

func TestIsDue_EventOnlyOnItsDay(t *testing.T) {
	tr := event("concert", time.Date(2025, time.June, 4, 23, 50, 0, 0, time.UTC))

	assert.True(t, utc.IsDue(tr, time.Date(2025, time.June, 4, 0, 5, 0, 0, time.UTC)))
	assert.True(t, utc.IsDue(tr, wednesday))
	assert.False(t, utc.IsDue(tr, tuesday))
	assert.False(t, utc.IsDue(tr, wednesday.AddDate(0, 0, 7)))
}

func TestIsDue_EventIgnoresSchedule(t *testing.T) {
	tr := event("dentist", tuesday)
	tr.Schedule = model.EveryDay()

	assert.True(t, utc.IsDue(tr, tuesday))
	assert.False(t, utc.IsDue(tr, monday))
}

func TestDueTrackers_MondayOnlyExcludedOnWednesday(t *testing.T) {
	mon := habit("gym", model.Monday)
	daily := everyDay("water")

	due := utc.DueTrackers([]model.Tracker{mon, daily}, wednesday)
	assert.Equal(t, []model.Tracker{daily}, due)
}
