package tracking

import (
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
)

var (
	utc = NewCalendar(time.UTC)
	// 2025-06-02 is a Monday.
	monday    = time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	tuesday   = monday.AddDate(0, 0, 1)
	wednesday = monday.AddDate(0, 0, 2)
)

func habit(title string, days ...model.Weekday) model.Tracker {
	return model.Tracker{ID: uuid.New(), Title: title, Emoji: "🏃", Color: "#33CF69", Schedule: model.NewWeekdaySet(days...)}
}

func event(title string, date time.Time) model.Tracker {
	return model.Tracker{ID: uuid.New(), Title: title, Emoji: "🎉", Color: "#FF881E", Date: &date}
}

func record(t model.Tracker, date time.Time) model.TrackerRecord {
	return model.TrackerRecord{TrackerID: t.ID, Day: utc.DayKey(date), Date: utc.StartOfDay(date)}
}

func everyDay(title string) model.Tracker {
	t := habit(title)
	t.Schedule = model.EveryDay()
	return t
}
