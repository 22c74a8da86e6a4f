package tracking

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
)

// Statistics are the aggregate numbers of the statistics screen.
type Statistics struct {
	BestStreak       int `json:"best_streak"`
	PerfectDays      int `json:"perfect_days"`
	TotalCompletions int `json:"total_completions"`
	AveragePerDay    int `json:"average_per_day"`
}

// ComputeStatistics derives all statistics from one snapshot.
func ComputeStatistics(cal Calendar, trackers []model.Tracker, records []model.TrackerRecord) Statistics {
	return Statistics{
		BestStreak:       BestStreak(cal, records),
		PerfectDays:      PerfectDays(cal, trackers, records),
		TotalCompletions: TotalCompletions(records),
		AveragePerDay:    AverageCompletionsPerDay(cal, records),
	}
}

// HasData reports whether there is anything to compute statistics from.
func HasData(records []model.TrackerRecord) bool {
	return len(records) > 0
}

// TotalCompletions is the number of records.
func TotalCompletions(records []model.TrackerRecord) int {
	return len(records)
}

// BestStreak is the longest run of consecutive calendar days having at least
// one completion of any tracker. 0 without records.
func BestStreak(cal Calendar, records []model.TrackerRecord) int {
	days := distinctDays(cal, records)
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if cal.DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// PerfectDays counts the days with records on which at least one tracker was
// due and every due tracker was completed.
func PerfectDays(cal Calendar, trackers []model.Tracker, records []model.TrackerRecord) int {
	completed := make(map[string]map[uuid.UUID]struct{})
	dates := make(map[string]time.Time)
	for _, r := range records {
		key := recordDay(cal, r)
		if _, ok := completed[key]; !ok {
			completed[key] = make(map[uuid.UUID]struct{})
			dates[key] = recordDate(cal, r, key)
		}
		completed[key][r.TrackerID] = struct{}{}
	}

	perfect := 0
	for key, done := range completed {
		due := cal.DueTrackers(trackers, dates[key])
		if len(due) == 0 {
			continue
		}
		ok := true
		for _, t := range due {
			if _, found := done[t.ID]; !found {
				ok = false
				break
			}
		}
		if ok {
			perfect++
		}
	}
	return perfect
}

// AverageCompletionsPerDay divides the record count by the number of
// distinct days with records, truncating. 0 without records.
func AverageCompletionsPerDay(cal Calendar, records []model.TrackerRecord) int {
	days := distinctDays(cal, records)
	if len(days) == 0 {
		return 0
	}
	return len(records) / len(days)
}

// distinctDays returns the sorted start-of-day of every day with a record.
func distinctDays(cal Calendar, records []model.TrackerRecord) []time.Time {
	seen := make(map[string]struct{}, len(records))
	days := make([]time.Time, 0, len(records))
	for _, r := range records {
		key := recordDay(cal, r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, recordDate(cal, r, key))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func recordDate(cal Calendar, r model.TrackerRecord, key string) time.Time {
	if d, err := cal.ParseDay(key); err == nil {
		return d
	}
	return cal.StartOfDay(r.Date)
}
