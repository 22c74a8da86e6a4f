package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/model"
)

func TestCalendar_WeekdayNumbering(t *testing.T) {
	tests := []struct {
		date time.Time
		want model.Weekday
	}{
		{monday, model.Monday},
		{wednesday, model.Wednesday},
		{monday.AddDate(0, 0, -1), model.Sunday},
		{monday.AddDate(0, 0, 5), model.Saturday},
	}
	for _, tt := range tests {
		got, ok := utc.Weekday(tt.date)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, tt.date.String())
	}
	sunday, _ := utc.Weekday(monday.AddDate(0, 0, -1))
	assert.Equal(t, 1, sunday.Number())
}

func TestCalendar_SameDayIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, time.June, 2, 0, 0, 1, 0, time.UTC)
	night := time.Date(2025, time.June, 2, 23, 59, 59, 0, time.UTC)
	assert.True(t, utc.SameDay(morning, night))
	assert.False(t, utc.SameDay(night, night.Add(2*time.Second)))
}

func TestCalendar_UsesItsLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	cal := NewCalendar(moscow)
	// 22:30 UTC on Monday is already Tuesday in UTC+3.
	late := time.Date(2025, time.June, 2, 22, 30, 0, 0, time.UTC)
	wd, ok := cal.Weekday(late)
	require.True(t, ok)
	assert.Equal(t, model.Tuesday, wd)
	assert.Equal(t, "2025-06-03", cal.DayKey(late))
	assert.Equal(t, "2025-06-02", utc.DayKey(late))
}

func TestCalendar_DaysBetweenAndAddDays(t *testing.T) {
	assert.Equal(t, 2, utc.DaysBetween(monday, wednesday))
	assert.Equal(t, -2, utc.DaysBetween(wednesday, monday))
	assert.Equal(t, 0, utc.DaysBetween(monday, monday.Add(10*time.Hour)))
	assert.Equal(t, utc.StartOfDay(wednesday), utc.AddDays(monday, 2))

	parsed, err := utc.ParseDay("2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, utc.StartOfDay(wednesday), parsed)

	_, err = utc.ParseDay("04.06.2025")
	assert.Error(t, err)
}

func TestCalendar_IsAfterToday(t *testing.T) {
	assert.False(t, utc.IsAfterToday(monday, monday))
	assert.False(t, utc.IsAfterToday(monday.Add(12*time.Hour), monday))
	assert.True(t, utc.IsAfterToday(tuesday, monday))
	assert.False(t, utc.IsAfterToday(monday.AddDate(0, 0, -3), monday))
}
