package model

import (
	"strings"
	"time"
)

// Weekday numbers days the way the calendar does: Sunday = 1 … Saturday = 7.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekOrder lists the days Monday first, the order used in forms and labels.
var WeekOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayShort = map[Weekday]string{
	Monday:    "Пн",
	Tuesday:   "Вт",
	Wednesday: "Ср",
	Thursday:  "Чт",
	Friday:    "Пт",
	Saturday:  "Сб",
	Sunday:    "Вс",
}

// WeekdayFromNumber maps a 1–7 weekday number back to the enum.
func WeekdayFromNumber(n int) (Weekday, bool) {
	if n < int(Sunday) || n > int(Saturday) {
		return 0, false
	}
	return Weekday(n), true
}

// WeekdayOf converts a time.Weekday (Sunday = 0) to a Weekday.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday(int(d) + 1)
}

// Number returns the 1–7 weekday number.
func (d Weekday) Number() int { return int(d) }

// Valid reports whether d is one of the seven days.
func (d Weekday) Valid() bool {
	_, ok := WeekdayFromNumber(int(d))
	return ok
}

// Short returns the two-letter label of the day.
func (d Weekday) Short() string {
	return weekdayShort[d]
}

// WeekdaySet is a set of weekdays stored as a 7-bit mask (bit 0 = Sunday).
type WeekdaySet uint8

const everyDay WeekdaySet = 1<<7 - 1

// NewWeekdaySet builds a set from the given days, ignoring invalid values.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// EveryDay returns the set containing all seven days.
func EveryDay() WeekdaySet { return everyDay }

// Contains reports whether d is in the set.
func (s WeekdaySet) Contains(d Weekday) bool {
	if !d.Valid() {
		return false
	}
	return s&(1<<uint(d-1)) != 0
}

// With returns a copy of the set with d added.
func (s WeekdaySet) With(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d-1)
}

// Without returns a copy of the set with d removed.
func (s WeekdaySet) Without(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s &^ (1 << uint(d-1))
}

// Toggle adds d when missing and removes it otherwise.
func (s WeekdaySet) Toggle(d Weekday) WeekdaySet {
	if s.Contains(d) {
		return s.Without(d)
	}
	return s.With(d)
}

// IsEmpty reports whether no day is selected.
func (s WeekdaySet) IsEmpty() bool { return s&everyDay == 0 }

// Days lists the members Monday first.
func (s WeekdaySet) Days() []Weekday {
	days := make([]Weekday, 0, 7)
	for _, d := range WeekOrder {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set as "Каждый день" or a comma separated list of short names.
func (s WeekdaySet) String() string {
	if s&everyDay == everyDay {
		return "Каждый день"
	}
	days := s.Days()
	labels := make([]string, 0, len(days))
	for _, d := range days {
		labels = append(labels, d.Short())
	}
	return strings.Join(labels, ", ")
}
