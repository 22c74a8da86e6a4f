package model

// FilterType restricts the board on top of due-ness. Stored as a small integer.
type FilterType int

const (
	AllTrackers FilterType = iota
	TodaysTrackers
	CompletedTrackers
	NotCompletedTrackers
)

// FilterTypes lists every filter in display order.
var FilterTypes = []FilterType{AllTrackers, TodaysTrackers, CompletedTrackers, NotCompletedTrackers}

// FilterFromInt maps a persisted value back to a filter; unknown values fall back to AllTrackers.
func FilterFromInt(v int) FilterType {
	f := FilterType(v)
	if !f.Valid() {
		return AllTrackers
	}
	return f
}

// Valid reports whether f is a known filter.
func (f FilterType) Valid() bool {
	return f >= AllTrackers && f <= NotCompletedTrackers
}

// Title is the user-facing name of the filter.
func (f FilterType) Title() string {
	switch f {
	case TodaysTrackers:
		return "Трекеры на сегодня"
	case CompletedTrackers:
		return "Завершённые"
	case NotCompletedTrackers:
		return "Не завершённые"
	default:
		return "Все трекеры"
	}
}
