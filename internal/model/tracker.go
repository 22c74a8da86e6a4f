package model

import (
	"time"

	"github.com/google/uuid"
)

// TrackerKind tells a recurring habit from a one-off event.
type TrackerKind int

const (
	KindHabit TrackerKind = iota
	KindEvent
)

func (k TrackerKind) String() string {
	if k == KindEvent {
		return "event"
	}
	return "habit"
}

// Tracker is a habit (Schedule) or an irregular event (Date) the user marks as done.
// Color is a "#RRGGBB" hex string.
type Tracker struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"-"`
	CategoryID *uuid.UUID `gorm:"type:char(36);index" json:"category_id,omitempty"`
	Title      string     `json:"title"`
	Emoji      string     `json:"emoji"`
	Color      string     `json:"color"`
	Schedule   WeekdaySet `gorm:"default:0" json:"schedule"`
	Date       *time.Time `json:"date,omitempty"`
	IsPinned   bool       `gorm:"default:false" json:"is_pinned"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Kind reports KindEvent when an explicit date is set. The date wins over a
// schedule if a tracker somehow carries both.
func (t Tracker) Kind() TrackerKind {
	if t.Date != nil {
		return KindEvent
	}
	return KindHabit
}
