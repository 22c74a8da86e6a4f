package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups trackers by area (sport, health, study, etc.).
// Titles are not unique: two categories may share a title and are then shown
// as one group.
type Category struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TrackerCategory is a display group: a title and the trackers shown under it.
type TrackerCategory struct {
	Title    string    `json:"title"`
	Trackers []Tracker `json:"trackers"`
}
