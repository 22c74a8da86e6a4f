package model

import (
	"time"

	"github.com/google/uuid"
)

// TrackerRecord says tracker TrackerID was completed on calendar day Day
// ("2006-01-02" in the tracker calendar). Date keeps the moment the day
// started; the (tracker_id, day) pair is unique.
type TrackerRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"index" json:"-"`
	TrackerID uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_record_tracker_day" json:"tracker_id"`
	Day       string    `gorm:"size:10;uniqueIndex:idx_record_tracker_day" json:"day"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"-"`
}

// SameAs compares records at day granularity.
func (r TrackerRecord) SameAs(other TrackerRecord) bool {
	return r.TrackerID == other.TrackerID && r.Day == other.Day
}
