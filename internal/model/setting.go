package model

import "time"

// Setting is a per-user key/value pair.
type Setting struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

// FilterSettingKey stores the selected FilterType as an integer.
const FilterSettingKey = "selectedFilterType"

// Snapshot is one consistent read of everything a user owns.
type Snapshot struct {
	Trackers   []Tracker
	Categories []Category
	Records    []TrackerRecord
}
