package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habit-tracker/internal/events"
	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

// RecordRepository stores completion records, at most one per tracker and day.
type RecordRepository struct {
	db     *gorm.DB
	cal    tracking.Calendar
	notify events.Notifier
}

func NewRecordRepository(db *gorm.DB, cal tracking.Calendar, notify events.Notifier) *RecordRepository {
	if notify == nil {
		notify = events.Discard
	}
	return &RecordRepository{db: db, cal: cal, notify: notify}
}

func (r *RecordRepository) List(ctx context.Context, userID uint) ([]model.TrackerRecord, error) {
	var records []model.TrackerRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("day ASC").Find(&records).Error; err != nil {
		return nil, wrap("list", "records", err)
	}
	return records, nil
}

func (r *RecordRepository) Exists(ctx context.Context, trackerID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TrackerRecord{}).
		Where("tracker_id = ? AND day = ?", trackerID, r.cal.DayKey(date)).
		Count(&count).Error
	if err != nil {
		return false, wrap("find", "record", err)
	}
	return count > 0, nil
}

func (r *RecordRepository) CountByTracker(ctx context.Context, trackerID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TrackerRecord{}).Where("tracker_id = ?", trackerID).Count(&count).Error; err != nil {
		return 0, wrap("count", "records", err)
	}
	return int(count), nil
}

// Add inserts a record for the day of rec.Date. Adding a day that already has
// a record is a no-op.
func (r *RecordRepository) Add(ctx context.Context, rec *model.TrackerRecord) error {
	rec.Day = r.cal.DayKey(rec.Date)
	rec.Date = r.cal.StartOfDay(rec.Date)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tracker_id"}, {Name: "day"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return wrap("create", "record", res.Error)
	}
	if res.RowsAffected > 0 {
		r.notify.Publish(events.Event{Kind: events.RecordsChanged, UserID: rec.UserID})
	}
	return nil
}

// Delete removes the record of rec.TrackerID on the day of rec.Date, if any.
func (r *RecordRepository) Delete(ctx context.Context, rec model.TrackerRecord) error {
	res := r.db.WithContext(ctx).
		Where("tracker_id = ? AND day = ?", rec.TrackerID, r.cal.DayKey(rec.Date)).
		Delete(&model.TrackerRecord{})
	if res.Error != nil {
		return wrap("delete", "record", res.Error)
	}
	if res.RowsAffected > 0 {
		r.notify.Publish(events.Event{Kind: events.RecordsChanged, UserID: rec.UserID})
	}
	return nil
}
