package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"habit-tracker/internal/events"
	"habit-tracker/internal/model"
)

// TrackerRepository handles CRUD for trackers.
type TrackerRepository struct {
	db     *gorm.DB
	notify events.Notifier
}

func NewTrackerRepository(db *gorm.DB, notify events.Notifier) *TrackerRepository {
	if notify == nil {
		notify = events.Discard
	}
	return &TrackerRepository{db: db, notify: notify}
}

func (r *TrackerRepository) List(ctx context.Context, userID uint) ([]model.Tracker, error) {
	var trackers []model.Tracker
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("title ASC").Find(&trackers).Error; err != nil {
		return nil, wrap("list", "trackers", err)
	}
	return trackers, nil
}

func (r *TrackerRepository) Get(ctx context.Context, userID uint, id uuid.UUID) (*model.Tracker, error) {
	var tracker model.Tracker
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&tracker).Error; err != nil {
		return nil, wrap("find", "tracker", err)
	}
	return &tracker, nil
}

func (r *TrackerRepository) Add(ctx context.Context, tracker *model.Tracker) error {
	if tracker.ID == uuid.Nil {
		tracker.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tracker).Error; err != nil {
		return wrap("create", "tracker", err)
	}
	r.notify.Publish(events.Event{Kind: events.TrackersChanged, UserID: tracker.UserID})
	return nil
}

// Update overwrites every editable field, zero values included.
func (r *TrackerRepository) Update(ctx context.Context, tracker *model.Tracker) error {
	res := r.db.WithContext(ctx).Model(&model.Tracker{}).
		Where("user_id = ? AND id = ?", tracker.UserID, tracker.ID).
		Updates(map[string]interface{}{
			"title":       tracker.Title,
			"emoji":       tracker.Emoji,
			"color":       tracker.Color,
			"schedule":    tracker.Schedule,
			"date":        tracker.Date,
			"category_id": tracker.CategoryID,
			"is_pinned":   tracker.IsPinned,
		})
	if res.Error != nil {
		return wrap("update", "tracker", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("update", "tracker", ErrNotFound)
	}
	r.notify.Publish(events.Event{Kind: events.TrackersChanged, UserID: tracker.UserID})
	return nil
}

func (r *TrackerRepository) SetPinned(ctx context.Context, userID uint, id uuid.UUID, pinned bool) error {
	res := r.db.WithContext(ctx).Model(&model.Tracker{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("is_pinned", pinned)
	if res.Error != nil {
		return wrap("pin", "tracker", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("pin", "tracker", ErrNotFound)
	}
	r.notify.Publish(events.Event{Kind: events.TrackersChanged, UserID: userID})
	return nil
}

// Delete removes the tracker together with its completion records.
func (r *TrackerRepository) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&model.Tracker{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		res = tx.Where("user_id = ? AND tracker_id = ?", userID, id).Delete(&model.TrackerRecord{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return wrap("delete", "tracker", err)
	}
	r.notify.Publish(events.Event{Kind: events.TrackersChanged, UserID: userID})
	if removed > 0 {
		r.notify.Publish(events.Event{Kind: events.RecordsChanged, UserID: userID})
	}
	return nil
}
