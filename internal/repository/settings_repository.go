package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habit-tracker/internal/events"
	"habit-tracker/internal/model"
)

// SettingsRepository keeps per-user preferences in the settings table.
type SettingsRepository struct {
	db     *gorm.DB
	notify events.Notifier
}

func NewSettingsRepository(db *gorm.DB, notify events.Notifier) *SettingsRepository {
	if notify == nil {
		notify = events.Discard
	}
	return &SettingsRepository{db: db, notify: notify}
}

// Get returns the stored value and whether it exists.
func (r *SettingsRepository) Get(ctx context.Context, userID uint, key string) (string, bool, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).Where(map[string]interface{}{"user_id": userID, "key": key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("find", "setting", err)
	}
	return setting.Value, true, nil
}

func (r *SettingsRepository) Set(ctx context.Context, userID uint, key, value string) error {
	setting := model.Setting{UserID: userID, Key: key, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return wrap("save", "setting", err)
	}
	r.notify.Publish(events.Event{Kind: events.SettingsChanged, UserID: userID})
	return nil
}
