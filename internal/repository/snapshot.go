package repository

import (
	"context"

	"gorm.io/gorm"

	"habit-tracker/internal/model"
)

// SnapshotRepository reads everything a user owns in one transaction so that
// derived views never mix data from before and after a concurrent write.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Load(ctx context.Context, userID uint) (model.Snapshot, error) {
	var snap model.Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Order("title ASC").Find(&snap.Trackers).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Order("title ASC").Find(&snap.Categories).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Order("day ASC").Find(&snap.Records).Error
	})
	if err != nil {
		return model.Snapshot{}, wrap("load", "snapshot", err)
	}
	return snap, nil
}
