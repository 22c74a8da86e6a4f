package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"habit-tracker/internal/events"
	"habit-tracker/internal/model"
)

// CategoryRepository manages tracker categories.
type CategoryRepository struct {
	db     *gorm.DB
	notify events.Notifier
}

func NewCategoryRepository(db *gorm.DB, notify events.Notifier) *CategoryRepository {
	if notify == nil {
		notify = events.Discard
	}
	return &CategoryRepository{db: db, notify: notify}
}

func (r *CategoryRepository) List(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, wrap("list", "categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, userID uint, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&category).Error; err != nil {
		return nil, wrap("find", "category", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Add(ctx context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return wrap("create", "category", err)
	}
	r.notify.Publish(events.Event{Kind: events.CategoriesChanged, UserID: category.UserID})
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, userID uint, id uuid.UUID, title string) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("title", title)
	if res.Error != nil {
		return wrap("update", "category", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("update", "category", ErrNotFound)
	}
	r.notify.Publish(events.Event{Kind: events.CategoriesChanged, UserID: userID})
	return nil
}

// Delete removes the category and detaches its trackers, which then show up
// as uncategorized.
func (r *CategoryRepository) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	var detached int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&model.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		res = tx.Model(&model.Tracker{}).
			Where("user_id = ? AND category_id = ?", userID, id).
			Update("category_id", nil)
		detached = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return wrap("delete", "category", err)
	}
	r.notify.Publish(events.Event{Kind: events.CategoriesChanged, UserID: userID})
	if detached > 0 {
		r.notify.Publish(events.Event{Kind: events.TrackersChanged, UserID: userID})
	}
	return nil
}
