package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habit-tracker/internal/model"
)

// UserRepository maps Telegram accounts to local users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram creates the user on first contact and keeps the profile
// fields in sync afterwards. The local ID never changes.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	db := r.db.WithContext(ctx)
	profile := model.User{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   lastName,
		Username:   username,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "username", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return nil, wrap("upsert", "user", err)
	}
	return r.FindByTelegramID(ctx, telegramID)
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Take(&user).Error; err != nil {
		return nil, wrap("find", "user", err)
	}
	return &user, nil
}

// ListAll returns every user in creation order, for broadcast jobs.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, wrap("list", "users", err)
	}
	return users, nil
}
