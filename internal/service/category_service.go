package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

// CategoryService manages the categories a user groups trackers by.
type CategoryService struct {
	repo CategoryStore
}

func NewCategoryService(repo CategoryStore) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns the categories sorted by title.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	return s.repo.List(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID uint, id uuid.UUID) (*model.Category, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *CategoryService) Create(ctx context.Context, userID uint, title string) (*model.Category, error) {
	title, err := categoryTitle(title)
	if err != nil {
		return nil, err
	}
	category := model.Category{ID: uuid.New(), UserID: userID, Title: title}
	if err := s.repo.Add(ctx, &category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) Rename(ctx context.Context, userID uint, id uuid.UUID, title string) error {
	title, err := categoryTitle(title)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, id, title)
}

// categoryTitle normalizes title and rejects names of the built-in sections.
func categoryTitle(title string) (string, error) {
	title = normalizeTitle(title)
	if title == "" {
		return "", invalid("title", "название категории не может быть пустым")
	}
	for _, reserved := range []string{tracking.UncategorizedTitle, tracking.PinnedTitle} {
		if strings.EqualFold(title, reserved) {
			return "", invalid("title", fmt.Sprintf("название «%s» зарезервировано", reserved))
		}
	}
	return title, nil
}

// Delete removes the category; its trackers become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
