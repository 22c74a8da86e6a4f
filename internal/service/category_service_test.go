package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

func TestCategoryService_RejectsBlankTitles(t *testing.T) {
	e := newEnv(t)
	svc := NewCategoryService(e.categories)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, " \t ")
	v, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "название категории не может быть пустым", v.Message)

	c, err := svc.Create(ctx, 1, "Sport")
	require.NoError(t, err)
	_, ok = IsValidation(svc.Rename(ctx, 1, c.ID, ""))
	assert.True(t, ok)

	got, err := svc.Get(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sport", got.Title, "no partial write on validation failure")
}

func TestCategoryService_RejectsSectionTitles(t *testing.T) {
	e := newEnv(t)
	svc := NewCategoryService(e.categories)
	ctx := context.Background()

	for _, title := range []string{tracking.UncategorizedTitle, "  без   КАТЕГОРИИ ", tracking.PinnedTitle} {
		_, err := svc.Create(ctx, 1, title)
		v, ok := IsValidation(err)
		require.True(t, ok, title)
		assert.Equal(t, "title", v.Field)
	}

	c, err := svc.Create(ctx, 1, "Без категорий и правил")
	require.NoError(t, err)
	_, ok := IsValidation(svc.Rename(ctx, 1, c.ID, tracking.UncategorizedTitle))
	assert.True(t, ok)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Без категорий и правил", list[0].Title)
}

func TestCategoryService_Lifecycle(t *testing.T) {
	e := newEnv(t)
	svc := NewCategoryService(e.categories)
	ctx := context.Background()

	home, err := svc.Create(ctx, 1, "Home")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, "Gym")
	require.NoError(t, err)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Gym", list[0].Title)

	require.NoError(t, svc.Rename(ctx, 1, home.ID, "  House "))
	got, err := svc.Get(ctx, 1, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "House", got.Title)

	assert.ErrorIs(t, svc.Rename(ctx, 1, uuid.New(), "x"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 1, uuid.New()), ErrNotFound)
}

func TestCategoryService_DeleteMovesTrackersToUncategorized(t *testing.T) {
	e := newEnv(t)
	svc := NewCategoryService(e.categories)
	ctx := context.Background()
	view := &fakeView{}

	sport, err := svc.Create(ctx, 1, "Sport")
	require.NoError(t, err)
	_, err = e.trackerSvc.Create(ctx, 1, TrackerInput{Kind: model.KindHabit, Title: "Run", Schedule: model.EveryDay(), CategoryID: &sport.ID})
	require.NoError(t, err)

	board, err := NewBoard(ctx, e.boardDeps(), 1, view)
	require.NoError(t, err)
	defer board.Close()
	assert.Equal(t, map[string][]string{"Sport": {"Run"}}, titles(view.last()))

	require.NoError(t, svc.Delete(ctx, 1, sport.ID))
	assert.Equal(t, map[string][]string{tracking.UncategorizedTitle: {"Run"}}, titles(view.last()))
}
