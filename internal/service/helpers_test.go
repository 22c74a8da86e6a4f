package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"habit-tracker/internal/events"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/tracking"
)

var (
	utc = tracking.NewCalendar(time.UTC)
	// Monday.
	now = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return now }

type env struct {
	db         *gorm.DB
	bus        *events.Bus
	trackers   *repository.TrackerRepository
	records    *repository.RecordRepository
	categories *repository.CategoryRepository
	settings   *repository.SettingsRepository
	snapshots  *repository.SnapshotRepository
	users      *repository.UserRepository
	trackerSvc *TrackerService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	bus := events.NewBus()
	e := &env{
		db:         db,
		bus:        bus,
		trackers:   repository.NewTrackerRepository(db, bus),
		records:    repository.NewRecordRepository(db, utc, bus),
		categories: repository.NewCategoryRepository(db, bus),
		settings:   repository.NewSettingsRepository(db, bus),
		snapshots:  repository.NewSnapshotRepository(db),
		users:      repository.NewUserRepository(db),
	}
	e.trackerSvc = NewTrackerService(e.trackers, e.records, e.categories, utc, nil)
	e.trackerSvc.now = fixedNow
	return e
}

func (e *env) boardDeps() BoardDeps {
	return BoardDeps{
		Snapshots: e.snapshots,
		Trackers:  e.trackerSvc,
		Settings:  e.settings,
		Events:    e.bus,
		Calendar:  utc,
		Now:       fixedNow,
	}
}

func (e *env) habit(t *testing.T, userID uint, title string, days ...model.Weekday) *model.Tracker {
	t.Helper()
	tr, err := e.trackerSvc.Create(context.Background(), userID, TrackerInput{
		Kind:     model.KindHabit,
		Title:    title,
		Schedule: model.NewWeekdaySet(days...),
	})
	require.NoError(t, err)
	return tr
}

// fakeView records every call the board makes.
type fakeView struct {
	mu         sync.Mutex
	results    []tracking.Result
	empty      []tracking.EmptyState
	dates      []time.Time
	lastCalled string
}

func (v *fakeView) ShowCategories(res tracking.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = append(v.results, res)
	v.lastCalled = "categories"
}

func (v *fakeView) ShowEmptyState(state tracking.EmptyState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.empty = append(v.empty, state)
	v.lastCalled = "empty"
}

func (v *fakeView) DateChanged(date time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dates = append(v.dates, date)
}

func (v *fakeView) last() tracking.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.results) == 0 {
		return tracking.Result{}
	}
	return v.results[len(v.results)-1]
}

func (v *fakeView) lastEmpty() tracking.EmptyState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.empty) == 0 {
		return tracking.EmptyNone
	}
	return v.empty[len(v.empty)-1]
}

func titles(res tracking.Result) map[string][]string {
	out := make(map[string][]string)
	for _, g := range res.Categories {
		for _, tr := range g.Trackers {
			out[g.Title] = append(out[g.Title], tr.Title)
		}
	}
	return out
}

// failingSnapshots wraps a loader and fails while fail is set.
type failingSnapshots struct {
	SnapshotLoader
	mu   sync.Mutex
	fail bool
}

func (f *failingSnapshots) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *failingSnapshots) Load(ctx context.Context, userID uint) (model.Snapshot, error) {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return model.Snapshot{}, errors.New("disk on fire")
	}
	return f.SnapshotLoader.Load(ctx, userID)
}
