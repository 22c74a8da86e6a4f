package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
)

// TrackerStore persists trackers. Implementations publish events.TrackersChanged.
type TrackerStore interface {
	List(ctx context.Context, userID uint) ([]model.Tracker, error)
	Get(ctx context.Context, userID uint, id uuid.UUID) (*model.Tracker, error)
	Add(ctx context.Context, tracker *model.Tracker) error
	Update(ctx context.Context, tracker *model.Tracker) error
	Delete(ctx context.Context, userID uint, id uuid.UUID) error
	SetPinned(ctx context.Context, userID uint, id uuid.UUID, pinned bool) error
}

// RecordStore persists completion records, at most one per tracker and day.
type RecordStore interface {
	List(ctx context.Context, userID uint) ([]model.TrackerRecord, error)
	Exists(ctx context.Context, trackerID uuid.UUID, date time.Time) (bool, error)
	Add(ctx context.Context, rec *model.TrackerRecord) error
	Delete(ctx context.Context, rec model.TrackerRecord) error
	CountByTracker(ctx context.Context, trackerID uuid.UUID) (int, error)
}

type CategoryStore interface {
	List(ctx context.Context, userID uint) ([]model.Category, error)
	Get(ctx context.Context, userID uint, id uuid.UUID) (*model.Category, error)
	Add(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, userID uint, id uuid.UUID, title string) error
	Delete(ctx context.Context, userID uint, id uuid.UUID) error
}

// SettingsStore keeps per-user preferences as strings.
type SettingsStore interface {
	Get(ctx context.Context, userID uint, key string) (string, bool, error)
	Set(ctx context.Context, userID uint, key, value string) error
}

// SnapshotLoader reads trackers, categories and records of a user at once.
type SnapshotLoader interface {
	Load(ctx context.Context, userID uint) (model.Snapshot, error)
}

// UserLister enumerates every user, for broadcast jobs.
type UserLister interface {
	ListAll(ctx context.Context) ([]model.User, error)
}
