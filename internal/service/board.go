package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"habit-tracker/internal/events"
	"habit-tracker/internal/metrics"
	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

// View receives what the board should display. Calls for one board never
// overlap, and a result is never delivered after a newer one.
type View interface {
	ShowCategories(res tracking.Result)
	ShowEmptyState(state tracking.EmptyState)
	DateChanged(date time.Time)
}

// BoardDeps are the collaborators shared by every board.
type BoardDeps struct {
	Snapshots SnapshotLoader
	Trackers  *TrackerService
	Settings  SettingsStore
	// Events is optional. Without it the board refreshes only after its own
	// actions.
	Events   events.Subscriber
	Calendar tracking.Calendar
	Now      func() time.Time
	Log      *zap.Logger
}

// Board holds one user's selected date, filter and search text, and pushes a
// freshly computed tracker list to its View whenever any of them or the
// user's data changes.
type Board struct {
	deps        BoardDeps
	userID      uint
	view        View
	log         *zap.Logger
	unsubscribe func()

	mu      sync.Mutex
	date    time.Time
	filter  model.FilterType
	search  string
	gen     uint64
	applied uint64
	done    *tracking.Completions
	result  tracking.Result

	viewMu sync.Mutex
	shown  uint64
}

// NewBoard restores the persisted filter, subscribes to store changes and
// shows the first result for today.
func NewBoard(ctx context.Context, deps BoardDeps, userID uint, view View) (*Board, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	b := &Board{
		deps:   deps,
		userID: userID,
		view:   view,
		log:    deps.Log.Named("board").With(zap.Uint("user_id", userID)),
		date:   deps.Calendar.StartOfDay(deps.Now()),
		filter: model.AllTrackers,
	}

	if deps.Settings != nil {
		raw, ok, err := deps.Settings.Get(ctx, userID, model.FilterSettingKey)
		if err != nil {
			b.log.Warn("load filter", zap.Error(err))
		} else if ok {
			if v, err := strconv.Atoi(raw); err == nil {
				b.filter = model.FilterFromInt(v)
			}
		}
	}

	if deps.Events != nil {
		b.unsubscribe = deps.Events.Subscribe(b.onEvent)
	}
	if err := b.Refresh(ctx); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Close stops listening to store changes.
func (b *Board) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

func (b *Board) onEvent(e events.Event) {
	if e.UserID != b.userID {
		return
	}
	switch e.Kind {
	case events.TrackersChanged, events.RecordsChanged, events.CategoriesChanged:
		if err := b.Refresh(context.Background()); err != nil {
			b.log.Warn("refresh after store change", zap.Stringer("kind", e.Kind), zap.Error(err))
		}
	}
}

// Refresh recomputes the visible trackers from the stores. On a store error
// the previous result stays in place.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	q := b.queryLocked()
	b.mu.Unlock()

	start := time.Now()
	snap, err := b.deps.Snapshots.Load(ctx, b.userID)
	if err != nil {
		b.log.Error("load board", zap.Error(err))
		return fmt.Errorf("refresh board: %w", err)
	}
	done := tracking.NewCompletions(b.deps.Calendar, snap.Records)
	res := tracking.VisibleCategories(b.deps.Calendar, snap.Trackers, snap.Categories, done, q)
	metrics.ObserveBoardRefresh(time.Since(start))

	b.mu.Lock()
	if gen < b.applied {
		b.mu.Unlock()
		return nil
	}
	b.applied = gen
	b.done = done
	b.result = res
	b.mu.Unlock()

	b.present(gen, res)
	return nil
}

func (b *Board) present(gen uint64, res tracking.Result) {
	if b.view == nil {
		return
	}
	b.viewMu.Lock()
	defer b.viewMu.Unlock()
	if gen < b.shown {
		return
	}
	b.shown = gen
	if state := res.EmptyState(); state != tracking.EmptyNone {
		b.view.ShowEmptyState(state)
		return
	}
	b.view.ShowCategories(res)
}

// queryLocked pins the selected date to today while TodaysTrackers is active.
func (b *Board) queryLocked() tracking.Query {
	now := b.deps.Now()
	if b.filter == model.TodaysTrackers {
		b.date = b.deps.Calendar.StartOfDay(now)
	}
	return tracking.Query{
		Date:   b.date,
		Now:    now,
		Filter: b.filter,
		Search: b.search,
	}
}

// SetDate switches the board to the day of date.
func (b *Board) SetDate(ctx context.Context, date time.Time) error {
	return b.moveDate(ctx, func(time.Time) time.Time {
		return b.deps.Calendar.StartOfDay(date)
	})
}

// ShiftDate moves the selected date by days.
func (b *Board) ShiftDate(ctx context.Context, days int) error {
	return b.moveDate(ctx, func(current time.Time) time.Time {
		return b.deps.Calendar.AddDays(current, days)
	})
}

// moveDate selects another day. Leaving today while TodaysTrackers is active
// falls back to AllTrackers.
func (b *Board) moveDate(ctx context.Context, next func(time.Time) time.Time) error {
	b.mu.Lock()
	b.date = next(b.date)
	leftToday := b.filter == model.TodaysTrackers && !b.deps.Calendar.SameDay(b.date, b.deps.Now())
	if leftToday {
		b.filter = model.AllTrackers
	}
	b.mu.Unlock()

	if leftToday {
		if err := b.saveFilter(ctx, model.AllTrackers); err != nil {
			return err
		}
	}
	return b.Refresh(ctx)
}

func (b *Board) saveFilter(ctx context.Context, f model.FilterType) error {
	if b.deps.Settings == nil {
		return nil
	}
	if err := b.deps.Settings.Set(ctx, b.userID, model.FilterSettingKey, strconv.Itoa(int(f))); err != nil {
		b.log.Error("save filter", zap.Error(err))
		return fmt.Errorf("apply filter: %w", err)
	}
	return nil
}

// ApplyFilter persists and applies f. TodaysTrackers also moves the selected
// date to today.
func (b *Board) ApplyFilter(ctx context.Context, f model.FilterType) error {
	if !f.Valid() {
		return invalid("filter", "неизвестный фильтр")
	}
	if err := b.saveFilter(ctx, f); err != nil {
		return err
	}

	var today time.Time
	b.mu.Lock()
	b.filter = f
	if f == model.TodaysTrackers {
		today = b.deps.Calendar.StartOfDay(b.deps.Now())
		b.date = today
	}
	b.mu.Unlock()

	if !today.IsZero() && b.view != nil {
		b.viewMu.Lock()
		b.view.DateChanged(today)
		b.viewMu.Unlock()
	}
	return b.Refresh(ctx)
}

// SetSearch filters by a case-insensitive title substring; blank clears it.
func (b *Board) SetSearch(ctx context.Context, text string) error {
	b.mu.Lock()
	b.search = text
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// Toggle completes or un-completes tracker id on the selected date.
func (b *Board) Toggle(ctx context.Context, id uuid.UUID) (bool, error) {
	return b.ToggleOn(ctx, id, b.Date())
}

// ToggleOn completes or un-completes tracker id on date.
func (b *Board) ToggleOn(ctx context.Context, id uuid.UUID, date time.Time) (bool, error) {
	done, err := b.deps.Trackers.Toggle(ctx, b.userID, id, date)
	if err != nil {
		return done, err
	}
	return done, b.refreshIfDetached(ctx)
}

// TogglePin pins or unpins tracker id.
func (b *Board) TogglePin(ctx context.Context, id uuid.UUID) (bool, error) {
	pinned, err := b.deps.Trackers.TogglePin(ctx, b.userID, id)
	if err != nil {
		return pinned, err
	}
	return pinned, b.refreshIfDetached(ctx)
}

func (b *Board) refreshIfDetached(ctx context.Context) error {
	if b.unsubscribe != nil {
		return nil
	}
	return b.Refresh(ctx)
}

// IsCompleted reports whether tracker id is done on date according to the
// last loaded data.
func (b *Board) IsCompleted(id uuid.UUID, date time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done.IsCompleted(id, date)
}

// CompletionCount is the number of days tracker id was completed.
func (b *Board) CompletionCount(id uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done.Count(id)
}

// IsEditableDate reports whether completions may be changed on date:
// any day up to and including today.
func (b *Board) IsEditableDate(date time.Time) bool {
	return !b.deps.Calendar.IsAfterToday(date, b.deps.Now())
}

func (b *Board) CurrentFilter() model.FilterType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// IsFilterActive is true for every filter but AllTrackers.
func (b *Board) IsFilterActive() bool {
	return b.CurrentFilter() != model.AllTrackers
}

func (b *Board) Date() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.date
}

func (b *Board) Search() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.search
}

// Result returns the last computed result.
func (b *Board) Result() tracking.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}
