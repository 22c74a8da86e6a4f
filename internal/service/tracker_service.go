package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"habit-tracker/internal/metrics"
	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// TrackerInput carries the user-editable fields of a tracker. Kind decides
// whether Schedule or Date is used; the other one is dropped.
type TrackerInput struct {
	Kind       model.TrackerKind
	Title      string
	Emoji      string
	Color      string
	CategoryID *uuid.UUID
	Schedule   model.WeekdaySet
	Date       *time.Time
}

// TrackerService wraps tracker-related business logic.
type TrackerService struct {
	trackers   TrackerStore
	records    RecordStore
	categories CategoryStore
	cal        tracking.Calendar
	now        func() time.Time
	log        *zap.Logger
}

func NewTrackerService(trackers TrackerStore, records RecordStore, categories CategoryStore, cal tracking.Calendar, log *zap.Logger) *TrackerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrackerService{
		trackers:   trackers,
		records:    records,
		categories: categories,
		cal:        cal,
		now:        time.Now,
		log:        log.Named("trackers"),
	}
}

// Create validates input and stores a new tracker.
func (s *TrackerService) Create(ctx context.Context, userID uint, input TrackerInput) (*model.Tracker, error) {
	tracker := model.Tracker{UserID: userID}
	if err := s.apply(ctx, &tracker, input); err != nil {
		return nil, err
	}
	tracker.ID = uuid.New()
	if tracker.Color == "" {
		tracker.Color = model.Palette[int(tracker.ID[0])%len(model.Palette)]
	}
	if err := s.trackers.Add(ctx, &tracker); err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}
	s.log.Debug("tracker created", zap.Uint("user_id", userID), zap.String("tracker_id", tracker.ID.String()), zap.Stringer("kind", tracker.Kind()))
	return &tracker, nil
}

// Update replaces the editable fields of tracker id. The pin flag is kept.
func (s *TrackerService) Update(ctx context.Context, userID uint, id uuid.UUID, input TrackerInput) (*model.Tracker, error) {
	tracker, err := s.trackers.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, tracker, input); err != nil {
		return nil, err
	}
	if tracker.Color == "" {
		tracker.Color = model.Palette[int(tracker.ID[0])%len(model.Palette)]
	}
	if err := s.trackers.Update(ctx, tracker); err != nil {
		return nil, fmt.Errorf("update tracker: %w", err)
	}
	return tracker, nil
}

func (s *TrackerService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	return s.trackers.Delete(ctx, userID, id)
}

func (s *TrackerService) Get(ctx context.Context, userID uint, id uuid.UUID) (*model.Tracker, error) {
	return s.trackers.Get(ctx, userID, id)
}

func (s *TrackerService) List(ctx context.Context, userID uint) ([]model.Tracker, error) {
	return s.trackers.List(ctx, userID)
}

// TogglePin flips the pinned flag and returns the new value.
func (s *TrackerService) TogglePin(ctx context.Context, userID uint, id uuid.UUID) (bool, error) {
	tracker, err := s.trackers.Get(ctx, userID, id)
	if err != nil {
		return false, err
	}
	pinned := !tracker.IsPinned
	if err := s.trackers.SetPinned(ctx, userID, id, pinned); err != nil {
		return tracker.IsPinned, err
	}
	return pinned, nil
}

// Toggle marks tracker id as done on date, or removes the mark when it is
// already done. It returns the completion state after the call. Days after
// today are rejected with ErrFutureDate.
func (s *TrackerService) Toggle(ctx context.Context, userID uint, id uuid.UUID, date time.Time) (bool, error) {
	if _, err := s.trackers.Get(ctx, userID, id); err != nil {
		return false, err
	}
	if s.cal.IsAfterToday(date, s.now()) {
		metrics.IncrementToggle("rejected")
		return false, ErrFutureDate
	}

	rec := model.TrackerRecord{UserID: userID, TrackerID: id, Date: date}
	done, err := s.records.Exists(ctx, id, date)
	if err != nil {
		return false, err
	}
	if done {
		if err := s.records.Delete(ctx, rec); err != nil {
			return true, fmt.Errorf("uncomplete tracker: %w", err)
		}
		metrics.IncrementToggle("uncompleted")
		return false, nil
	}
	if err := s.records.Add(ctx, &rec); err != nil {
		return false, fmt.Errorf("complete tracker: %w", err)
	}
	metrics.IncrementToggle("completed")
	return true, nil
}

// CompletionCount returns on how many days tracker id was completed.
func (s *TrackerService) CompletionCount(ctx context.Context, id uuid.UUID) (int, error) {
	return s.records.CountByTracker(ctx, id)
}

func (s *TrackerService) apply(ctx context.Context, tracker *model.Tracker, input TrackerInput) error {
	title := normalizeTitle(input.Title)
	if title == "" {
		return invalid("title", "название трекера не может быть пустым")
	}

	emoji := strings.TrimSpace(input.Emoji)
	if emoji == "" {
		emoji = model.DefaultEmoji
	}

	color := strings.TrimSpace(input.Color)
	if color != "" {
		if !hexColor.MatchString(color) {
			return invalid("color", "цвет должен быть в формате #RRGGBB")
		}
		color = strings.ToUpper(color)
	}

	switch input.Kind {
	case model.KindHabit:
		if input.Schedule.IsEmpty() {
			return invalid("schedule", "выберите хотя бы один день недели")
		}
		tracker.Schedule = input.Schedule & model.EveryDay()
		tracker.Date = nil
	case model.KindEvent:
		if input.Date == nil || input.Date.IsZero() {
			return invalid("date", "укажите дату события")
		}
		day := s.cal.StartOfDay(*input.Date)
		tracker.Date = &day
		tracker.Schedule = 0
	default:
		return invalid("kind", "неизвестный тип трекера")
	}

	if input.CategoryID != nil {
		if _, err := s.categories.Get(ctx, tracker.UserID, *input.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalid("category", "категория не найдена")
			}
			return err
		}
		id := *input.CategoryID
		tracker.CategoryID = &id
	} else {
		tracker.CategoryID = nil
	}

	tracker.Title = title
	tracker.Emoji = emoji
	tracker.Color = color
	return nil
}

// normalizeTitle trims and collapses internal whitespace.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
