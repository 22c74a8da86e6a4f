package tracking

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/model"
)

const (
	PinnedTitle        = "Закреплённые"
	UncategorizedTitle = "Без категории"
)

// EmptyState tells the consumer which placeholder to show.
type EmptyState int

const (
	EmptyNone EmptyState = iota
	// EmptyNoData means the user has no trackers at all.
	EmptyNoData
	// EmptyNoResults means trackers exist but the date/filter/search hides them all.
	EmptyNoResults
)

func (s EmptyState) String() string {
	switch s {
	case EmptyNoData:
		return "no_data"
	case EmptyNoResults:
		return "no_results"
	default:
		return "none"
	}
}

// Query is the board state a result is computed for.
type Query struct {
	Date   time.Time
	Now    time.Time
	Filter model.FilterType
	Search string
}

// EffectiveDate is the day the due and status filters look at.
// TodaysTrackers pins it to Now.
func (q Query) EffectiveDate() time.Time {
	if q.Filter == model.TodaysTrackers {
		if q.Now.IsZero() {
			return time.Now()
		}
		return q.Now
	}
	return q.Date
}

// Result is what the board shows. Total counts every tracker of the user,
// Visible the trackers left after filtering. Completed and Counts cover the
// visible trackers: done on Date, and number of days ever completed.
type Result struct {
	Categories []model.TrackerCategory `json:"categories"`
	Date       time.Time               `json:"date"`
	Filter     model.FilterType        `json:"filter"`
	Search     string                  `json:"search,omitempty"`
	Total      int                     `json:"total"`
	Visible    int                     `json:"visible"`
	Completed  map[uuid.UUID]bool      `json:"completed"`
	Counts     map[uuid.UUID]int       `json:"counts"`
}

// EmptyState picks the placeholder for r.
func (r Result) EmptyState() EmptyState {
	switch {
	case r.Total == 0:
		return EmptyNoData
	case r.Visible == 0:
		return EmptyNoResults
	default:
		return EmptyNone
	}
}

// Categorize groups trackers for display: pinned trackers first under
// PinnedTitle, then one group per category title sorted by title, then
// UncategorizedTitle for trackers whose category is missing or unknown.
// Trackers inside a group are sorted by title.
func Categorize(trackers []model.Tracker, categories []model.Category) []model.TrackerCategory {
	titles := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		titles[c.ID] = strings.TrimSpace(c.Title)
	}

	var pinned []model.Tracker
	groups := make(map[string][]model.Tracker)
	for _, t := range trackers {
		if t.IsPinned {
			pinned = append(pinned, t)
			continue
		}
		title := categoryTitle(t, titles)
		groups[title] = append(groups[title], t)
	}

	order := make([]string, 0, len(groups))
	for title := range groups {
		order = append(order, title)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a == UncategorizedTitle || b == UncategorizedTitle {
			return b == UncategorizedTitle && a != UncategorizedTitle
		}
		la, lb := strings.ToLower(a), strings.ToLower(b)
		if la != lb {
			return la < lb
		}
		return a < b
	})

	result := make([]model.TrackerCategory, 0, len(order)+1)
	if len(pinned) > 0 {
		result = append(result, model.TrackerCategory{Title: PinnedTitle, Trackers: sortTrackers(pinned)})
	}
	for _, title := range order {
		result = append(result, model.TrackerCategory{Title: title, Trackers: sortTrackers(groups[title])})
	}
	return result
}

// VisibleCategories runs the whole pipeline: group, keep due trackers, apply
// the status filter, apply the search and drop empty groups. The three
// predicates are independent, so their order does not change the result set.
func VisibleCategories(cal Calendar, trackers []model.Tracker, categories []model.Category, done *Completions, q Query) Result {
	date := q.EffectiveDate()
	search := strings.ToLower(strings.TrimSpace(q.Search))

	keep := []func(model.Tracker) bool{
		func(t model.Tracker) bool { return cal.IsDue(t, date) },
		statusPredicate(q.Filter, done, date),
		searchPredicate(search),
	}

	res := Result{
		Date:   cal.StartOfDay(date),
		Filter: q.Filter,
		Search: strings.TrimSpace(q.Search),
		Total:  len(trackers),

		Completed: make(map[uuid.UUID]bool),
		Counts:    make(map[uuid.UUID]int),
	}
	for _, group := range Categorize(trackers, categories) {
		var visible []model.Tracker
		for _, t := range group.Trackers {
			if all(keep, t) {
				visible = append(visible, t)
				res.Completed[t.ID] = done.IsCompleted(t.ID, date)
				res.Counts[t.ID] = done.Count(t.ID)
			}
		}
		if len(visible) == 0 {
			continue
		}
		res.Visible += len(visible)
		res.Categories = append(res.Categories, model.TrackerCategory{Title: group.Title, Trackers: visible})
	}
	return res
}

// Evaluate runs VisibleCategories over a snapshot.
func Evaluate(cal Calendar, snap model.Snapshot, q Query) Result {
	return VisibleCategories(cal, snap.Trackers, snap.Categories, NewCompletions(cal, snap.Records), q)
}

func statusPredicate(filter model.FilterType, done *Completions, date time.Time) func(model.Tracker) bool {
	switch filter {
	case model.CompletedTrackers:
		return func(t model.Tracker) bool { return done.IsCompleted(t.ID, date) }
	case model.NotCompletedTrackers:
		return func(t model.Tracker) bool { return !done.IsCompleted(t.ID, date) }
	default:
		return func(model.Tracker) bool { return true }
	}
}

func searchPredicate(search string) func(model.Tracker) bool {
	if search == "" {
		return func(model.Tracker) bool { return true }
	}
	return func(t model.Tracker) bool {
		return strings.Contains(strings.ToLower(t.Title), search)
	}
}

func all(preds []func(model.Tracker) bool, t model.Tracker) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}
	return true
}

func categoryTitle(t model.Tracker, titles map[uuid.UUID]string) string {
	if t.CategoryID == nil {
		return UncategorizedTitle
	}
	title, ok := titles[*t.CategoryID]
	if !ok || title == "" {
		return UncategorizedTitle
	}
	return title
}

func sortTrackers(trackers []model.Tracker) []model.Tracker {
	sort.SliceStable(trackers, func(i, j int) bool {
		a, b := trackers[i], trackers[j]
		la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if la != lb {
			return la < lb
		}
		return a.ID.String() < b.ID.String()
	})
	return trackers
}
