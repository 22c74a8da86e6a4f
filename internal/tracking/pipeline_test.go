package tracking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/model"
)

func withCategory(t model.Tracker, c model.Category) model.Tracker {
	id := c.ID
	t.CategoryID = &id
	return t
}

func titles(groups []model.TrackerCategory) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Title)
	}
	return out
}

func trackerTitles(groups []model.TrackerCategory) []string {
	var out []string
	for _, g := range groups {
		for _, t := range g.Trackers {
			out = append(out, t.Title)
		}
	}
	return out
}

func TestCategorize_PinnedFirstThenSortedTitlesUncategorizedLast(t *testing.T) {
	sport := model.Category{ID: uuid.New(), Title: "Спорт"}
	health := model.Category{ID: uuid.New(), Title: "здоровье"}
	trackers := []model.Tracker{
		withCategory(everyDay("Бег"), sport),
		withCategory(everyDay("Вода"), health),
		everyDay("Чтение"),
		withCategory(everyDay("Йога"), model.Category{ID: uuid.New()}), // deleted category
	}
	pinned := withCategory(everyDay("Медитация"), health)
	pinned.IsPinned = true
	trackers = append(trackers, pinned)

	groups := Categorize(trackers, []model.Category{sport, health})

	assert.Equal(t, []string{PinnedTitle, "здоровье", "Спорт", UncategorizedTitle}, titles(groups))
	assert.Equal(t, []string{"Медитация", "Вода", "Бег", "Йога", "Чтение"}, trackerTitles(groups))
}

func TestCategorize_DuplicateTitlesShareAGroup(t *testing.T) {
	a := model.Category{ID: uuid.New(), Title: "Дом"}
	b := model.Category{ID: uuid.New(), Title: "Дом"}
	groups := Categorize([]model.Tracker{
		withCategory(everyDay("Полить цветы"), a),
		withCategory(everyDay("Уборка"), b),
	}, []model.Category{a, b})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Trackers, 2)
}

func TestCategorize_IsDeterministic(t *testing.T) {
	var cats []model.Category
	var trackers []model.Tracker
	for _, title := range []string{"c", "a", "d", "b", "e"} {
		c := model.Category{ID: uuid.New(), Title: title}
		cats = append(cats, c)
		trackers = append(trackers, withCategory(everyDay(title+"1"), c))
	}
	first := titles(Categorize(trackers, cats))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, titles(Categorize(trackers, cats)))
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, first)
}

func TestVisibleCategories_DueFilter(t *testing.T) {
	gym := habit("Зал", model.Monday)
	water := everyDay("Вода")
	party := event("Вечеринка", wednesday)
	snap := model.Snapshot{Trackers: []model.Tracker{gym, water, party}}

	res := Evaluate(utc, snap, Query{Date: wednesday, Now: wednesday})
	assert.ElementsMatch(t, []string{"Вода", "Вечеринка"}, trackerTitles(res.Categories))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Visible)

	for _, f := range []model.FilterType{model.AllTrackers, model.CompletedTrackers, model.NotCompletedTrackers} {
		res := Evaluate(utc, snap, Query{Date: wednesday, Now: wednesday, Filter: f})
		assert.NotContains(t, trackerTitles(res.Categories), "Зал", f.Title())
	}
}

func TestVisibleCategories_TodaysTrackersForcesNow(t *testing.T) {
	gym := habit("Зал", model.Monday)
	snap := model.Snapshot{Trackers: []model.Tracker{gym}}

	res := Evaluate(utc, snap, Query{Date: wednesday, Now: monday, Filter: model.TodaysTrackers})
	assert.Equal(t, []string{"Зал"}, trackerTitles(res.Categories))
	assert.Equal(t, utc.StartOfDay(monday), res.Date)

	res = Evaluate(utc, snap, Query{Date: monday, Now: wednesday, Filter: model.TodaysTrackers})
	assert.Empty(t, res.Categories)
}

func TestVisibleCategories_StatusFilters(t *testing.T) {
	run := everyDay("Бег")
	read := everyDay("Чтение")
	snap := model.Snapshot{
		Trackers: []model.Tracker{run, read},
		Records:  []model.TrackerRecord{record(run, monday), record(read, tuesday)},
	}

	completed := Evaluate(utc, snap, Query{Date: monday, Filter: model.CompletedTrackers})
	assert.Equal(t, []string{"Бег"}, trackerTitles(completed.Categories))

	notCompleted := Evaluate(utc, snap, Query{Date: monday, Filter: model.NotCompletedTrackers})
	assert.Equal(t, []string{"Чтение"}, trackerTitles(notCompleted.Categories))

	all := Evaluate(utc, snap, Query{Date: monday, Filter: model.AllTrackers})
	assert.Equal(t, []string{"Бег", "Чтение"}, trackerTitles(all.Categories))
}

func TestVisibleCategories_SearchIsCaseInsensitive(t *testing.T) {
	snap := model.Snapshot{Trackers: []model.Tracker{
		everyDay("Morning Run"),
		everyDay("Вечерний БЕГ"),
		everyDay("Read"),
	}}

	res := Evaluate(utc, snap, Query{Date: monday, Search: "  RUN "})
	assert.Equal(t, []string{"Morning Run"}, trackerTitles(res.Categories))

	res = Evaluate(utc, snap, Query{Date: monday, Search: "бег"})
	assert.Equal(t, []string{"Вечерний БЕГ"}, trackerTitles(res.Categories))
}

func TestVisibleCategories_FilterCompositionIsAnIntersection(t *testing.T) {
	sport := model.Category{ID: uuid.New(), Title: "Спорт"}
	runDone := withCategory(everyDay("run fast"), sport)
	runOpen := withCategory(everyDay("run slow"), sport)
	swimDone := withCategory(everyDay("swim"), sport)
	runMonday := habit("run on monday", model.Monday)
	snap := model.Snapshot{
		Trackers:   []model.Tracker{runDone, runOpen, swimDone, runMonday},
		Categories: []model.Category{sport},
		Records: []model.TrackerRecord{
			record(runDone, tuesday), record(swimDone, tuesday), record(runMonday, tuesday),
		},
	}
	done := NewCompletions(utc, snap.Records)

	res := Evaluate(utc, snap, Query{Date: tuesday, Filter: model.CompletedTrackers, Search: "run"})

	expected := map[string]bool{}
	for _, tr := range snap.Trackers {
		if utc.IsDue(tr, tuesday) && done.IsCompleted(tr.ID, tuesday) && searchPredicate("run")(tr) {
			expected[tr.Title] = true
		}
	}
	got := map[string]bool{}
	for _, title := range trackerTitles(res.Categories) {
		got[title] = true
	}
	assert.Equal(t, expected, got)
	assert.Equal(t, map[string]bool{"run fast": true}, got)
}

func TestVisibleCategories_DropsEmptyGroups(t *testing.T) {
	sport := model.Category{ID: uuid.New(), Title: "Спорт"}
	snap := model.Snapshot{
		Trackers:   []model.Tracker{withCategory(habit("Зал", model.Monday), sport), everyDay("Вода")},
		Categories: []model.Category{sport},
	}
	res := Evaluate(utc, snap, Query{Date: wednesday})
	assert.Equal(t, []string{UncategorizedTitle}, titles(res.Categories))
}

func TestResult_EmptyState(t *testing.T) {
	res := Evaluate(utc, model.Snapshot{}, Query{Date: monday})
	assert.Equal(t, EmptyNoData, res.EmptyState())

	snap := model.Snapshot{Trackers: []model.Tracker{habit("Зал", model.Monday)}}
	res = Evaluate(utc, snap, Query{Date: wednesday})
	assert.Equal(t, EmptyNoResults, res.EmptyState())
	assert.Equal(t, 1, res.Total)
	assert.Zero(t, res.Visible)

	res = Evaluate(utc, snap, Query{Date: monday, Search: "нет такого"})
	assert.Equal(t, EmptyNoResults, res.EmptyState())

	res = Evaluate(utc, snap, Query{Date: monday})
	assert.Equal(t, EmptyNone, res.EmptyState())
	assert.Equal(t, "no_results", EmptyNoResults.String())
}

func TestVisibleCategories_CompletionMarks(t *testing.T) {
	run := everyDay("Бег")
	read := everyDay("Чтение")
	gym := habit("Зал", model.Wednesday)
	snap := model.Snapshot{
		Trackers: []model.Tracker{run, read, gym},
		Records: []model.TrackerRecord{
			record(run, monday), record(run, tuesday), record(gym, wednesday),
		},
	}

	res := Evaluate(utc, snap, Query{Date: monday})
	assert.Equal(t, map[uuid.UUID]bool{run.ID: true, read.ID: false}, res.Completed)
	assert.Equal(t, map[uuid.UUID]int{run.ID: 2, read.ID: 0}, res.Counts)
	_, hidden := res.Counts[gym.ID]
	assert.False(t, hidden, "only visible trackers are reported")
}
