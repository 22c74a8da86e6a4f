package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"habit-tracker/internal/events"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

type fixture struct {
	router   *gin.Engine
	user     *model.User
	trackers *service.TrackerService
	settings *repository.SettingsRepository
	run      *model.Tracker
}

func setup(t *testing.T, token string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	cal := tracking.NewCalendar(time.UTC)
	bus := events.NewBus()
	users := repository.NewUserRepository(db)
	trackerRepo := repository.NewTrackerRepository(db, bus)
	records := repository.NewRecordRepository(db, cal, bus)
	categories := repository.NewCategoryRepository(db, bus)
	settings := repository.NewSettingsRepository(db, bus)
	snapshots := repository.NewSnapshotRepository(db)

	trackers := service.NewTrackerService(trackerRepo, records, categories, cal, nil)
	deps := Deps{
		Users: users,
		Board: service.BoardDeps{
			Snapshots: snapshots,
			Trackers:  trackers,
			Settings:  settings,
			Events:    bus,
			Calendar:  cal,
		},
		Trackers:   trackers,
		Categories: service.NewCategoryService(categories),
		Stats:      service.NewStatisticsService(snapshots, cal),
		Calendar:   cal,
		APIToken:   token,
	}

	ctx := context.Background()
	user, err := users.UpsertFromTelegram(ctx, 555, "Ann", "", "ann")
	require.NoError(t, err)
	run, err := trackers.Create(ctx, user.ID, service.TrackerInput{Kind: model.KindHabit, Title: "Run", Schedule: model.EveryDay()})
	require.NoError(t, err)

	return &fixture{router: NewRouter(deps), user: user, trackers: trackers, settings: settings, run: run}
}

func (f *fixture) do(t *testing.T, method, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return f.send(t, method, path, token, nil)
}

func (f *fixture) send(t *testing.T, method, path, token string, reqBody io.Reader) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, reqBody)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHealthz(t *testing.T) {
	f := setup(t, "")
	rec, body := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t, "")
	f.do(t, http.MethodGet, "/healthz", "")
	rec, _ := f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "habittracker_http_request_duration_seconds")
}

func TestToken(t *testing.T) {
	f := setup(t, "secret")
	rec, _ := f.do(t, http.MethodGet, "/api/v1/users/555/board", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/users/555/board", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/users/555/board", "secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health check is public")
}

func TestUnknownUser(t *testing.T) {
	f := setup(t, "")
	rec, _ := f.do(t, http.MethodGet, "/api/v1/users/999/board", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/users/abc/board", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleAndBoard(t *testing.T) {
	f := setup(t, "")
	today := time.Now().UTC().Format(tracking.DayLayout)
	path := "/api/v1/users/555/trackers/" + f.run.ID.String() + "/toggle?date=" + today

	rec, body := f.do(t, http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["completed"])
	assert.EqualValues(t, 1, body["count"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/users/555/board?filter=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "none", body["empty_state"])
	assert.EqualValues(t, 1, body["visible"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/users/555/board?filter=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_results", body["empty_state"])

	_, stored, err := f.settings.Get(context.Background(), f.user.ID, model.FilterSettingKey)
	require.NoError(t, err)
	assert.False(t, stored, "query parameters do not change the saved filter")

	rec, body = f.do(t, http.MethodGet, "/api/v1/users/555/board?q=swim", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_results", body["empty_state"])

	rec, body = f.do(t, http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["completed"])
}

func TestToggleErrors(t *testing.T) {
	f := setup(t, "")
	future := time.Now().UTC().AddDate(0, 0, 3).Format(tracking.DayLayout)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/users/555/trackers/"+f.run.ID.String()+"/toggle?date="+future, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/users/555/trackers/"+uuid.NewString()+"/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/users/555/trackers/nope/toggle", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/users/555/trackers/"+f.run.ID.String()+"/toggle?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/users/555/board?filter=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPinStatsCategories(t *testing.T) {
	f := setup(t, "")

	rec, body := f.do(t, http.MethodPost, "/api/v1/users/555/trackers/"+f.run.ID.String()+"/pin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["pinned"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/users/555/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["has_data"])

	_, err := f.trackers.Toggle(context.Background(), f.user.ID, f.run.ID, time.Now())
	require.NoError(t, err)
	rec, body = f.do(t, http.MethodGet, "/api/v1/users/555/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["has_data"])
	stats := body["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_completions"])
	assert.EqualValues(t, 1, stats["best_streak"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/users/555/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["categories"])
}

func TestUpdateTracker(t *testing.T) {
	f := setup(t, "")
	path := "/api/v1/users/555/trackers/" + f.run.ID.String()

	rec, body := f.send(t, http.MethodPut, path, "", strings.NewReader(`{"title":"  Morning   run ","color":"#abcdef","schedule":[2,4]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Morning run", body["title"])
	assert.Equal(t, "#ABCDEF", body["color"])

	got, err := f.trackers.Get(context.Background(), f.user.ID, f.run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NewWeekdaySet(model.Monday, model.Wednesday), got.Schedule)
	assert.Equal(t, model.KindHabit, got.Kind())

	rec, _ = f.send(t, http.MethodPut, path, "", strings.NewReader(`{"title":"Dentist","date":"2030-01-15"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	got, err = f.trackers.Get(context.Background(), f.user.ID, f.run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindEvent, got.Kind())
	assert.True(t, got.Schedule.IsEmpty())

	rec, body = f.send(t, http.MethodPut, path, "", strings.NewReader(`{"title":"Run"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a habit needs weekdays")
	assert.Equal(t, "schedule", body["field"])

	rec, _ = f.send(t, http.MethodPut, path, "", strings.NewReader(`{"title":"Run","schedule":[8]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.send(t, http.MethodPut, path, "", strings.NewReader(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.send(t, http.MethodPut, "/api/v1/users/555/trackers/"+uuid.NewString(), "", strings.NewReader(`{"title":"X","schedule":[1]}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
