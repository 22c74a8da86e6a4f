package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habit-tracker/internal/metrics"
	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

const userKey = "user"

// NewRouter sets up all API routes.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), observe())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", requireToken(deps.APIToken))
	users := api.Group("/users/:telegramID", loadUser(deps))
	users.GET("/board", handleBoard(deps))
	users.PUT("/trackers/:id", handleUpdateTracker(deps))
	users.POST("/trackers/:id/toggle", handleToggle(deps))
	users.POST("/trackers/:id/pin", handlePin(deps))
	users.GET("/stats", handleStats(deps))
	users.GET("/categories", handleCategories(deps))
	return router
}

func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func requireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func loadUser(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("telegramID"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid telegram id"})
			return
		}
		user, err := deps.Users.FindByTelegramID(c.Request.Context(), id)
		if err != nil {
			writeError(c, deps.Log, err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}

type boardResponse struct {
	tracking.Result
	EmptyState string `json:"empty_state"`
}

func handleBoard(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := currentUser(c)

		boardDeps := deps.Board
		boardDeps.Events = nil
		if boardDeps.Settings != nil {
			boardDeps.Settings = readOnlySettings{boardDeps.Settings}
		}
		board, err := service.NewBoard(ctx, boardDeps, user.ID, nil)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		defer board.Close()

		if raw := c.Query("date"); raw != "" {
			date, err := deps.Calendar.ParseDay(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			if err := board.SetDate(ctx, date); err != nil {
				writeError(c, deps.Log, err)
				return
			}
		}
		if raw := c.Query("filter"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "filter must be a number"})
				return
			}
			if err := board.ApplyFilter(ctx, model.FilterType(n)); err != nil {
				writeError(c, deps.Log, err)
				return
			}
		}
		if q := c.Query("q"); q != "" {
			if err := board.SetSearch(ctx, q); err != nil {
				writeError(c, deps.Log, err)
				return
			}
		}

		res := board.Result()
		c.JSON(http.StatusOK, boardResponse{Result: res, EmptyState: res.EmptyState().String()})
	}
}

func handleToggle(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := trackerID(c)
		if !ok {
			return
		}
		date := time.Now()
		if raw := c.Query("date"); raw != "" {
			d, err := deps.Calendar.ParseDay(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			date = d
		}
		done, err := deps.Trackers.Toggle(c.Request.Context(), user.ID, id, date)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		count, err := deps.Trackers.CompletionCount(c.Request.Context(), id)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tracker_id": id,
			"date":       deps.Calendar.DayKey(date),
			"completed":  done,
			"count":      count,
		})
	}
}

// trackerRequest is the body of PUT /trackers/:id. A date makes the tracker
// an event; otherwise schedule lists weekday numbers, Sunday = 1.
type trackerRequest struct {
	Title      string     `json:"title"`
	Emoji      string     `json:"emoji"`
	Color      string     `json:"color"`
	CategoryID *uuid.UUID `json:"category_id"`
	Schedule   []int      `json:"schedule"`
	Date       string     `json:"date"`
}

func (r trackerRequest) input(cal tracking.Calendar) (service.TrackerInput, error) {
	in := service.TrackerInput{
		Kind:       model.KindHabit,
		Title:      r.Title,
		Emoji:      r.Emoji,
		Color:      r.Color,
		CategoryID: r.CategoryID,
	}
	if r.Date != "" {
		d, err := cal.ParseDay(r.Date)
		if err != nil {
			return in, errors.New("date must be YYYY-MM-DD")
		}
		in.Kind = model.KindEvent
		in.Date = &d
		return in, nil
	}
	for _, n := range r.Schedule {
		d, ok := model.WeekdayFromNumber(n)
		if !ok {
			return in, errors.New("schedule holds weekday numbers 1-7")
		}
		in.Schedule = in.Schedule.With(d)
	}
	return in, nil
}

func handleUpdateTracker(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := trackerID(c)
		if !ok {
			return
		}
		var req trackerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		input, err := req.input(deps.Calendar)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tracker, err := deps.Trackers.Update(c.Request.Context(), user.ID, id, input)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		c.JSON(http.StatusOK, tracker)
	}
}

func handlePin(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		id, ok := trackerID(c)
		if !ok {
			return
		}
		pinned, err := deps.Trackers.TogglePin(c.Request.Context(), user.ID, id)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tracker_id": id, "pinned": pinned})
	}
}

func handleStats(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, ok, err := deps.Stats.Compute(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"has_data": ok, "statistics": stats})
	}
}

func handleCategories(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := deps.Categories.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, deps.Log, err)
			return
		}
		if categories == nil {
			categories = []model.Category{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

func trackerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracker id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	if v, ok := service.IsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Message, "field": v.Field})
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrFutureDate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "date is in the future"})
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
