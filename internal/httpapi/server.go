// Package httpapi exposes the board, completion toggles, statistics and
// categories over a small JSON API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

// UserFinder resolves the Telegram id used in URLs to a stored user.
type UserFinder interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// Deps are the services the API is built on.
type Deps struct {
	Users      UserFinder
	Board      service.BoardDeps
	Trackers   *service.TrackerService
	Categories *service.CategoryService
	Stats      *service.StatisticsService
	Calendar   tracking.Calendar
	// APIToken, when set, must be sent as "Authorization: Bearer <token>".
	APIToken string
	Log      *zap.Logger
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Addr string
	Deps Deps
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Deps.Users == nil || opts.Deps.Trackers == nil {
		return fmt.Errorf("httpapi: users and trackers are required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	log := opts.Deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(opts.Deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
	}()

	log.Info("http api listening", zap.String("addr", opts.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpapi: %w", err)
	}
	return nil
}
