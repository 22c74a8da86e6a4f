package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"habit-tracker/internal/config"
	"habit-tracker/internal/events"
	"habit-tracker/internal/httpapi"
	"habit-tracker/internal/logging"
	"habit-tracker/internal/metrics"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	rdb *redis.Client
	cal tracking.Calendar

	users      *repository.UserRepository
	snapshots  *repository.SnapshotRepository
	settings   service.SettingsStore
	bus        *events.Bus
	trackers   *service.TrackerService
	categories *service.CategoryService
	stats      *service.StatisticsService
	reminders  *service.ReminderService

	unsubscribe func()
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	a := &app{
		cfg: cfg,
		log: log,
		db:  db,
		cal: tracking.NewCalendar(loc),
		bus: events.NewBus(),
	}
	a.unsubscribe = metrics.SubscribeStoreChanges(a.bus)

	trackerRepo := repository.NewTrackerRepository(db, a.bus)
	recordRepo := repository.NewRecordRepository(db, a.cal, a.bus)
	categoryRepo := repository.NewCategoryRepository(db, a.bus)
	a.users = repository.NewUserRepository(db)
	a.snapshots = repository.NewSnapshotRepository(db)
	a.settings = repository.NewSettingsRepository(db, a.bus)

	if cfg.Redis.Addr != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.rdb = rdb
		a.settings = repository.NewRedisSettings(rdb, a.bus)
		log.Info("settings stored in redis", zap.String("addr", cfg.Redis.Addr))
	}

	a.trackers = service.NewTrackerService(trackerRepo, recordRepo, categoryRepo, a.cal, log)
	a.categories = service.NewCategoryService(categoryRepo)
	a.stats = service.NewStatisticsService(a.snapshots, a.cal)
	a.reminders = service.NewReminderService(a.snapshots, a.cal)

	log.Info("storage ready",
		zap.String("driver", cfg.Database.Driver),
		zap.String("timezone", loc.String()),
	)
	return a, nil
}

func (a *app) boardDeps() service.BoardDeps {
	return service.BoardDeps{
		Snapshots: a.snapshots,
		Trackers:  a.trackers,
		Settings:  a.settings,
		Events:    a.bus,
		Calendar:  a.cal,
		Log:       a.log,
	}
}

func (a *app) httpDeps() httpapi.Deps {
	return httpapi.Deps{
		Users:      a.users,
		Board:      a.boardDeps(),
		Trackers:   a.trackers,
		Categories: a.categories,
		Stats:      a.stats,
		Calendar:   a.cal,
		APIToken:   a.cfg.HTTP.APIToken,
		Log:        a.log,
	}
}

// Close releases connections. Safe to call on a partially built app.
func (a *app) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}
