package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
	"habit-tracker/internal/tracking"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.2.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "habittracker 1.2.0")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built: 2026-01-01")
}

func TestRootCmdRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"bot", "serve", "stats", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func writeConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_URL", "REDIS_ADDR", "TIMEZONE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "habits.db")
	configPath = filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf("database:\n  driver: sqlite\n  dsn: %s\ntimezone: UTC\nlog:\n  level: error\n", dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(data), 0o600))
	return configPath, dbPath
}

func TestStatsCmd(t *testing.T) {
	configPath, dbPath := writeConfig(t)
	ctx := context.Background()
	cal := tracking.NewCalendar(time.UTC)

	db, err := repository.NewDB(repository.DriverSQLite, dbPath, nil)
	require.NoError(t, err)
	users := repository.NewUserRepository(db)
	user, err := users.UpsertFromTelegram(ctx, 555, "Ada", "", "ada")
	require.NoError(t, err)

	trackers := service.NewTrackerService(
		repository.NewTrackerRepository(db, nil),
		repository.NewRecordRepository(db, cal, nil),
		repository.NewCategoryRepository(db, nil),
		cal, nil,
	)
	tr, err := trackers.Create(ctx, user.ID, service.TrackerInput{
		Kind:     model.KindHabit,
		Title:    "Run",
		Schedule: model.EveryDay(),
	})
	require.NoError(t, err)
	_, err = trackers.Toggle(ctx, user.ID, tr.ID, time.Now())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out, err := run(t, "--config", configPath, "stats", "--telegram-id", "555")
	require.NoError(t, err)
	assert.Contains(t, out, "Лучший период: 1")
	assert.Contains(t, out, "Трекеров завершено: 1")

	_, err = run(t, "--config", configPath, "stats", "--telegram-id", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "999")
}

func TestStatsCmdRequiresTelegramID(t *testing.T) {
	configPath, _ := writeConfig(t)
	_, err := run(t, "--config", configPath, "stats")
	assert.Error(t, err)
}

func TestBotCmdRequiresToken(t *testing.T) {
	configPath, _ := writeConfig(t)
	t.Setenv("TELEGRAM_TOKEN", "")
	_, err := run(t, "--config", configPath, "bot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}
