package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"habit-tracker/internal/events"
)

// RedisSettings keeps per-user preferences in Redis so several bot or API
// instances share them.
type RedisSettings struct {
	rdb    *redis.Client
	notify events.Notifier
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisSettings(rdb *redis.Client, notify events.Notifier) *RedisSettings {
	if notify == nil {
		notify = events.Discard
	}
	return &RedisSettings{rdb: rdb, notify: notify}
}

// SettingKey formats the Redis key of a user setting.
func SettingKey(userID uint, key string) string {
	return fmt.Sprintf("habittracker:settings:%d:%s", userID, key)
}

func (s *RedisSettings) Get(ctx context.Context, userID uint, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, SettingKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("find", "setting", err)
	}
	return value, true, nil
}

func (s *RedisSettings) Set(ctx context.Context, userID uint, key, value string) error {
	if err := s.rdb.Set(ctx, SettingKey(userID, key), value, 0).Err(); err != nil {
		return wrap("save", "setting", err)
	}
	s.notify.Publish(events.Event{Kind: events.SettingsChanged, UserID: userID})
	return nil
}
