// Package config loads runtime settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the bot and the HTTP API.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Redis    RedisConfig    `yaml:"redis"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
	Timezone string         `yaml:"timezone"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

// DatabaseConfig selects the gorm driver: "sqlite" (DSN is a file path) or "mysql".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// APIToken, when set, is required as a bearer token on /api routes.
	APIToken string `yaml:"api_token"`
}

// RedisConfig is optional. With an address set, user settings live in Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ReportConfig schedules the daily summary. DailyAt is "HH:MM"; IntervalHours
// adds a periodic summary. Either may be empty/zero.
type ReportConfig struct {
	DailyAt       string `yaml:"daily_at"`
	IntervalHours int    `yaml:"interval_hours"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ReportInterval returns the periodic summary interval, 0 when disabled.
func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.Report.IntervalHours) * time.Hour
}

// Location resolves Timezone; empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RequireTelegram fails when no bot token is configured.
func (c Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("config: TELEGRAM_TOKEN is required")
	}
	return nil
}

// Load reads path (skipped when empty), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = raw
	}
	return parse(data, os.Getenv)
}

// Parse unmarshals YAML bytes into a validated Config, ignoring the environment.
func Parse(data []byte) (*Config, error) {
	return parse(data, func(string) string { return "" })
}

func parse(data []byte, getenv func(string) string) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("TELEGRAM_TOKEN", &c.Telegram.Token)
	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.DSN)
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("API_TOKEN", &c.HTTP.APIToken)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("TIMEZONE", &c.Timezone)
	str("LOG_LEVEL", &c.Log.Level)
	str("REPORT_DAILY_AT", &c.Report.DailyAt)

	if v := strings.TrimSpace(getenv("REPORT_INTERVAL_HOURS")); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: REPORT_INTERVAL_HOURS: %w", err)
		}
		c.Report.IntervalHours = hours
	}
	return nil
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "habit_tracker.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Report.DailyAt == "" && c.Report.IntervalHours == 0 {
		c.Report.DailyAt = "09:00"
	}
}

// validate checks that all fields are consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite":
	case "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, "database.dsn is required for mysql")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Report.IntervalHours < 0 {
		errs = append(errs, "report.interval_hours must not be negative")
	}
	if c.Redis.DB < 0 {
		errs = append(errs, "redis.db must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
