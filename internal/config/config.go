package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const defaultDatabaseURL = "study_planner.db?_foreign_keys=on&_busy_timeout=5000"

// Config keeps runtime settings for the API, the bot and the scheduler.
type Config struct {
	DatabaseURL       string        `env:"DATABASE_URL" envDefault:"study_planner.db?_foreign_keys=on&_busy_timeout=5000"`
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	TelegramToken     string        `env:"TELEGRAM_TOKEN"`
	ReportInterval    time.Duration `env:"REPORT_INTERVAL" envDefault:"5h"`
	ReportAt          string        `env:"REPORT_AT"`
	ReconcileSchedule string        `env:"RECONCILE_SCHEDULE" envDefault:"0 30 3 * * *"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	RateLimitRPS      int           `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"40"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the environment, after applying a local .env file if one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.ReconcileSchedule = strings.TrimSpace(cfg.ReconcileSchedule)
	cfg.ReportAt = strings.TrimSpace(cfg.ReportAt)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.ReportInterval < 0 {
		return cfg, fmt.Errorf("REPORT_INTERVAL must not be negative")
	}
	if cfg.RateLimitRPS <= 0 {
		return cfg, fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst < cfg.RateLimitRPS {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg, nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}
