package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StorageBolt     = "bolt"
	StoragePostgres = "postgres"
)

// Session stores.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Port      string
	DataDir   string
	PublicDir string
	Timezone  string

	StorageDriver string
	BoltPath      string
	DatabaseURL   string

	SessionStore  string
	SessionTTL    time.Duration
	CookieSecure  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TelegramToken       string
	AlertTelegramChatID int64
	SMSLogPath          string
	DeliveryTimeout     time.Duration

	CronSpecDailySweep string

	LogLevel    string
	Environment string
}

// CredentialsPath is the admin credential file inside DataDir.
func (c *AppConfig) CredentialsPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

// TelegramEnabled reports whether the bot should be started.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.Port = getenv("PORT", "10000")
	if _, err = strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.DataDir = getenv("DATA_DIR", "data")
	cfg.PublicDir = getenv("PUBLIC_DIR", "public")
	cfg.Timezone = getenv("TIMEZONE", "Asia/Manila")
	if _, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(getenv("STORAGE_DRIVER", StorageFile))
	switch cfg.StorageDriver {
	case StorageFile, StorageBolt:
	case StoragePostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	cfg.BoltPath = getenv("BOLT_PATH", filepath.Join(cfg.DataDir, "panel.db"))

	cfg.SessionStore = strings.ToLower(getenv("SESSION_STORE", SessionMemory))
	switch cfg.SessionStore {
	case SessionMemory:
	case SessionRedis:
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is not set")
		}
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			if cfg.RedisDB, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE %q", cfg.SessionStore)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getenv("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if raw := os.Getenv("COOKIE_SECURE"); raw != "" {
		if cfg.CookieSecure, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
		}
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		chatIDStr := os.Getenv("ALERT_TELEGRAM_CHAT_ID")
		if chatIDStr == "" {
			return nil, fmt.Errorf("ALERT_TELEGRAM_CHAT_ID is not set")
		}
		cfg.AlertTelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_TELEGRAM_CHAT_ID: %w", err)
		}
	}
	cfg.SMSLogPath = getenv("SMS_LOG_PATH", filepath.Join(cfg.DataDir, "sms.log"))
	if cfg.DeliveryTimeout, err = time.ParseDuration(getenv("DELIVERY_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_TIMEOUT: %w", err)
	}

	cfg.CronSpecDailySweep = getenv("CRON_SPEC_DAILY_SWEEP", "0 8 * * *") // 08:00 in TIMEZONE

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
