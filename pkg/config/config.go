package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/security"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Database
	DatabaseURL       string
	DatabaseDriver    string
	DatabaseMaxConns  int
	SQLitePath        string
	SQLiteBusyTimeout time.Duration

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Ranking
	WeightsFile string
	Strategy    string
	FocusTick   time.Duration

	// Reminders
	ReminderPollInterval   time.Duration
	ReminderDefaultMinutes int
	ReminderKeyPrefix      string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Document store circuit breaker
	StoreBreakerEnabled  bool
	StoreBreakerFailures int
	StoreBreakerTimeout  time.Duration
	StoreBreakerHalfOpen int
	StoreBreakerInterval time.Duration

	// Worker
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("NUDGE_LOG_LEVEL", getEnv("LOG_LEVEL", "info")),
		LogFormat: getEnv("NUDGE_LOG_FORMAT", "text"),
		UserID:    getEnv("NUDGE_USER_ID", "local"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:  getIntEnv("DATABASE_MAX_CONNS", 10),
		SQLitePath:        getEnv("SQLITE_PATH", ""),
		SQLiteBusyTimeout: getDurationEnv("SQLITE_BUSY_TIMEOUT", 5*time.Second),
		RedisURL:          getEnv("REDIS_URL", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),

		WeightsFile: getEnv("NUDGE_WEIGHTS_FILE", ""),
		Strategy:    strings.ToLower(getEnv("NUDGE_STRATEGY", "analytical")),
		FocusTick:   getDurationEnv("NUDGE_FOCUS_TICK", time.Minute),

		ReminderPollInterval:   getDurationEnv("REMINDER_POLL_INTERVAL", 15*time.Second),
		ReminderDefaultMinutes: getIntEnv("REMINDER_DEFAULT_MINUTES", 15),
		ReminderKeyPrefix:      getEnv("REMINDER_KEY_PREFIX", "nudge:reminders"),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 7),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		StoreBreakerEnabled:  getBoolEnv("STORE_BREAKER_ENABLED", true),
		StoreBreakerFailures: getIntEnv("STORE_BREAKER_FAILURES", 5),
		StoreBreakerTimeout:  getDurationEnv("STORE_BREAKER_TIMEOUT", 30*time.Second),
		StoreBreakerHalfOpen: getIntEnv("STORE_BREAKER_HALF_OPEN", 1),
		StoreBreakerInterval: getDurationEnv("STORE_BREAKER_INTERVAL", time.Minute),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}
	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", detectDriver(cfg.DatabaseURL))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	switch c.Strategy {
	case "analytical", "display":
	default:
		return fmt.Errorf("unknown NUDGE_STRATEGY %q", c.Strategy)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("NUDGE_USER_ID must not be empty")
	}
	if c.DatabaseMaxConns < 0 {
		return fmt.Errorf("DATABASE_MAX_CONNS must not be negative")
	}
	if c.ReminderDefaultMinutes <= 0 {
		return fmt.Errorf("REMINDER_DEFAULT_MINUTES must be positive")
	}
	if c.WeightsFile != "" {
		if _, err := security.CleanPath(c.WeightsFile); err != nil {
			return fmt.Errorf("NUDGE_WEIGHTS_FILE: %w", err)
		}
	}
	if c.SQLitePath != "" && c.SQLitePath != ":memory:" {
		if _, err := security.CleanPath(c.SQLitePath); err != nil {
			return fmt.Errorf("SQLITE_PATH: %w", err)
		}
	}
	return nil
}

// LocalMode reports whether data lives in a local SQLite file.
func (c *Config) LocalMode() bool {
	return c.DatabaseDriver == "sqlite"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// detectDriver mirrors database.DetectDriver without importing internal code.
func detectDriver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
