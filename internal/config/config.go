package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/lingoflash/internal/logger"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	LogFormat          string
	PersistWorkerCount int
	PersistQueueSize   int
	SessionTTL         time.Duration
	OrderByUrgency     bool
	SessionCardLimit   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:lingoflash.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		LogFormat:          envOr("LOG_FORMAT", "text"),
		PersistWorkerCount: envIntOr("PERSIST_WORKER_COUNT", 2),
		PersistQueueSize:   envIntOr("PERSIST_QUEUE_SIZE", 64),
		SessionTTL:         time.Duration(envIntOr("SESSION_TTL_MINUTES", 120)) * time.Minute,
		OrderByUrgency:     envBoolOr("ORDER_BY_URGENCY", false),
		SessionCardLimit:   envIntOr("SESSION_CARD_LIMIT", 0),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if level, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	} else {
		c.LogLevel = level.String()
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be text or json", c.LogFormat))
	}
	if c.PersistWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("PERSIST_WORKER_COUNT must be at least 1, got %d", c.PersistWorkerCount))
	}
	if c.PersistQueueSize < 1 {
		errs = append(errs, fmt.Errorf("PERSIST_QUEUE_SIZE must be at least 1, got %d", c.PersistQueueSize))
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Errorf("SESSION_TTL_MINUTES must be at least 1, got %v", c.SessionTTL))
	}
	if c.SessionCardLimit < 0 {
		errs = append(errs, fmt.Errorf("SESSION_CARD_LIMIT cannot be negative, got %d", c.SessionCardLimit))
	}

	return errors.Join(errs...)
}

// Format returns the logger format selected by LOG_FORMAT.
func (c Config) Format() logger.Format {
	if strings.EqualFold(c.LogFormat, "json") {
		return logger.FormatJSON
	}
	return logger.FormatText
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
