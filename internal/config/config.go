package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	LichessBaseURL    string
	UserAgent         string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	ImportWorkerCount int
	ImportQueueSize   int
	ImportBatchSize   int
	ProfileMaxAge     time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:chessvault.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		LichessBaseURL:    envOr("LICHESS_BASE_URL", "https://lichess.org"),
		UserAgent:         envOr("USER_AGENT", "chessvault/1.0"),
		RequestTimeout:    envDurationOr("REQUEST_TIMEOUT", 2*time.Minute),
		RequestsPerSecond: envFloatOr("REQUESTS_PER_SECOND", 2),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 32),
		ImportBatchSize:   envIntOr("IMPORT_BATCH_SIZE", 50),
		ProfileMaxAge:     envDurationOr("PROFILE_MAX_AGE", 24*time.Hour),
	}
}

// Validate checks the loaded configuration, reporting every problem at once.
func (c Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.LichessBaseURL == "" {
		problems = append(problems, "LICHESS_BASE_URL cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, "LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR")
	}
	if c.RequestsPerSecond <= 0 {
		problems = append(problems, "REQUESTS_PER_SECOND must be positive")
	}
	if c.ImportWorkerCount < 1 {
		problems = append(problems, "IMPORT_WORKER_COUNT must be at least 1")
	}
	if c.ImportQueueSize < 1 {
		problems = append(problems, "IMPORT_QUEUE_SIZE must be at least 1")
	}
	if c.ImportBatchSize < 1 {
		problems = append(problems, "IMPORT_BATCH_SIZE must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
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

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
