package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chessvault/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		LogLevel:          "INFO",
		LichessBaseURL:    "https://lichess.org",
		UserAgent:         "chessvault/test",
		RequestTimeout:    time.Minute,
		RequestsPerSecond: 2,
		ImportWorkerCount: 2,
		ImportQueueSize:   32,
		ImportBatchSize:   50,
		ProfileMaxAge:     24 * time.Hour,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "invalid level", level: "INVALID", wantErr: true},
		{name: "empty level", level: "", wantErr: true},
		{name: "lowercase valid level", level: "debug", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_InvalidWorkerSettings(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:          "zero import workers",
			mutate:        func(c *config.Config) { c.ImportWorkerCount = 0 },
			expectedError: "IMPORT_WORKER_COUNT",
		},
		{
			name:          "negative import workers",
			mutate:        func(c *config.Config) { c.ImportWorkerCount = -1 },
			expectedError: "IMPORT_WORKER_COUNT",
		},
		{
			name:          "zero import queue",
			mutate:        func(c *config.Config) { c.ImportQueueSize = 0 },
			expectedError: "IMPORT_QUEUE_SIZE",
		},
		{
			name:          "zero batch size",
			mutate:        func(c *config.Config) { c.ImportBatchSize = 0 },
			expectedError: "IMPORT_BATCH_SIZE",
		},
		{
			name:          "zero request rate",
			mutate:        func(c *config.Config) { c.RequestsPerSecond = 0 },
			expectedError: "REQUESTS_PER_SECOND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LICHESS_BASE_URL cannot be empty")
	assert.Contains(t, errStr, "IMPORT_WORKER_COUNT")
	assert.Contains(t, errStr, "IMPORT_QUEUE_SIZE")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("REQUEST_TIMEOUT", "30s")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("ADDR")
	os.Unsetenv("IMPORT_BATCH_SIZE")

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 50, cfg.ImportBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.ProfileMaxAge)
}
