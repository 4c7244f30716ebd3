package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing and returns a
// cleanup function restoring the previous values.
func setupEnv(t *testing.T, envVars map[string]string) func() {
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	for name, value := range envVars {
		require.NoError(t, os.Setenv(name, value), "Failed to set environment variable %s", name)
	}

	return func() {
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"METAGEN_ANALYZER_GEMINI_API_KEY": "test-api-key",
		"METAGEN_SERVER_PORT":             "",
		"METAGEN_SERVER_LOG_LEVEL":        "",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 5, cfg.Batch.Concurrency)
	assert.Equal(t, 3, cfg.Analyzer.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Analyzer.RetryDelay)
	assert.Equal(t, 15*time.Minute, cfg.Webhook.FileSLA)
	assert.Equal(t, int64(200*1024*1024), cfg.Webhook.MaxDownloadSize)
}

func TestLoadFromEnv(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"METAGEN_ANALYZER_GEMINI_API_KEY": "test-api-key",
		"METAGEN_SERVER_PORT":             "9090",
		"METAGEN_SERVER_LOG_LEVEL":        "debug",
		"METAGEN_BATCH_CONCURRENCY":       "3",
		"METAGEN_WEBHOOK_WORKERS":         "4",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.Equal(t, 4, cfg.Webhook.Workers)
}

func TestLoadMissingAPIKeyStillLoads(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"METAGEN_ANALYZER_GEMINI_API_KEY": "",
	})
	defer cleanup()

	// The server starts without upstream credentials; analysis requests
	// report the missing configuration instead.
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Analyzer.GeminiAPIKey)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"METAGEN_ANALYZER_GEMINI_API_KEY": "test-api-key",
		"METAGEN_SERVER_LOG_LEVEL":        "loud",
	})
	defer cleanup()

	_, err := Load()
	require.Error(t, err)
}
