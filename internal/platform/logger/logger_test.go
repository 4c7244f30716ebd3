package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mfeller/metagen-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		enabled    slog.Level
		disabled   slog.Level
	}{
		{"debug enables debug", "debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info disables debug", "info", slog.LevelInfo, slog.LevelDebug},
		{"warn disables info", "warn", slog.LevelWarn, slog.LevelInfo},
		{"error disables warn", "error", slog.LevelError, slog.LevelWarn},
		{"unknown falls back to info", "shouting", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := Setup(config.ServerConfig{LogLevel: tt.configured})
			require.NotNil(t, log)
			assert.True(t, log.Enabled(context.Background(), tt.enabled))
			assert.False(t, log.Enabled(context.Background(), tt.disabled))
		})
	}
}

func TestSetupSetsDefault(t *testing.T) {
	log := Setup(config.ServerConfig{LogLevel: "info"})
	assert.Equal(t, log, slog.Default())
}
