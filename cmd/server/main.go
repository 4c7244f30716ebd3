// Package main implements the entry point for the metagen API server,
// which extracts AI-generated metadata (descriptions, keywords, captions)
// from image and audio files.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/mfeller/metagen-api/internal/config"
	"github.com/mfeller/metagen-api/internal/platform/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up logging, the two things
// everything else depends on.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"batch_concurrency", cfg.Batch.Concurrency,
		"webhook_workers", cfg.Webhook.Workers)

	if cfg.Analyzer.GeminiAPIKey == "" {
		appLogger.Warn("no gemini API key configured, analysis requests will fail with MISSING_CONFIG")
	}
	if len(cfg.Auth.APIKeys) == 0 {
		appLogger.Warn("no API keys configured, webhook endpoint authentication is disabled")
	}

	return cfg, appLogger, nil
}
