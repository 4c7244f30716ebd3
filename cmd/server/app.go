package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mfeller/metagen-api/internal/analysis"
	"github.com/mfeller/metagen-api/internal/callback"
	"github.com/mfeller/metagen-api/internal/config"
	"github.com/mfeller/metagen-api/internal/dispatch"
	"github.com/mfeller/metagen-api/internal/job"
	"github.com/mfeller/metagen-api/internal/platform/gemini"
	"github.com/mfeller/metagen-api/internal/service"
)

// application holds the initialized dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	analyzer     analysis.Analyzer
	mediaService service.MediaService
	dispatcher   *dispatch.Dispatcher
	jobRunner    *job.Runner
}

// newApplication wires all application components. The job runner's
// worker pool is started here; Run only adds the HTTP listener on top.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	analyzer, err := gemini.New(logger.With("component", "analyzer"), cfg.Analyzer)
	switch {
	case err == nil:
		app.analyzer = analyzer
	case errors.Is(err, analysis.ErrInvalidConfig):
		// Start degraded rather than not at all: health stays useful and
		// requests report the missing configuration.
		logger.Warn("analyzer not configured, starting degraded", "error", err)
		app.analyzer = analysis.Unconfigured()
	default:
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	app.mediaService, err = service.NewMediaService(app.analyzer, logger.With("component", "media_service"))
	if err != nil {
		return nil, fmt.Errorf("failed to create media service: %w", err)
	}

	app.dispatcher = dispatch.New(
		app.mediaService.ProcessFile,
		cfg.Batch.Concurrency,
		logger.With("component", "dispatcher"),
	)

	deliverer := callback.NewDeliverer(
		cfg.Webhook.CallbackTimeout,
		logger.With("component", "callback"),
	)
	downloader := job.NewDownloader(cfg.Webhook.DownloadTimeout, cfg.Webhook.MaxDownloadSize)

	app.jobRunner = job.NewRunner(
		app.mediaService,
		downloader,
		deliverer,
		cfg.Webhook,
		cfg.Batch.Concurrency,
		logger.With("component", "job_runner"),
	)
	app.jobRunner.Start()

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of background resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}
	app.logger.Info("application shutdown completed")
}
