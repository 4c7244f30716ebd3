package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mfeller/metagen-api/internal/api"
	apiMiddleware "github.com/mfeller/metagen-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", apiMiddleware.APIKeyHeader, apiMiddleware.CorrelationHeader},
		MaxAge:         300,
	}))

	mediaHandler := api.NewMediaHandler(app.mediaService, app.dispatcher, app.logger)
	webhookHandler := api.NewWebhookHandler(app.jobRunner)
	healthHandler := api.NewHealthHandler(version, app.config.Analyzer.GeminiAPIKey != "")

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.config.Auth.APIKeys)
	rateLimiter := apiMiddleware.NewRateLimiter(
		app.config.Webhook.RatePerSecond,
		app.config.Webhook.RateBurst,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Synchronous analysis endpoints
		r.Post("/analyze/batch", mediaHandler.AnalyzeBatch)
		r.Post("/analyze/image", mediaHandler.AnalyzeImage)
		r.Post("/analyze/audio", mediaHandler.AnalyzeAudio)

		// Asynchronous analysis, guarded by API key and rate limit
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimiter.Limit)
			r.Post("/webhook/analyze", webhookHandler.Submit)
		})
	})

	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Ready)

	return r
}
