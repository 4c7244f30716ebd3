package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/mfeller/metagen-api/internal/analysis"
	"github.com/mfeller/metagen-api/internal/config"
	"github.com/mfeller/metagen-api/internal/domain"
)

// Prompts instruct the model to answer as strict JSON in German, matching
// the metadata language the service has always produced.
const (
	imagePrompt = `Analysiere dieses Bild und liefere strukturierte Metadaten auf Deutsch.
Antworte ausschliesslich mit einem JSON-Objekt der Form:
{"description": "...", "keywords": ["...", "..."], "caption": "..."}
description: ausfuehrliche Beschreibung des Bildinhalts.
keywords: 5 bis 15 praegnante Schlagwoerter.
caption: eine kurze Bildunterschrift in einem Satz.`

	audioPrompt = `Analysiere diese Audiodatei und liefere strukturierte Metadaten auf Deutsch.
Antworte ausschliesslich mit einem JSON-Objekt der Form:
{"description": "...", "keywords": ["...", "..."], "summary": "..."}
description: ausfuehrliche Beschreibung des Audioinhalts.
keywords: 5 bis 15 praegnante Schlagwoerter.
summary: eine Zusammenfassung in einem Satz.`
)

// generateFunc issues one upstream generate call. Production builds a
// fresh client per invocation; tests substitute a fake.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error)

// Analyzer implements analysis.Analyzer against the Gemini API.
type Analyzer struct {
	logger   *slog.Logger
	cfg      config.AnalyzerConfig
	policy   analysis.RetryPolicy
	sleeper  analysis.Sleeper
	generate generateFunc
}

// Option customizes an Analyzer. Used by tests to make retries
// deterministic and to stub the upstream call.
type Option func(*Analyzer)

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p analysis.RetryPolicy) Option {
	return func(a *Analyzer) { a.policy = p }
}

// WithSleeper overrides the backoff sleeper.
func WithSleeper(s analysis.Sleeper) Option {
	return func(a *Analyzer) { a.sleeper = s }
}

// WithGenerateFunc overrides the upstream call itself.
func WithGenerateFunc(fn generateFunc) Option {
	return func(a *Analyzer) { a.generate = fn }
}

// New creates an Analyzer. Configuration is validated here once; a
// missing API key or model name fails construction and is never retried.
func New(logger *slog.Logger, cfg config.AnalyzerConfig, opts ...Option) (*Analyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", analysis.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", analysis.ErrInvalidConfig)
	}

	policy := analysis.DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.RetryDelay > 0 {
		policy.BaseDelay = cfg.RetryDelay
	}

	a := &Analyzer{
		logger:  logger,
		cfg:     cfg,
		policy:  policy,
		sleeper: analysis.ClockSleeper{},
	}
	a.generate = a.generateOnce

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// AnalyzeImage analyzes one image and returns normalized metadata.
func (a *Analyzer) AnalyzeImage(ctx context.Context, payload []byte, mimeType string) (*domain.ImageAnalysis, error) {
	text, err := a.callWithRetry(ctx, payload, mimeType, imagePrompt)
	if err != nil {
		return nil, err
	}
	return normalizeImage(text)
}

// AnalyzeAudio analyzes one audio file and returns normalized metadata.
func (a *Analyzer) AnalyzeAudio(ctx context.Context, payload []byte, mimeType string) (*domain.AudioAnalysis, error) {
	text, err := a.callWithRetry(ctx, payload, mimeType, audioPrompt)
	if err != nil {
		return nil, err
	}
	return normalizeAudio(text)
}

// generateOnce builds a client scoped to this single call and issues the
// request. Not sharing a client across concurrent calls avoids
// cross-request interference under load.
func (a *Analyzer) generateOnce(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
}

// callWithRetry submits the file for analysis, retrying transient
// upstream failures per the configured policy, and returns the raw
// response text.
func (a *Analyzer) callWithRetry(ctx context.Context, payload []byte, mimeType, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: payload}},
			{Text: prompt},
		},
	}}

	var lastErr error

	for attempt := 0; attempt < a.policy.MaxAttempts; attempt++ {
		a.logger.DebugContext(ctx, "calling analysis upstream",
			"model", a.cfg.ModelName,
			"attempt", attempt+1,
			"max_attempts", a.policy.MaxAttempts)

		resp, err := a.generate(ctx, a.cfg.ModelName, contents)
		if err == nil {
			text := resp.Text()
			if text == "" {
				return "", fmt.Errorf("%w: %s: upstream returned an empty result",
					analysis.ErrInvalidResponse, domain.ErrCodeEmptyResult)
			}
			a.logger.InfoContext(ctx, "analysis upstream call successful", "attempt", attempt+1)
			return text, nil
		}

		status, transient := classify(err)
		if !transient {
			a.logger.ErrorContext(ctx, "non-retryable upstream error",
				"status", status,
				"error", err)
			return "", fmt.Errorf("%w: UPSTREAM_HTTP_%d: %v", analysis.ErrService, status, err)
		}

		lastErr = err
		if attempt == a.policy.MaxAttempts-1 {
			break
		}

		delay := a.policy.Delay(attempt)
		a.logger.WarnContext(ctx, "transient upstream error, retrying",
			"status", status,
			"attempt", attempt+1,
			"delay", delay)

		if err := a.sleeper.Sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: cancelled during retry backoff: %v", analysis.ErrTransient, err)
		}
	}

	a.logger.WarnContext(ctx, "maximum retry attempts reached", "max_attempts", a.policy.MaxAttempts)
	return "", fmt.Errorf("%w: %s: failed after %d attempts: %v",
		analysis.ErrTransient, domain.ErrCodeMaxRetriesExceeded, a.policy.MaxAttempts, lastErr)
}

// classify returns the upstream HTTP status and whether the error is a
// known-recoverable condition. Only rate limiting (429) and temporary
// unavailability (503) are transient; everything else is fatal.
func classify(err error) (status int, transient bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Code == 429 || apiErr.Code == 503
	}
	return 0, false
}
