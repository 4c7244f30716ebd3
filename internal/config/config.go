package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" validate:"required"`
	Batch    BatchConfig    `mapstructure:"batch"    validate:"required"`
	Webhook  WebhookConfig  `mapstructure:"webhook"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"            validate:"required,gt=0,lt=65536"`
	LogLevel       string   `mapstructure:"log_level"       validate:"required,oneof=debug info warn error"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig contains webhook authentication settings. Keys are compared
// against the X-API-Key request header; there are no user accounts.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// AnalyzerConfig contains all settings for the upstream AI analyzer.
type AnalyzerConfig struct {
	// GeminiAPIKey may be empty: the server still starts and serves
	// health checks, and analysis requests fail with MISSING_CONFIG
	// until a key is provided.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// Retry policy for transient upstream failures (429/503).
	MaxAttempts int           `mapstructure:"max_attempts"  validate:"required,gte=1"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"   validate:"required"`
}

// BatchConfig bounds the synchronous batch endpoint.
type BatchConfig struct {
	// Concurrency caps simultaneously in-flight upstream calls. It exists
	// to avoid tripping the upstream's own rate limiting.
	Concurrency int `mapstructure:"concurrency" validate:"required,gte=1"`
}

// WebhookConfig contains asynchronous job processing settings.
type WebhookConfig struct {
	QueueSize       int           `mapstructure:"queue_size"       validate:"required,gte=1"`
	Workers         int           `mapstructure:"workers"          validate:"required,gte=1"`
	FileSLA         time.Duration `mapstructure:"file_sla"         validate:"required"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout" validate:"required"`
	MaxDownloadSize int64         `mapstructure:"max_download_size" validate:"required,gt=0"`
	CallbackTimeout time.Duration `mapstructure:"callback_timeout" validate:"required"`

	// RatePerSecond and RateBurst configure the per-client token bucket
	// guarding the webhook endpoint. Zero disables rate limiting.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	RateBurst     int     `mapstructure:"rate_burst"`
}
