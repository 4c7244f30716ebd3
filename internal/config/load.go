package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml and from
// environment variables with the METAGEN_ prefix. Environment variables
// take precedence over file values. Returns a populated Config or an
// error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("METAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Empty defaults register the keys so AutomaticEnv can populate them
	// during Unmarshal. Both may legitimately stay empty: a missing API
	// key degrades analysis endpoints, missing auth keys disable auth.
	v.SetDefault("analyzer.gemini_api_key", "")
	v.SetDefault("auth.api_keys", []string{})

	v.SetDefault("analyzer.model_name", "gemini-2.5-flash")
	v.SetDefault("analyzer.max_attempts", 3)
	v.SetDefault("analyzer.retry_delay", time.Second)

	v.SetDefault("batch.concurrency", 5)

	v.SetDefault("webhook.queue_size", 100)
	v.SetDefault("webhook.workers", 2)
	v.SetDefault("webhook.file_sla", 15*time.Minute)
	v.SetDefault("webhook.download_timeout", 60*time.Second)
	v.SetDefault("webhook.max_download_size", int64(200*1024*1024))
	v.SetDefault("webhook.callback_timeout", 30*time.Second)
	v.SetDefault("webhook.rate_per_second", float64(5))
	v.SetDefault("webhook.rate_burst", 10)
}
