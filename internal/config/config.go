// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and MEDALCAST_ env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// AthleteArtifact and CountryArtifact are paths to the model bundles.
	AthleteArtifact string `koanf:"athlete_artifact"`
	CountryArtifact string `koanf:"country_artifact"`

	// Model version strings reported in responses when the bundle has none.
	AthleteModelVersion string `koanf:"athlete_model_version"`
	CountryModelVersion string `koanf:"country_model_version"`

	// AllowedOrigins is the CORS allow list. Env form is comma separated.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RequestTimeoutMS bounds handler execution.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxBodyBytes caps prediction request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// HTTP server timeouts.
	ReadTimeoutMS  int `koanf:"read_timeout_ms"`
	WriteTimeoutMS int `koanf:"write_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		AthleteArtifact:     "models/athlete_medal_model.json",
		CountryArtifact:     "models/country_medal_model.json",
		AthleteModelVersion: "xgboost-athlete-2026",
		CountryModelVersion: "xgboost-country-2026",
		AllowedOrigins:      []string{"http://localhost:8501", "http://127.0.0.1:8501", "*"},
		RequestTimeoutMS:    10_000,
		MaxBodyBytes:        64 << 10,
		ReadTimeoutMS:       10_000,
		WriteTimeoutMS:      15_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.AthleteArtifact) == "":
		return fmt.Errorf("%w: athlete_artifact must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.CountryArtifact) == "":
		return fmt.Errorf("%w: country_artifact must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
