// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorePath is the on-disk directory for the candle store. Empty
	// selects the in-memory store.
	StorePath string `koanf:"store_path"`

	// SessionSecret signs anonymous session tokens. Empty generates an
	// ephemeral secret at startup (sessions do not survive restarts).
	SessionSecret string `koanf:"session_secret"`

	// SessionTTLHours bounds anonymous session lifetime.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// ChallengeSecret and ChallengeVerifyURL configure the
	// human-verification check on session issuance. Empty secret
	// disables verification.
	ChallengeSecret    string `koanf:"challenge_secret"`
	ChallengeVerifyURL string `koanf:"challenge_verify_url"`

	// RateLimitRequests allows this many candle creations per session
	// (or IP) per RateLimitWindowSeconds.
	RateLimitRequests      int `koanf:"rate_limit_requests"`
	RateLimitWindowSeconds int `koanf:"rate_limit_window_seconds"`

	// AuditQueueSize bounds the in-memory rejection audit queue.
	AuditQueueSize int `koanf:"audit_queue_size"`

	// PageSize is the fixed page size for candle listing; MaxPageSize
	// caps GET /candles?limit.
	PageSize    int `koanf:"page_size"`
	MaxPageSize int `koanf:"max_page_size"`

	// AllowedOrigins configures CORS for browser clients.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		StorePath:              "",
		SessionSecret:          "",
		SessionTTLHours:        720,
		ChallengeSecret:        "",
		ChallengeVerifyURL:     "",
		RateLimitRequests:      5,
		RateLimitWindowSeconds: 60,
		AuditQueueSize:         1024,
		PageSize:               500,
		MaxPageSize:            1000,
		AllowedOrigins:         []string{"*"},
	}
	return c
}
