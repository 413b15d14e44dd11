package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if CANDLES_CONFIG is set
//  3. env (prefix CANDLES_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("CANDLES_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CANDLES_ADDR, CANDLES_PAGE_SIZE, ...
	// Map env keys like CANDLES_PAGE_SIZE -> page_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CANDLES_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "candles_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	}
	if c.MaxPageSize < c.PageSize {
		return fmt.Errorf("%w: max_page_size must be >= page_size", ErrInvalidConfig)
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindowSeconds <= 0 {
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("%w: session_ttl_hours must be positive", ErrInvalidConfig)
	}
	if c.AuditQueueSize <= 0 {
		return fmt.Errorf("%w: audit_queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
