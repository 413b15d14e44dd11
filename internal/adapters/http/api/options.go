package api

import (
	"time"
)

// Option configures the Server at construction.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithPageSizes sets the default and maximum listing page sizes.
func WithPageSizes(def, max int) Option {
	return func(s *Server) {
		if def > 0 {
			s.pageSize = def
		}
		if max >= s.pageSize {
			s.maxPageSize = max
		}
	}
}

// WithRateLimit allows n candle creations per window per session.
func WithRateLimit(n int, window time.Duration) Option {
	return func(s *Server) {
		if n > 0 {
			s.rateLimit = n
		}
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithAllowedOrigins sets the CORS allowlist.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}
