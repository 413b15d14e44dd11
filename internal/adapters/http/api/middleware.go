package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/lumenmap/candles/internal/session"
	"github.com/lumenmap/candles/pkg/logger"
	"github.com/lumenmap/candles/pkg/metrics"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFrom pulls the authenticated identity from the request
// context; zero Identity when the route is unauthenticated.
func identityFrom(ctx context.Context) session.Identity {
	id, _ := ctx.Value(identityKey).(session.Identity)
	return id
}

// authMiddleware authenticates the bearer token and threads the
// identity through the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}

		id, err := s.deps.VerifyToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid session token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// createRateLimiter limits candle creation per session subject,
// falling back to client IP when no identity is present. Refusals
// carry the rate_limited code so clients can classify them.
func (s *Server) createRateLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		s.rateLimit,
		s.rateWindow,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if id := identityFrom(r.Context()); id.UserID != "" {
				return id.UserID, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			metrics.RecordRateLimitRejection()
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many candles, slow down")
		}),
	)
}

// metricsMiddleware records request counts and latency per endpoint.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.Status())
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0
		metrics.RecordHTTPRequest(r.URL.Path, r.Method, status)
		metrics.RecordHTTPRequestDuration(r.URL.Path, r.Method, status, elapsed)

		s.log.Debug(r.Context(), "request served",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("status", status),
			logger.Float64("ms", elapsed))
	})
}
