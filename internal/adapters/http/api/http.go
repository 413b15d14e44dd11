// Package api exposes the candle service over HTTP: session issuance,
// the candle CRUD surface, the rejection side-channel, and the
// aggregate stats views.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/lumenmap/candles/internal/audit"
	"github.com/lumenmap/candles/internal/domain/aggregate"
	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/internal/session"
	"github.com/lumenmap/candles/pkg/logger"
)

// Dependencies is the narrow service contract the handlers need.
type Dependencies interface {
	// IssueSession verifies the challenge token and mints an anonymous
	// session.
	IssueSession(ctx context.Context, challengeToken, remoteIP string) (session.Identity, string, error)

	// VerifyToken authenticates a bearer token.
	VerifyToken(ctx context.Context, token string) (session.Identity, error)

	// CreateCandle stores a validated candle for the identity.
	CreateCandle(ctx context.Context, id session.Identity, candle model.Candle) (model.Candle, error)

	// ListCandles returns one insertion-ordered page.
	ListCandles(ctx context.Context, afterID string, limit int) ([]model.Candle, error)

	// DeleteCandle removes the identity's own candle.
	DeleteCandle(ctx context.Context, candleID string, id session.Identity) error

	// ReportRejection feeds the best-effort audit side-channel.
	ReportRejection(ctx context.Context, r audit.Rejection)

	// Aggregate views over the full collection.
	StatsParents(ctx context.Context) ([]aggregate.Count, error)
	StatsBreakdown(ctx context.Context) ([]aggregate.ParentSlice, error)
	StatsDayparts(ctx context.Context) ([]aggregate.DaypartBucket, error)
	StatsWeekdays(ctx context.Context) (aggregate.WeekdayMatrix, error)

	// CandleCount for the service stats endpoint.
	CandleCount(ctx context.Context) (int, error)
}

// Server hosts the HTTP API.
type Server struct {
	deps     Dependencies
	srv      *http.Server
	validate *validator.Validate
	log      logger.Logger

	addr        string
	pageSize    int
	maxPageSize int
	rateLimit   int
	rateWindow  time.Duration
	origins     []string
}

// New builds a Server; Start runs it.
func New(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:        deps,
		validate:    validator.New(),
		log:         logger.Named("api"),
		addr:        ":9080",
		pageSize:    500,
		maxPageSize: 1000,
		rateLimit:   5,
		rateWindow:  time.Minute,
		origins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/session", s.handleIssueSession)
	r.Post("/rejections", s.handleLogRejection)

	r.Route("/candles", func(r chi.Router) {
		r.Get("/", s.handleListCandles)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.With(s.createRateLimiter()).Post("/", s.handleCreateCandle)
			r.Delete("/{id}", s.handleDeleteCandle)
		})
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/", s.handleServiceStats)
		r.Get("/parents", s.handleStatsParents)
		r.Get("/breakdown", s.handleStatsBreakdown)
		r.Get("/dayparts", s.handleStatsDayparts)
		r.Get("/weekdays", s.handleStatsWeekdays)
	})

	return r
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until the listener fails or Shutdown runs.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info(ctx, "http server starting", logger.String("addr", s.addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}
