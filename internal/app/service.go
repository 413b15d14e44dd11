// Package app wires the candle service together: store, taxonomy,
// sessions, audit, and the HTTP surface.
package app

import (
	"context"
	"time"

	"github.com/lumenmap/candles/internal/adapters/http/api"
	"github.com/lumenmap/candles/internal/adapters/repository"
	"github.com/lumenmap/candles/internal/audit"
	"github.com/lumenmap/candles/internal/config"
	"github.com/lumenmap/candles/internal/domain/aggregate"
	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/internal/session"
	"github.com/lumenmap/candles/pkg/errs"
	"github.com/lumenmap/candles/pkg/logger"
)

// Service owns every component and implements the API's Dependencies.
type Service struct {
	cfg      *config.Config
	store    repository.Store
	resolver *emotion.Resolver
	issuer   *session.Issuer
	verifier session.ChallengeVerifier
	audit    *audit.Dispatcher
	server   *api.Server
	log      logger.Logger
}

// Option overrides a component before wiring completes.
type Option func(*Service)

// WithStore overrides the candle store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithChallengeVerifier overrides the session challenge check.
func WithChallengeVerifier(v session.ChallengeVerifier) Option {
	return func(s *Service) {
		if v != nil {
			s.verifier = v
		}
	}
}

// WithIssuer overrides the session issuer.
func WithIssuer(issuer *session.Issuer) Option {
	return func(s *Service) {
		if issuer != nil {
			s.issuer = issuer
		}
	}
}

// New builds the service from configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	taxonomy := emotion.Default()
	if err := taxonomy.Validate(); err != nil {
		return nil, errs.Wrap("app.new", err)
	}

	s := &Service{
		cfg:      cfg,
		resolver: emotion.NewResolver(taxonomy),
		issuer: session.NewIssuer(cfg.SessionSecret,
			session.WithTTL(time.Duration(cfg.SessionTTLHours)*time.Hour)),
		verifier: session.PermissiveVerifier{},
		audit:    audit.NewDispatcher(audit.WithQueueSize(cfg.AuditQueueSize)),
		log:      logger.Named("app"),
	}
	if cfg.ChallengeSecret != "" && cfg.ChallengeVerifyURL != "" {
		s.verifier = session.NewHTTPVerifier(cfg.ChallengeVerifyURL, cfg.ChallengeSecret)
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		if cfg.StorePath != "" {
			store, err := repository.NewBadgerStore(repository.WithPath(cfg.StorePath))
			if err != nil {
				return nil, errs.Wrap("app.new", err)
			}
			s.store = store
		} else {
			s.log.Warn(ctx, "no store path configured, candles will not survive restarts")
			s.store = repository.NewMemoryStore()
		}
	}

	s.server = api.New(s,
		api.WithAddr(cfg.Addr),
		api.WithPageSizes(cfg.PageSize, cfg.MaxPageSize),
		api.WithRateLimit(cfg.RateLimitRequests,
			time.Duration(cfg.RateLimitWindowSeconds)*time.Second),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
	)
	return s, nil
}

// Start runs the audit worker and serves HTTP until ctx is canceled or
// the listener fails.
func (s *Service) Start(ctx context.Context) error {
	s.audit.Start(ctx)
	return s.server.Start(ctx)
}

// Stop drains HTTP, flushes the audit queue, and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.audit.Stop()
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// IssueSession verifies the challenge and mints an anonymous session.
func (s *Service) IssueSession(ctx context.Context, challengeToken, remoteIP string) (session.Identity, string, error) {
	if err := s.verifier.VerifyChallenge(ctx, challengeToken, remoteIP); err != nil {
		return session.Identity{}, "", err
	}
	id, token, err := s.issuer.Issue(ctx)
	if err != nil {
		return session.Identity{}, "", err
	}
	s.log.Info(ctx, "session issued", logger.String("user_id", id.UserID))
	return id, token, nil
}

// VerifyToken authenticates a bearer token.
func (s *Service) VerifyToken(ctx context.Context, token string) (session.Identity, error) {
	return s.issuer.Verify(ctx, token)
}

// CreateCandle validates and stores a candle for the identity.
func (s *Service) CreateCandle(ctx context.Context, id session.Identity, candle model.Candle) (model.Candle, error) {
	candle.OwnerID = id.UserID
	candle.Position = candle.Position.Clamp()
	if err := candle.Validate(); err != nil {
		return model.Candle{}, err
	}
	created, err := s.store.Create(ctx, candle)
	if err != nil {
		return model.Candle{}, err
	}
	s.log.Info(ctx, "candle created",
		logger.String("id", created.ID),
		logger.String("emotion", created.Emotion))
	return created, nil
}

// ListCandles returns one insertion-ordered page.
func (s *Service) ListCandles(ctx context.Context, afterID string, limit int) ([]model.Candle, error) {
	return s.store.List(ctx, afterID, limit)
}

// DeleteCandle removes the identity's own candle.
func (s *Service) DeleteCandle(ctx context.Context, candleID string, id session.Identity) error {
	return s.store.Delete(ctx, candleID, id.UserID)
}

// ReportRejection feeds the audit side-channel; never blocks.
func (s *Service) ReportRejection(ctx context.Context, r audit.Rejection) {
	s.audit.Report(ctx, r)
}

// StatsParents aggregates candles by main emotion.
func (s *Service) StatsParents(ctx context.Context) ([]aggregate.Count, error) {
	all, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.ParentCounts(all, s.resolver), nil
}

// StatsBreakdown builds the three-level donut view.
func (s *Service) StatsBreakdown(ctx context.Context) ([]aggregate.ParentSlice, error) {
	all, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Breakdown(all, s.resolver), nil
}

// StatsDayparts buckets candles by time of day.
func (s *Service) StatsDayparts(ctx context.Context) ([]aggregate.DaypartBucket, error) {
	all, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.DaypartCounts(all, s.resolver), nil
}

// StatsWeekdays builds the weekday heatmap.
func (s *Service) StatsWeekdays(ctx context.Context) (aggregate.WeekdayMatrix, error) {
	all, err := s.store.Snapshot(ctx)
	if err != nil {
		return aggregate.WeekdayMatrix{}, err
	}
	return aggregate.Weekdays(all, s.resolver), nil
}

// CandleCount reports the stored candle total.
func (s *Service) CandleCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
