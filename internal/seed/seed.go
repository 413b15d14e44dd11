// Package seed bulk-populates a running candles server with randomly
// generated candles, for demos and load checks.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumenmap/candles/internal/flow"
	"github.com/lumenmap/candles/pkg/client"
	"github.com/lumenmap/candles/pkg/logger"
)

// Config controls a seeding run.
type Config struct {
	BaseURL    string
	NumCandles int
	Workers    int
	Timeout    time.Duration
	CenterLat  float64
	CenterLon  float64
	Spread     float64
	Worldwide  bool
	DaysBack   int
	OutputFile string
}

// Stats summarizes a seeding run.
type Stats struct {
	Generated   int
	Created     int64
	RateLimited int64
	Failed      int64
	StartTime   time.Time
	Duration    time.Duration
}

// Run generates candles and submits them concurrently. Rate-limited
// submissions are counted, not retried; servers seeded this way should
// run with a generous rate limit.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting candle seeding",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("candles", cfg.NumCandles),
		logger.Int("workers", cfg.Workers),
		logger.Any("worldwide", cfg.Worldwide))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	drafts := generateDrafts(cfg)
	stats.Generated = len(drafts)

	if err := submitDrafts(ctx, cfg, drafts, stats); err != nil {
		return nil, fmt.Errorf("submission failed: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := saveDrafts(cfg.OutputFile, drafts); err != nil {
			log.Warn(ctx, "failed to save generated candles", logger.Error(err))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seeding finished",
		logger.Int("generated", stats.Generated),
		logger.Int("created", int(stats.Created)),
		logger.Int("rateLimited", int(stats.RateLimited)),
		logger.Int("failed", int(stats.Failed)),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func checkServiceHealth(ctx context.Context, cfg *Config) error {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", resp.StatusCode)
	}
	return nil
}

// submitDrafts fans the drafts out over Workers clients, each with its
// own anonymous session.
func submitDrafts(ctx context.Context, cfg *Config, drafts []Draft, stats *Stats) error {
	workerCount := cfg.Workers
	if workerCount > len(drafts) {
		workerCount = len(drafts)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	jobs := make(chan Draft)
	var wg sync.WaitGroup

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := client.New(cfg.BaseURL,
				client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
			if _, err := c.IssueSession(ctx, ""); err != nil {
				logger.Get().Warn(ctx, "worker session failed", logger.Error(err))
				// Keep draining so the feeder never blocks on dead workers.
				for range jobs {
					atomic.AddInt64(&stats.Failed, 1)
				}
				return
			}
			for d := range jobs {
				_, err := c.CreateCandle(ctx, d.Emotion, d.Position, d.ViewerLocal)
				switch {
				case err == nil:
					atomic.AddInt64(&stats.Created, 1)
				case errors.Is(err, flow.ErrRateLimited):
					atomic.AddInt64(&stats.RateLimited, 1)
				default:
					atomic.AddInt64(&stats.Failed, 1)
				}
			}
		}()
	}

	for _, d := range drafts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- d:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func saveDrafts(path string, drafts []Draft) error {
	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
