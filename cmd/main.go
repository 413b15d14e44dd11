package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	app "github.com/lumenmap/candles/internal/app"
	"github.com/lumenmap/candles/internal/config"
	"github.com/lumenmap/candles/pkg/logger"
	"github.com/lumenmap/candles/pkg/metrics"
)

const (
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// Serve until the listener fails or a signal arrives.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- svc.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down...")
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "server failed", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes process gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// startServiceMetricsUpdater keeps the store size gauge current.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := svc.CandleCount(ctx); err == nil {
				metrics.UpdateStoreCandles(n)
			}
		}
	}
}
