package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/lumenmap/candles/internal/seed"
	"github.com/lumenmap/candles/pkg/logger"
)

const (
	defaultNumCandles = 1000
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
	defaultSpread     = 5.0
	defaultDaysBack   = 30
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numCandles = flag.Int("candles", defaultNumCandles, "Number of candles to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		centerLat  = flag.Float64("lat", 38.9072, "Center latitude for spread placement")
		centerLon  = flag.Float64("lon", -77.0369, "Center longitude for spread placement")
		spread     = flag.Float64("spread", defaultSpread, "Placement spread around the center, in degrees")
		worldwide  = flag.Bool("worldwide", false, "Sample positions uniformly over the whole map instead")
		daysBack   = flag.Int("days", defaultDaysBack, "Spread viewer-local timestamps over the last N days")
		outputFile = flag.String("output", "", "Optional file to save the generated candles as JSON")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:    *baseURL,
		NumCandles: *numCandles,
		Workers:    *workers,
		Timeout:    *timeout,
		CenterLat:  *centerLat,
		CenterLon:  *centerLon,
		Spread:     *spread,
		Worldwide:  *worldwide,
		DaysBack:   *daysBack,
		OutputFile: *outputFile,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
