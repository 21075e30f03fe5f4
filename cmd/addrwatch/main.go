package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/addrwatch/internal/config"
	"github.com/gabapcia/addrwatch/internal/handlers/cli"
	"github.com/gabapcia/addrwatch/internal/infra/blockchain/esplora"
	"github.com/gabapcia/addrwatch/internal/infra/rates/mempoolspace"
	redisstorage "github.com/gabapcia/addrwatch/internal/infra/storage/redis"
	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
	"github.com/gabapcia/addrwatch/internal/pkg/resilience/ratelimit"
	"github.com/gabapcia/addrwatch/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/addrwatch/internal/pkg/transport/http"
)

const userAgent = "addrwatch/1.0"

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	// All upstream calls share one request clock.
	limiter := ratelimit.New(
		ratelimit.WithMinInterval(cfg.MinRequestInterval),
		ratelimit.WithSafetyDelay(cfg.SafetyDelay),
	)

	transportOpts := []transporthttp.Option{
		transporthttp.WithTimeout(cfg.HTTPTimeout),
		transporthttp.WithUserAgent(userAgent),
	}

	blockchain := esplora.NewClient(cfg.EsploraBaseURL, transportOpts...)

	ratesOpts := []mempoolspace.Option{
		mempoolspace.WithRateLimiter(limiter),
		mempoolspace.WithTransportOptions(transportOpts...),
	}
	if cfg.RedisAddr != "" {
		cache, err := redisstorage.NewClient(ctx,
			cfg.RedisAddr,
			cfg.RedisUsername,
			cfg.RedisPassword,
			cfg.RedisDB,
			redisstorage.WithRateTTL(cfg.RateCacheTTL),
		)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer cache.Close()

		ratesOpts = append(ratesOpts, mempoolspace.WithCache(cache))
	}
	rates := mempoolspace.NewClient(cfg.PricesBaseURL, ratesOpts...)

	svc := monitor.New(blockchain, rates,
		monitor.WithCurrency(cfg.FiatCurrency),
		monitor.WithRateLimiter(limiter),
	)

	return cli.Run(ctx, svc, cfg)
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
