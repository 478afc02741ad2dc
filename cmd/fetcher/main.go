package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rinkcharts/shotmap/internal/app"
	"github.com/rinkcharts/shotmap/internal/config"
	"github.com/rinkcharts/shotmap/internal/observability"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownUptrace(flushCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopPyroscope(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	fetcher, err := app.NewFetcher(cfg, logger)
	if err != nil {
		logger.Error("build fetcher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Error("close fetcher", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("aggregation starting",
		"season", cfg.Season,
		"standings_date", cfg.StandingsDate,
		"output_dir", cfg.OutputDir,
	)

	result, err := fetcher.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("aggregation canceled")
			os.Exit(1)
		}
		logger.Error("aggregation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("aggregation finished",
		"teams", result.Teams,
		"players", result.Players,
		"games", result.Games,
		"duration", result.Duration.String(),
	)
}
