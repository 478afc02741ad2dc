package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rinkcharts/shotmap/external/nhle"
	"github.com/rinkcharts/shotmap/internal/config"
	"github.com/rinkcharts/shotmap/internal/infrastructure/dataset"
	"github.com/rinkcharts/shotmap/internal/infrastructure/repository/postgres"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
	"github.com/rinkcharts/shotmap/internal/platform/resilience"
	"github.com/rinkcharts/shotmap/internal/usecase"
)

// Fetcher owns the wired aggregation pipeline and the resources behind it.
type Fetcher struct {
	service *usecase.AggregationService
	input   usecase.AggregationInput
	db      *sqlx.DB
}

func NewFetcher(cfg config.Config, logger *logging.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = logging.Default()
	}

	client := nhle.NewClient(nhle.ClientConfig{
		BaseURL:       cfg.NHLEBaseURL,
		StandingsDate: cfg.StandingsDate,
		Timeout:       cfg.NHLETimeout,
		MaxRetries:    cfg.NHLEMaxRetries,
		Logger:        logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NHLECircuitEnabled,
			FailureThreshold: cfg.NHLECircuitFailureCount,
			OpenTimeout:      cfg.NHLECircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NHLECircuitHalfOpenMaxReq,
		},
		CacheEnabled: cfg.CacheEnabled,
		CacheTTL:     cfg.CacheTTL,
	})

	writer := dataset.NewWriter(cfg.OutputDir, logger)
	service := usecase.NewAggregationService(client, writer, logger)

	fetcher := &Fetcher{
		service: service,
		input: usecase.AggregationInput{
			Season:         cfg.Season,
			MaxTeamWorkers: cfg.MaxTeamWorkers,
		},
	}

	if cfg.ArchiveEnabled {
		db, err := postgres.Connect(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect archive db: %w", err)
		}
		service.WithArchive(postgres.NewRawDataRepository(db), client)
		fetcher.db = db
	}

	return fetcher, nil
}

// Run executes a single aggregation pass.
func (f *Fetcher) Run(ctx context.Context) (usecase.RunResult, error) {
	return f.service.Run(ctx, f.input)
}

func (f *Fetcher) Close() error {
	if f.db == nil {
		return nil
	}

	return f.db.Close()
}
