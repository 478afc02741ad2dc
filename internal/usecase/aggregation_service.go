package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rinkcharts/shotmap/internal/domain/rawdata"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

// DatasetStore persists the three aggregated maps. Implementations must treat
// the snapshot as all-or-nothing: any write error fails the run.
type DatasetStore interface {
	WriteDatasets(ctx context.Context, snap DatasetSnapshot) error
}

// PayloadSource exposes the raw upstream responses a provider captured during
// the run, for the optional provenance archive.
type PayloadSource interface {
	DrainPayloads() []rawdata.Payload
}

type AggregationInput struct {
	// Season in NHL API form, e.g. "20232024".
	Season string `validate:"required,len=8,numeric"`
	// MaxTeamWorkers caps the team-level fan-out; zero means one worker per
	// team.
	MaxTeamWorkers int `validate:"omitempty,gte=1"`
}

type RunResult struct {
	Teams             int           `json:"teams"`
	Players           int           `json:"players"`
	Games             int           `json:"games"`
	DroppedGames      int           `json:"dropped_games"`
	BackfilledPlayers int           `json:"backfilled_players"`
	UnresolvedPlayers int           `json:"unresolved_players"`
	ArchivedPayloads  int           `json:"archived_payloads"`
	Duration          time.Duration `json:"-"`
}

// AggregationService runs the full pipeline: team discovery (fatal on any
// failure), event extraction (per-game tolerant), dataset write (fatal), and
// finally the best-effort payload archive.
type AggregationService struct {
	provider StatsProvider
	store    DatasetStore
	archive  rawdata.Repository
	payloads PayloadSource
	logger   *logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewAggregationService(provider StatsProvider, store DatasetStore, logger *logging.Logger) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AggregationService{
		provider: provider,
		store:    store,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithArchive attaches the raw-payload archive. Both pieces are required: the
// repository to write to and the source that captured the payloads.
func (s *AggregationService) WithArchive(repo rawdata.Repository, source PayloadSource) *AggregationService {
	s.archive = repo
	s.payloads = source
	return s
}

func (s *AggregationService) Run(ctx context.Context, input AggregationInput) (RunResult, error) {
	ctx, span := startStageSpan(ctx, "run", attribute.String("season", input.Season))
	defer span.End()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return RunResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start := s.now()
	state := NewAggregationState()

	aggregator := NewTeamAggregator(s.provider, state, s.logger)
	aggregator.SetMaxWorkers(input.MaxTeamWorkers)
	if err := aggregator.BuildTeamUniverse(ctx, input.Season); err != nil {
		return RunResult{}, err
	}

	resolver := NewPlayerResolver(s.provider, state, s.logger)
	extractor := NewGameEventExtractor(s.provider, state, resolver, s.logger)
	if err := extractor.ExtractAll(ctx); err != nil {
		return RunResult{}, fmt.Errorf("extract game events: %w", err)
	}

	if err := s.store.WriteDatasets(ctx, state.Snapshot()); err != nil {
		return RunResult{}, fmt.Errorf("%w: %v", ErrDatasetWrite, err)
	}

	result := RunResult{
		DroppedGames:      extractor.DroppedGameCount(),
		BackfilledPlayers: resolver.BackfilledCount(),
		UnresolvedPlayers: resolver.UnresolvedCount(),
	}
	result.Teams, result.Players, result.Games = state.Counts()
	result.ArchivedPayloads = s.archivePayloads(ctx)
	result.Duration = s.now().Sub(start)

	s.logger.InfoContext(ctx, "aggregation run complete",
		"season", input.Season,
		"teams", result.Teams,
		"players", result.Players,
		"games", result.Games,
		"dropped_games", result.DroppedGames,
		"backfilled_players", result.BackfilledPlayers,
		"unresolved_players", result.UnresolvedPlayers,
		"archived_payloads", result.ArchivedPayloads,
		"duration", result.Duration,
	)
	return result, nil
}

// archivePayloads stores the captured upstream responses when an archive is
// configured. Archive failures are logged and reflected in the result count
// only; the datasets already on disk stay authoritative.
func (s *AggregationService) archivePayloads(ctx context.Context) int {
	if s.archive == nil || s.payloads == nil {
		return 0
	}

	items := s.payloads.DrainPayloads()
	if len(items) == 0 {
		return 0
	}

	if err := s.archive.UpsertMany(ctx, items); err != nil {
		s.logger.ErrorContext(ctx, "raw payload archive failed",
			"payloads", len(items),
			"error", err,
		)
		return 0
	}

	return len(items)
}
