package usecase

import (
	"context"

	"github.com/rinkcharts/shotmap/internal/domain/game"
	"github.com/rinkcharts/shotmap/internal/domain/team"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

// GameEventExtractor walks every team's schedule, fetches play-by-play, and
// keeps the qualifying shot/goal events. Teams and games are processed
// strictly one at a time: the gamecenter endpoint is hit once per game, which
// is hundreds of calls per season, and a single request in flight is the
// throttle that keeps the upstream happy. The team-level stage before this
// one fans out freely because it only makes tens of calls.
type GameEventExtractor struct {
	provider StatsProvider
	state    *AggregationState
	resolver *PlayerResolver
	logger   *logging.Logger

	droppedGames  int
	failedFetches int
}

func NewGameEventExtractor(provider StatsProvider, state *AggregationState, resolver *PlayerResolver, logger *logging.Logger) *GameEventExtractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameEventExtractor{
		provider: provider,
		state:    state,
		resolver: resolver,
		logger:   logger,
	}
}

// ExtractAll processes teams in sorted-code order for run-over-run
// determinism. Per-game failures mark the ref invalid and move on; only
// context cancellation stops the stage.
func (e *GameEventExtractor) ExtractAll(ctx context.Context) error {
	ctx, span := startStageSpan(ctx, "extract_events")
	defer span.End()

	for _, abbrev := range e.state.TeamAbbrevs() {
		t, ok := e.state.Team(abbrev)
		if !ok {
			continue
		}
		if err := e.extractTeam(ctx, t); err != nil {
			return err
		}
	}

	return nil
}

func (e *GameEventExtractor) extractTeam(ctx context.Context, t *team.Team) error {
	for i := range t.Games {
		if err := ctx.Err(); err != nil {
			return err
		}

		ref := &t.Games[i]
		valid, err := e.state.GetOrFetchGame(ctx, ref.GameID, func(ctx context.Context) (game.Game, bool, error) {
			return e.fetchGame(ctx, ref.GameID)
		})
		if err != nil {
			return err
		}
		if !valid {
			e.droppedGames++
		}
		ref.Valid = valid
	}

	t.KeepValidGames()

	e.logger.DebugContext(ctx, "team games extracted",
		"team", t.Abbrev,
		"valid_games", len(t.Games),
	)
	return nil
}

// fetchGame builds the game record from play-by-play. valid=false covers both
// failure modes that drop a game: the fetch itself failing and the filtered
// event list coming back empty. Neither aborts the run.
func (e *GameEventExtractor) fetchGame(ctx context.Context, gameID int64) (game.Game, bool, error) {
	feed, err := e.provider.FetchPlayByPlay(ctx, gameID)
	if err != nil {
		if ctx.Err() != nil {
			return game.Game{}, false, ctx.Err()
		}
		e.failedFetches++
		e.logger.WarnContext(ctx, "play-by-play fetch failed, dropping game",
			"game_id", gameID,
			"error", err,
		)
		return game.Game{}, false, nil
	}

	sides := map[int64]FeedTeam{
		feed.Home.ID: feed.Home,
		feed.Away.ID: feed.Away,
	}

	events := make([]game.Event, 0, len(feed.Plays))
	for _, play := range feed.Plays {
		if !play.Qualifies() {
			continue
		}

		side, ok := sides[play.EventOwnerTeamID()]
		if !ok {
			e.logger.DebugContext(ctx, "qualifying play owned by neither side, skipping",
				"game_id", gameID,
				"owner_team_id", play.EventOwnerTeamID(),
			)
			continue
		}

		playerID := play.ScorerPlayerID()
		if playerID > 0 {
			e.resolver.Resolve(ctx, playerID, side.Abbrev)
		}

		events = append(events, game.Event{
			Play:       play,
			TeamName:   side.Name,
			TeamAbbrev: side.Abbrev,
			PlayerID:   playerID,
			IsHomeTeam: play.EventOwnerTeamID() == feed.Home.ID,
		})
	}

	if len(events) == 0 {
		e.logger.DebugContext(ctx, "no qualifying events, dropping game", "game_id", gameID)
		return game.Game{}, false, nil
	}

	return game.Game{
		ID:       gameID,
		Events:   events,
		Periods:  feed.Periods,
		HomeTeam: feed.Home.Name,
		AwayTeam: feed.Away.Name,
		Date:     feed.StartTimeUTC,
	}, true, nil
}

// DroppedGameCount reports how many game refs were invalidated (fetch failed
// or no qualifying events). A game reached through both participants can be
// attempted and counted once per side, matching the retry behavior.
func (e *GameEventExtractor) DroppedGameCount() int {
	return e.droppedGames
}

// FailedFetchCount reports play-by-play requests that errored.
func (e *GameEventExtractor) FailedFetchCount() int {
	return e.failedFetches
}
