package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rinkcharts/shotmap/internal/domain/player"
	"github.com/rinkcharts/shotmap/internal/domain/team"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

// TeamAggregator turns the standings snapshot into the team universe: one
// Team per standings row, its season schedule mapped to game refs, and its
// roster seeded into the player map. Teams are processed with one worker per
// team so every schedule+roster pair is in flight at once; these are bulk
// team-level endpoints and safe to hit together, unlike the per-game feed
// handled later. Any failure here aborts the run, because the event stage
// assumes a complete team and roster universe.
type TeamAggregator struct {
	provider StatsProvider
	state    *AggregationState
	logger   *logging.Logger

	maxWorkers int
}

func NewTeamAggregator(provider StatsProvider, state *AggregationState, logger *logging.Logger) *TeamAggregator {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamAggregator{
		provider: provider,
		state:    state,
		logger:   logger,
	}
}

// SetMaxWorkers caps the team fan-out. Zero keeps the default of one worker
// per team.
func (a *TeamAggregator) SetMaxWorkers(n int) {
	a.maxWorkers = n
}

func (a *TeamAggregator) BuildTeamUniverse(ctx context.Context, season string) error {
	ctx, span := startStageSpan(ctx, "build_team_universe", attribute.String("season", season))
	defer span.End()

	standings, err := a.provider.FetchStandings(ctx)
	if err != nil {
		return fmt.Errorf("%w: fetch standings: %v", ErrTeamDiscovery, err)
	}
	if len(standings) == 0 {
		a.logger.WarnContext(ctx, "standings snapshot is empty, nothing to aggregate")
		return nil
	}

	workers := len(standings)
	if a.maxWorkers > 0 && a.maxWorkers < workers {
		workers = a.maxWorkers
	}

	taskPool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create team worker pool: %w", err)
	}
	defer taskPool.Release()

	errs := make(chan error, len(standings))
	var wg sync.WaitGroup
	for _, row := range standings {
		row := row
		wg.Add(1)
		if submitErr := taskPool.Submit(func() {
			defer wg.Done()
			if taskErr := a.aggregateTeam(ctx, row, season); taskErr != nil {
				errs <- taskErr
			}
		}); submitErr != nil {
			wg.Done()
			return fmt.Errorf("submit team task: %w", submitErr)
		}
	}

	wg.Wait()
	close(errs)

	for taskErr := range errs {
		if taskErr != nil {
			return fmt.Errorf("%w: %v", ErrTeamDiscovery, taskErr)
		}
	}

	a.logger.InfoContext(ctx, "team universe built",
		"teams", len(standings),
		"season", season,
	)
	return nil
}

func (a *TeamAggregator) aggregateTeam(ctx context.Context, row TeamStanding, season string) error {
	if row.Abbrev == "" {
		return fmt.Errorf("standings row without team abbrev (name=%q)", row.Name)
	}

	t := team.New(row.Abbrev, row.Name, row.Logo)
	if err := t.Validate(); err != nil {
		return fmt.Errorf("team %s: %w", row.Abbrev, err)
	}
	a.state.PutTeam(t)

	// Schedule and roster are independent; fetch the pair together and fail
	// the team on the first error.
	var schedule []ScheduledGame
	var roster Roster

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		fetched, err := a.provider.FetchClubSchedule(ctx, row.Abbrev, season)
		if err != nil {
			return fmt.Errorf("fetch schedule team=%s: %w", row.Abbrev, err)
		}
		schedule = fetched
		return nil
	})
	p.Go(func(ctx context.Context) error {
		fetched, err := a.provider.FetchRoster(ctx, row.Abbrev, season)
		if err != nil {
			return fmt.Errorf("fetch roster team=%s: %w", row.Abbrev, err)
		}
		roster = fetched
		return nil
	})
	if err := p.Wait(); err != nil {
		return err
	}

	t.Games = mapScheduleToRefs(schedule, row.Abbrev)
	a.seedRoster(t, roster)

	a.logger.DebugContext(ctx, "team aggregated",
		"team", row.Abbrev,
		"games", len(t.Games),
		"roster_players", len(t.PlayerIDs),
	)
	return nil
}

// mapScheduleToRefs resolves the opponent as whichever side of the matchup is
// not this team.
func mapScheduleToRefs(schedule []ScheduledGame, abbrev string) []team.GameRef {
	refs := make([]team.GameRef, 0, len(schedule))
	for _, entry := range schedule {
		opponent := entry.AwayAbbrev
		if opponent == abbrev {
			opponent = entry.HomeAbbrev
		}
		refs = append(refs, team.GameRef{
			GameID:   entry.ID,
			Date:     entry.GameDate,
			Opponent: opponent,
		})
	}
	return refs
}

// seedRoster writes skaters straight into the player map. This is the one
// path that bypasses the resolver's presence check: standings and roster are
// the canonical source, processed exactly once per team.
func (a *TeamAggregator) seedRoster(t *team.Team, roster Roster) {
	seed := func(players []RosterPlayer) {
		for _, entry := range players {
			if entry.ID <= 0 {
				continue
			}
			a.state.PutPlayer(player.Player{
				ID:            entry.ID,
				FirstName:     entry.FirstName,
				LastName:      entry.LastName,
				SweaterNumber: entry.SweaterNumber,
				PositionCode:  entry.PositionCode,
				Headshot:      entry.Headshot,
			})
			t.AddPlayerID(entry.ID)
		}
	}

	seed(roster.Forwards)
	seed(roster.Defensemen)
}
