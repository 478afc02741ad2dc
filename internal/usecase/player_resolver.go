package usecase

import (
	"context"

	"github.com/rinkcharts/shotmap/internal/domain/player"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
)

// PlayerResolver back-fills players the roster snapshot missed: late
// call-ups, trades, anyone who shows up in play-by-play without a roster
// entry. A player already present is returned as-is and never rewritten by a
// profile fetch. A failed fetch leaves the id unresolved; the event keeps the
// numeric id and the gap is logged, not fatal.
type PlayerResolver struct {
	provider StatsProvider
	state    *AggregationState
	logger   *logging.Logger

	unresolved int
	backfilled int
}

func NewPlayerResolver(provider StatsProvider, state *AggregationState, logger *logging.Logger) *PlayerResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerResolver{
		provider: provider,
		state:    state,
		logger:   logger,
	}
}

// Resolve returns the player record for playerID, fetching the individual
// profile when the id is unseen. teamAbbrev attributes a newly fetched player
// to the team owning the event that surfaced them.
func (r *PlayerResolver) Resolve(ctx context.Context, playerID int64, teamAbbrev string) (player.Player, bool) {
	if playerID <= 0 {
		return player.Player{}, false
	}

	if existing, ok := r.state.Player(playerID); ok {
		return existing, true
	}

	profile, err := r.provider.FetchPlayerProfile(ctx, playerID)
	if err != nil {
		r.unresolved++
		r.logger.WarnContext(ctx, "player profile fetch failed, leaving id unresolved",
			"player_id", playerID,
			"team", teamAbbrev,
			"error", err,
		)
		return player.Player{}, false
	}

	record := player.Player{
		ID:            playerID,
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		SweaterNumber: profile.SweaterNumber,
		Position:      profile.Position,
		Headshot:      profile.Headshot,
	}
	if r.state.PutPlayerIfAbsent(record) {
		r.backfilled++
	} else {
		// Lost a race with another writer for the same id, keep theirs.
		record, _ = r.state.Player(playerID)
	}

	if t, ok := r.state.Team(teamAbbrev); ok {
		t.AddPlayerID(playerID)
	} else {
		r.logger.WarnContext(ctx, "resolved player attributed to unknown team",
			"player_id", playerID,
			"team", teamAbbrev,
		)
	}

	return record, true
}

// UnresolvedCount reports how many event player ids could not be resolved.
func (r *PlayerResolver) UnresolvedCount() int {
	return r.unresolved
}

// BackfilledCount reports how many players were created outside the roster
// snapshot.
func (r *PlayerResolver) BackfilledCount() int {
	return r.backfilled
}
