package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errTimeout = errors.New("upstream timeout")

// fakeProvider is a canned StatsProvider with per-endpoint call counters.
type fakeProvider struct {
	mu sync.Mutex

	standings    []TeamStanding
	standingsErr error

	schedules   map[string][]ScheduledGame
	scheduleErr map[string]error

	rosters   map[string]Roster
	rosterErr map[string]error

	feeds   map[int64]GameFeed
	feedErr map[int64]error

	profiles   map[int64]PlayerProfile
	profileErr map[int64]error

	standingsCalls  int
	scheduleCalls   map[string]int
	rosterCalls     map[string]int
	playByPlayCalls map[int64]int
	profileCalls    map[int64]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		schedules:       map[string][]ScheduledGame{},
		scheduleErr:     map[string]error{},
		rosters:         map[string]Roster{},
		rosterErr:       map[string]error{},
		feeds:           map[int64]GameFeed{},
		feedErr:         map[int64]error{},
		profiles:        map[int64]PlayerProfile{},
		profileErr:      map[int64]error{},
		scheduleCalls:   map[string]int{},
		rosterCalls:     map[string]int{},
		playByPlayCalls: map[int64]int{},
		profileCalls:    map[int64]int{},
	}
}

func (f *fakeProvider) FetchStandings(ctx context.Context) ([]TeamStanding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standingsCalls++
	if f.standingsErr != nil {
		return nil, f.standingsErr
	}
	return f.standings, nil
}

func (f *fakeProvider) FetchClubSchedule(ctx context.Context, teamAbbrev, season string) ([]ScheduledGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleCalls[teamAbbrev]++
	if err := f.scheduleErr[teamAbbrev]; err != nil {
		return nil, err
	}
	return f.schedules[teamAbbrev], nil
}

func (f *fakeProvider) FetchRoster(ctx context.Context, teamAbbrev, season string) (Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rosterCalls[teamAbbrev]++
	if err := f.rosterErr[teamAbbrev]; err != nil {
		return Roster{}, err
	}
	return f.rosters[teamAbbrev], nil
}

func (f *fakeProvider) FetchPlayByPlay(ctx context.Context, gameID int64) (GameFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playByPlayCalls[gameID]++
	if err := f.feedErr[gameID]; err != nil {
		// A failed fetch is consumed once so a later retry can succeed.
		delete(f.feedErr, gameID)
		return GameFeed{}, err
	}
	feed, ok := f.feeds[gameID]
	if !ok {
		return GameFeed{}, fmt.Errorf("no feed for game %d", gameID)
	}
	return feed, nil
}

func (f *fakeProvider) FetchPlayerProfile(ctx context.Context, playerID int64) (PlayerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls[playerID]++
	if err := f.profileErr[playerID]; err != nil {
		return PlayerProfile{}, err
	}
	profile, ok := f.profiles[playerID]
	if !ok {
		return PlayerProfile{}, fmt.Errorf("no profile for player %d", playerID)
	}
	return profile, nil
}

func goalPlay(teamID, scorerID int64) Play {
	return Play{
		"typeDescKey": "goal",
		"details": map[string]any{
			"xCoord":           float64(45),
			"yCoord":           float64(-10),
			"eventOwnerTeamId": float64(teamID),
			"scoringPlayerId":  float64(scorerID),
		},
	}
}

func shotPlay(teamID, shooterID int64) Play {
	return Play{
		"typeDescKey": "shot-on-goal",
		"details": map[string]any{
			"xCoord":           float64(-30),
			"yCoord":           float64(22),
			"eventOwnerTeamId": float64(teamID),
			"shootingPlayerId": float64(shooterID),
		},
	}
}
