package usecase

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/rinkcharts/shotmap/internal/domain/game"
	"github.com/rinkcharts/shotmap/internal/domain/player"
	"github.com/rinkcharts/shotmap/internal/domain/team"
	"github.com/rinkcharts/shotmap/internal/platform/resilience"
)

// AggregationState owns the three output maps for one run. It is the only
// shared mutable surface between pipeline stages: the team stage writes teams
// and roster players concurrently, the event stage reads and back-fills
// sequentially, and the writer reads a final snapshot. All map access goes
// through the methods here so the never-overwrite rule for players and the
// fetch-once rule for games live in exactly one place.
type AggregationState struct {
	mu      sync.RWMutex
	teams   map[string]*team.Team
	players map[int64]player.Player
	games   map[int64]game.Game

	gameFlight resilience.SingleFlight
}

func NewAggregationState() *AggregationState {
	return &AggregationState{
		teams:   make(map[string]*team.Team),
		players: make(map[int64]player.Player),
		games:   make(map[int64]game.Game),
	}
}

func (s *AggregationState) PutTeam(t *team.Team) {
	if t == nil || t.Abbrev == "" {
		return
	}
	s.mu.Lock()
	s.teams[t.Abbrev] = t
	s.mu.Unlock()
}

func (s *AggregationState) Team(abbrev string) (*team.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[abbrev]
	return t, ok
}

// TeamAbbrevs returns the team codes in sorted order so the sequential event
// stage visits teams deterministically run over run.
func (s *AggregationState) TeamAbbrevs() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.teams))
	for abbrev := range s.teams {
		out = append(out, abbrev)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// PutPlayer writes unconditionally. Reserved for the roster path, which is
// the canonical source and processed exactly once per team.
func (s *AggregationState) PutPlayer(p player.Player) {
	if p.ID <= 0 {
		return
	}
	s.mu.Lock()
	s.players[p.ID] = p
	s.mu.Unlock()
}

// PutPlayerIfAbsent stores p only when the id is unknown and reports whether
// it stored. A roster-sourced record is never replaced by a lazy profile
// fetch for the same id.
func (s *AggregationState) PutPlayerIfAbsent(p player.Player) bool {
	if p.ID <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; ok {
		return false
	}
	s.players[p.ID] = p
	return true
}

func (s *AggregationState) Player(id int64) (player.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

func (s *AggregationState) Game(id int64) (game.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

// GameFetchFunc produces the game record for an id. valid=false means the
// fetch failed or no qualifying event survived; such outcomes are not
// memoized, so a game reached again through the other team is re-attempted.
type GameFetchFunc func(ctx context.Context) (g game.Game, valid bool, err error)

// GetOrFetchGame is the memoization point for play-by-play: a game already
// stored (fetched while processing the other participant) is reused without
// another upstream call, and concurrent callers for the same id collapse
// into a single fetch.
func (s *AggregationState) GetOrFetchGame(ctx context.Context, id int64, fetch GameFetchFunc) (bool, error) {
	if _, ok := s.Game(id); ok {
		return true, nil
	}

	valid, err, _ := s.gameFlight.Do(gameFlightKey(id), func() (any, error) {
		if _, ok := s.Game(id); ok {
			return true, nil
		}

		g, ok, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return false, fetchErr
		}
		if !ok {
			return false, nil
		}

		s.mu.Lock()
		s.games[id] = g
		s.mu.Unlock()
		return true, nil
	})
	if err != nil {
		return false, err
	}

	stored, _ := valid.(bool)
	return stored, nil
}

func (s *AggregationState) Counts() (teams, players, games int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams), len(s.players), len(s.games)
}

// DatasetSnapshot is the read-only view handed to the dataset writer once all
// fetching is done.
type DatasetSnapshot struct {
	Teams   map[string]*team.Team
	Players map[int64]player.Player
	Games   map[int64]game.Game
}

func (s *AggregationState) Snapshot() DatasetSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := DatasetSnapshot{
		Teams:   make(map[string]*team.Team, len(s.teams)),
		Players: make(map[int64]player.Player, len(s.players)),
		Games:   make(map[int64]game.Game, len(s.games)),
	}
	for abbrev, t := range s.teams {
		snap.Teams[abbrev] = t
	}
	for id, p := range s.players {
		snap.Players[id] = p
	}
	for id, g := range s.games {
		snap.Games[id] = g
	}

	return snap
}

func gameFlightKey(id int64) string {
	return "game:" + strconv.FormatInt(id, 10)
}
