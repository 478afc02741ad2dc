package game

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
)

// Game is one persisted game record. A Game only exists when it has at least
// one qualifying event; empty games are never materialized.
type Game struct {
	ID       int64   `json:"-"`
	Events   []Event `json:"events"`
	Periods  int     `json:"periods"`
	HomeTeam string  `json:"homeTeam"`
	AwayTeam string  `json:"awayTeam"`
	Date     string  `json:"date"`
}

func (g Game) Validate() error {
	if g.ID <= 0 {
		return fmt.Errorf("game id must be greater than zero")
	}
	if len(g.Events) == 0 {
		return fmt.Errorf("game must carry at least one event")
	}

	return nil
}

// Event is a goal or shot-on-goal with spatial coordinates. Play holds the
// raw upstream play object untouched; the resolved attribution fields are
// merged over it at marshal time so the serialized event keeps every
// upstream key alongside teamName/teamAbbrev/playerId/isHomeTeam.
type Event struct {
	Play       map[string]any
	TeamName   string
	TeamAbbrev string
	PlayerID   int64
	IsHomeTeam bool
}

func (e Event) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(e.Play)+4)
	for k, v := range e.Play {
		merged[k] = v
	}
	merged["teamName"] = e.TeamName
	merged["teamAbbrev"] = e.TeamAbbrev
	merged["playerId"] = e.PlayerID
	merged["isHomeTeam"] = e.IsHomeTeam

	return sonic.ConfigStd.Marshal(merged)
}
