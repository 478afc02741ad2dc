package usecase

import (
	"context"
)

// StatsProvider is the contract over the upstream NHL web API. Every call may
// fail (transport error or non-2xx status) and callers decide per stage
// whether that aborts the run or just the entity being fetched.
type StatsProvider interface {
	FetchStandings(ctx context.Context) ([]TeamStanding, error)
	FetchClubSchedule(ctx context.Context, teamAbbrev, season string) ([]ScheduledGame, error)
	FetchRoster(ctx context.Context, teamAbbrev, season string) (Roster, error)
	FetchPlayByPlay(ctx context.Context, gameID int64) (GameFeed, error)
	FetchPlayerProfile(ctx context.Context, playerID int64) (PlayerProfile, error)
}

type TeamStanding struct {
	Abbrev string
	Name   string
	Logo   string
}

type ScheduledGame struct {
	ID         int64
	GameDate   string
	HomeAbbrev string
	AwayAbbrev string
}

// Roster carries skaters only; the upstream goalies section is never mapped.
type Roster struct {
	Forwards   []RosterPlayer
	Defensemen []RosterPlayer
}

type RosterPlayer struct {
	ID            int64
	FirstName     string
	LastName      string
	SweaterNumber int
	PositionCode  string
	Headshot      string
}

type GameFeed struct {
	Home         FeedTeam
	Away         FeedTeam
	Periods      int
	StartTimeUTC string
	Plays        []Play
}

type FeedTeam struct {
	ID     int64
	Name   string
	Abbrev string
}

type PlayerProfile struct {
	ID            int64
	FirstName     string
	LastName      string
	SweaterNumber int
	Position      string
	Headshot      string
}

const (
	playTypeGoal       = "goal"
	playTypeShotOnGoal = "shot-on-goal"
)

// Play is one raw play-by-play entry, kept as the decoded JSON object so the
// persisted event can carry the full upstream payload. The accessors below
// read the handful of fields the pipeline filters and attributes on.
type Play map[string]any

func (p Play) TypeDescKey() string {
	return getString(p, "typeDescKey")
}

func (p Play) details() map[string]any {
	details, _ := p["details"].(map[string]any)
	return details
}

// HasCoordinates reports whether both xCoord and yCoord are present in the
// play details. Plays without coordinates cannot be drawn and never qualify.
func (p Play) HasCoordinates() bool {
	details := p.details()
	if details == nil {
		return false
	}
	if v, ok := details["xCoord"]; !ok || v == nil {
		return false
	}
	if v, ok := details["yCoord"]; !ok || v == nil {
		return false
	}
	return true
}

func (p Play) EventOwnerTeamID() int64 {
	return getInt64(p.details(), "eventOwnerTeamId")
}

// ScorerPlayerID returns the scoring player for goals and the shooting player
// for shots on goal; zero when the feed omits the field.
func (p Play) ScorerPlayerID() int64 {
	details := p.details()
	if p.TypeDescKey() == playTypeGoal {
		return getInt64(details, "scoringPlayerId")
	}
	return getInt64(details, "shootingPlayerId")
}

// Qualifies is the single filtering predicate for persisted events: the play
// must be a goal or shot-on-goal and carry both spatial coordinates.
func (p Play) Qualifies() bool {
	kind := p.TypeDescKey()
	if kind != playTypeGoal && kind != playTypeShotOnGoal {
		return false
	}
	return p.HasCoordinates()
}

func getString(item map[string]any, key string) string {
	if item == nil {
		return ""
	}
	value, _ := item[key].(string)
	return value
}

func getInt64(item map[string]any, key string) int64 {
	if item == nil {
		return 0
	}
	switch value := item[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	default:
		return 0
	}
}
