package nhle

import "github.com/rinkcharts/shotmap/internal/usecase"

// localeString is the {"default": "..."} wrapper the NHL web API puts around
// every display name.
type localeString struct {
	Default string `json:"default"`
}

type standingsEnvelope struct {
	Standings []standingsRow `json:"standings"`
}

type standingsRow struct {
	TeamAbbrev localeString `json:"teamAbbrev"`
	TeamName   localeString `json:"teamName"`
	TeamLogo   string       `json:"teamLogo"`
}

func (r standingsRow) toTeamStanding() usecase.TeamStanding {
	return usecase.TeamStanding{
		Abbrev: r.TeamAbbrev.Default,
		Name:   r.TeamName.Default,
		Logo:   r.TeamLogo,
	}
}

type scheduleEnvelope struct {
	Games []scheduledGame `json:"games"`
}

type scheduledGame struct {
	ID       int64        `json:"id"`
	GameDate string       `json:"gameDate"`
	HomeTeam scheduleSide `json:"homeTeam"`
	AwayTeam scheduleSide `json:"awayTeam"`
}

type scheduleSide struct {
	Abbrev string `json:"abbrev"`
}

func (g scheduledGame) toScheduledGame() usecase.ScheduledGame {
	return usecase.ScheduledGame{
		ID:         g.ID,
		GameDate:   g.GameDate,
		HomeAbbrev: g.HomeTeam.Abbrev,
		AwayAbbrev: g.AwayTeam.Abbrev,
	}
}

type rosterEnvelope struct {
	Forwards   []rosterPlayer `json:"forwards"`
	Defensemen []rosterPlayer `json:"defensemen"`
	// Goalies are present upstream but intentionally not mapped.
}

type rosterPlayer struct {
	ID            int64        `json:"id"`
	FirstName     localeString `json:"firstName"`
	LastName      localeString `json:"lastName"`
	SweaterNumber int          `json:"sweaterNumber"`
	PositionCode  string       `json:"positionCode"`
	Headshot      string       `json:"headshot"`
}

func (p rosterPlayer) toRosterPlayer() usecase.RosterPlayer {
	return usecase.RosterPlayer{
		ID:            p.ID,
		FirstName:     p.FirstName.Default,
		LastName:      p.LastName.Default,
		SweaterNumber: p.SweaterNumber,
		PositionCode:  p.PositionCode,
		Headshot:      p.Headshot,
	}
}

func mapRoster(env rosterEnvelope) usecase.Roster {
	out := usecase.Roster{
		Forwards:   make([]usecase.RosterPlayer, 0, len(env.Forwards)),
		Defensemen: make([]usecase.RosterPlayer, 0, len(env.Defensemen)),
	}
	for _, p := range env.Forwards {
		out.Forwards = append(out.Forwards, p.toRosterPlayer())
	}
	for _, p := range env.Defensemen {
		out.Defensemen = append(out.Defensemen, p.toRosterPlayer())
	}
	return out
}

type playByPlayEnvelope struct {
	HomeTeam         feedTeam         `json:"homeTeam"`
	AwayTeam         feedTeam         `json:"awayTeam"`
	PeriodDescriptor periodDescriptor `json:"periodDescriptor"`
	StartTimeUTC     string           `json:"startTimeUTC"`
	// Plays stay raw: the persisted event carries the full upstream object.
	Plays []map[string]any `json:"plays"`
}

type feedTeam struct {
	ID     int64        `json:"id"`
	Name   localeString `json:"name"`
	Abbrev string       `json:"abbrev"`
}

type periodDescriptor struct {
	Number int `json:"number"`
}

func (t feedTeam) toFeedTeam() usecase.FeedTeam {
	return usecase.FeedTeam{
		ID:     t.ID,
		Name:   t.Name.Default,
		Abbrev: t.Abbrev,
	}
}

func mapGameFeed(env playByPlayEnvelope) usecase.GameFeed {
	plays := make([]usecase.Play, 0, len(env.Plays))
	for _, play := range env.Plays {
		plays = append(plays, usecase.Play(play))
	}
	return usecase.GameFeed{
		Home:         env.HomeTeam.toFeedTeam(),
		Away:         env.AwayTeam.toFeedTeam(),
		Periods:      env.PeriodDescriptor.Number,
		StartTimeUTC: env.StartTimeUTC,
		Plays:        plays,
	}
}

type playerLandingEnvelope struct {
	PlayerID      int64        `json:"playerId"`
	FirstName     localeString `json:"firstName"`
	LastName      localeString `json:"lastName"`
	SweaterNumber int          `json:"sweaterNumber"`
	Position      string       `json:"position"`
	Headshot      string       `json:"headshot"`
}

func (p playerLandingEnvelope) toPlayerProfile(playerID int64) usecase.PlayerProfile {
	id := p.PlayerID
	if id <= 0 {
		id = playerID
	}
	return usecase.PlayerProfile{
		ID:            id,
		FirstName:     p.FirstName.Default,
		LastName:      p.LastName.Default,
		SweaterNumber: p.SweaterNumber,
		Position:      p.Position,
		Headshot:      p.Headshot,
	}
}
