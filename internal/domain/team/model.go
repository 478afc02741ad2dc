package team

import "fmt"

// Team is one NHL franchise discovered from the standings snapshot. The
// abbreviation ("BOS", "TOR", ...) is the identity used everywhere else.
type Team struct {
	Abbrev    string    `json:"-"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo"`
	Games     []GameRef `json:"games"`
	PlayerIDs []int64   `json:"playerIds"`
}

// GameRef is one scheduled game as seen from this team's side. Valid is a
// working flag set while play-by-play is fetched and never serialized; after
// extraction, refs that stayed invalid are dropped from Games.
type GameRef struct {
	GameID   int64  `json:"gameId"`
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	Valid    bool   `json:"-"`
}

func New(abbrev, name, logo string) *Team {
	return &Team{
		Abbrev:    abbrev,
		Name:      name,
		Logo:      logo,
		Games:     []GameRef{},
		PlayerIDs: []int64{},
	}
}

func (t *Team) Validate() error {
	if t.Abbrev == "" {
		return fmt.Errorf("team abbrev is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// AddPlayerID appends id to the team's player list if it is not already
// there. Returns true when the id was added.
func (t *Team) AddPlayerID(id int64) bool {
	for _, existing := range t.PlayerIDs {
		if existing == id {
			return false
		}
	}
	t.PlayerIDs = append(t.PlayerIDs, id)
	return true
}

// KeepValidGames drops refs whose play-by-play fetch failed or produced no
// qualifying events, so every surviving gameId has a persisted game record.
func (t *Team) KeepValidGames() {
	kept := t.Games[:0]
	for _, ref := range t.Games {
		if ref.Valid {
			kept = append(kept, ref)
		}
	}
	t.Games = kept
}
