package player

import "fmt"

// Player is a skater keyed by the league-wide numeric id. Records created
// from a roster carry PositionCode; records back-filled from an individual
// profile lookup carry Position instead. Both are kept so the serialized
// shape matches the source the record came from.
type Player struct {
	ID            int64  `json:"-"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	SweaterNumber int    `json:"sweaterNumber"`
	PositionCode  string `json:"positionCode,omitempty"`
	Position      string `json:"position,omitempty"`
	Headshot      string `json:"headshot"`
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if p.FirstName == "" && p.LastName == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
