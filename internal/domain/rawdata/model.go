package rawdata

import "time"

// Payload is one upstream API response captured for provenance. EntityType
// names the endpoint family (standings, schedule, roster, play_by_play,
// player) and EntityKey the id it was fetched for.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	Season      string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
