package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/rinkcharts/shotmap/internal/domain/game"
	"github.com/rinkcharts/shotmap/internal/domain/player"
	"github.com/rinkcharts/shotmap/internal/domain/team"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
	"github.com/rinkcharts/shotmap/internal/usecase"
)

func sampleSnapshot() usecase.DatasetSnapshot {
	bos := team.New("BOS", "Boston Bruins", "https://assets.nhle.com/logos/BOS.svg")
	bos.Games = []team.GameRef{{GameID: 2023020100, Date: "2023-10-11", Opponent: "TOR"}}
	bos.PlayerIDs = []int64{8478401}

	return usecase.DatasetSnapshot{
		Teams: map[string]*team.Team{"BOS": bos},
		Players: map[int64]player.Player{
			8478401: {ID: 8478401, FirstName: "David", LastName: "Pastrnak", SweaterNumber: 88, PositionCode: "R"},
			8480000: {ID: 8480000, FirstName: "Late", LastName: "Callup", Position: "C"},
		},
		Games: map[int64]game.Game{
			2023020100: {
				ID: 2023020100,
				Events: []game.Event{{
					Play: map[string]any{
						"typeDescKey": "goal",
						"details":     map[string]any{"xCoord": float64(45), "yCoord": float64(-10)},
					},
					TeamName:   "Boston Bruins",
					TeamAbbrev: "BOS",
					PlayerID:   8478401,
					IsHomeTeam: true,
				}},
				Periods:  3,
				HomeTeam: "Boston Bruins",
				AwayTeam: "Toronto Maple Leafs",
				Date:     "2023-10-11T23:00:00Z",
			},
		},
	}
}

func TestWriter_WriteDatasets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewWriter(dir, logging.NewNop())

	if err := writer.WriteDatasets(t.Context(), sampleSnapshot()); err != nil {
		t.Fatalf("write datasets failed: %v", err)
	}

	teamsRaw, err := os.ReadFile(filepath.Join(dir, TeamsFile))
	if err != nil {
		t.Fatalf("read %s: %v", TeamsFile, err)
	}
	var teams map[string]map[string]any
	if err := sonic.Unmarshal(teamsRaw, &teams); err != nil {
		t.Fatalf("decode %s: %v", TeamsFile, err)
	}
	bos, ok := teams["BOS"]
	if !ok {
		t.Fatalf("expected BOS key in teams, got %v", teams)
	}
	if bos["name"] != "Boston Bruins" {
		t.Fatalf("unexpected team record: %v", bos)
	}
	if _, ok := bos["abbrev"]; ok {
		t.Fatal("abbrev is the map key and must not repeat inside the record")
	}

	playersRaw, err := os.ReadFile(filepath.Join(dir, PlayersFile))
	if err != nil {
		t.Fatalf("read %s: %v", PlayersFile, err)
	}
	var players map[string]map[string]any
	if err := sonic.Unmarshal(playersRaw, &players); err != nil {
		t.Fatalf("decode %s: %v", PlayersFile, err)
	}
	roster, ok := players["8478401"]
	if !ok {
		t.Fatalf("expected string player key, got %v", players)
	}
	if roster["positionCode"] != "R" {
		t.Fatalf("roster player must keep positionCode: %v", roster)
	}
	if _, ok := roster["position"]; ok {
		t.Fatalf("roster player must not carry position: %v", roster)
	}
	backfilled := players["8480000"]
	if backfilled["position"] != "C" {
		t.Fatalf("backfilled player must keep position: %v", backfilled)
	}
	if _, ok := backfilled["positionCode"]; ok {
		t.Fatalf("backfilled player must not carry positionCode: %v", backfilled)
	}

	gamesRaw, err := os.ReadFile(filepath.Join(dir, GamesFile))
	if err != nil {
		t.Fatalf("read %s: %v", GamesFile, err)
	}
	var games map[string]map[string]any
	if err := sonic.Unmarshal(gamesRaw, &games); err != nil {
		t.Fatalf("decode %s: %v", GamesFile, err)
	}
	g, ok := games["2023020100"]
	if !ok {
		t.Fatalf("expected string game key, got %v", games)
	}
	events, _ := g["events"].([]any)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", g["events"])
	}
	event, _ := events[0].(map[string]any)
	// The raw play keys and the resolved attribution must sit side by side.
	if event["typeDescKey"] != "goal" || event["teamAbbrev"] != "BOS" || event["isHomeTeam"] != true {
		t.Fatalf("event merge lost fields: %v", event)
	}
	if event["playerId"] != float64(8478401) {
		t.Fatalf("expected playerId in event, got %v", event["playerId"])
	}

	if !bytes.Contains(gamesRaw, []byte("\n  ")) {
		t.Fatal("expected pretty-printed output")
	}
}

func TestWriter_DeterministicFiles(t *testing.T) {
	t.Parallel()

	snap := sampleSnapshot()
	tor := team.New("TOR", "Toronto Maple Leafs", "https://assets.nhle.com/logos/TOR.svg")
	tor.Games = []team.GameRef{{GameID: 2023020100, Date: "2023-10-11", Opponent: "BOS"}}
	tor.PlayerIDs = []int64{8479318}
	snap.Teams["TOR"] = tor
	snap.Players[8479318] = player.Player{ID: 8479318, FirstName: "Auston", LastName: "Matthews", PositionCode: "C"}

	first := t.TempDir()
	second := t.TempDir()
	if err := NewWriter(first, logging.NewNop()).WriteDatasets(t.Context(), snap); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := NewWriter(second, logging.NewNop()).WriteDatasets(t.Context(), snap); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	for _, name := range []string{TeamsFile, PlayersFile, GamesFile} {
		a, err := os.ReadFile(filepath.Join(first, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(second, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%s differs between identical writes:\n%s\n---\n%s", name, a, b)
		}
	}
}

func TestWriter_CreatesOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	writer := NewWriter(dir, logging.NewNop())

	if err := writer.WriteDatasets(t.Context(), usecase.DatasetSnapshot{}); err != nil {
		t.Fatalf("write datasets failed: %v", err)
	}
	// Even a zero-value snapshot serializes every dataset as an object.
	for _, name := range []string{TeamsFile, PlayersFile, GamesFile} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s written: %v", name, err)
		}
		if string(bytes.TrimSpace(raw)) != "{}" {
			t.Fatalf("expected empty object in %s, got %q", name, raw)
		}
	}
}
