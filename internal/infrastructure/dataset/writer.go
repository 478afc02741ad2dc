package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	sonic "github.com/bytedance/sonic"

	"github.com/rinkcharts/shotmap/internal/domain/team"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
	"github.com/rinkcharts/shotmap/internal/usecase"
)

// File names the downstream visualization layer loads; changing them is a
// breaking change for the consumer.
const (
	TeamsFile   = "teamData.json"
	PlayersFile = "playerData.json"
	GamesFile   = "gameData.json"
)

// Writer serializes the three aggregated maps to pretty-printed JSON files in
// one directory. The std-compatible sonic config sorts map keys, so an
// unchanged upstream produces identical files run over run.
type Writer struct {
	dir    string
	logger *logging.Logger
}

func NewWriter(dir string, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

func (w *Writer) WriteDatasets(ctx context.Context, snap usecase.DatasetSnapshot) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	// Empty datasets still serialize as objects, never null.
	teams := snap.Teams
	if teams == nil {
		teams = map[string]*team.Team{}
	}

	// Numeric ids become string keys, matching the JSON object shape the
	// consumer indexes by.
	players := make(map[string]any, len(snap.Players))
	for id, p := range snap.Players {
		players[strconv.FormatInt(id, 10)] = p
	}
	games := make(map[string]any, len(snap.Games))
	for id, g := range snap.Games {
		games[strconv.FormatInt(id, 10)] = g
	}

	files := []struct {
		name  string
		value any
	}{
		{TeamsFile, teams},
		{PlayersFile, players},
		{GamesFile, games},
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeFile(file.name, file.value); err != nil {
			return err
		}
	}

	w.logger.InfoContext(ctx, "datasets written",
		"dir", w.dir,
		"teams", len(teams),
		"players", len(players),
		"games", len(games),
	)
	return nil
}

func (w *Writer) writeFile(name string, value any) error {
	data, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
