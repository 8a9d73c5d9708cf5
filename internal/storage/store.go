package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nba_ytd/boxscores/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrDuplicateGame is returned when an append would record a game id twice
var ErrDuplicateGame = errors.New("game already recorded")

// TeamStore is the flat-file dataset of one team: the games-pulled log and the
// player box scores. It is append-only; the refresh job is its only writer.
type TeamStore struct {
	dir          string
	gameLogPath  string
	boxScorePath string
}

// GameLogPath returns <dataDir>/<slug>/ytd_<slug>_games_pulled.csv
func GameLogPath(dataDir, slug string) string {
	return filepath.Join(dataDir, slug, fmt.Sprintf("ytd_%s_games_pulled.csv", slug))
}

// BoxScorePath returns <dataDir>/<slug>/ytd_<slug>_player_boxscore.csv
func BoxScorePath(dataDir, slug string) string {
	return filepath.Join(dataDir, slug, fmt.Sprintf("ytd_%s_player_boxscore.csv", slug))
}

// Open returns the store for a team, creating the team directory and
// header-only files on first use.
func Open(dataDir, slug string) (*TeamStore, error) {
	s := &TeamStore{
		dir:          filepath.Join(dataDir, slug),
		gameLogPath:  GameLogPath(dataDir, slug),
		boxScorePath: BoxScorePath(dataDir, slug),
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	for _, f := range []struct {
		path   string
		header []string
	}{
		{s.gameLogPath, GameLogHeader},
		{s.boxScorePath, BoxScoreHeader},
	} {
		_, err := os.Stat(f.path)
		if err == nil {
			continue
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", f.path, err)
		}
		if err := writeHeaderOnly(f.path, f.header); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", f.path, err)
		}
		log.Info().Str("path", f.path).Msg("Initialized empty data file")
	}

	return s, nil
}

// GameLogPath returns the path of the games-pulled file
func (s *TeamStore) GameLogPath() string { return s.gameLogPath }

// BoxScorePath returns the path of the player box score file
func (s *TeamStore) BoxScorePath() string { return s.boxScorePath }

// LoadGameLog reads every recorded game
func (s *TeamStore) LoadGameLog() ([]*models.GameRecord, error) {
	return ReadGameLog(s.gameLogPath)
}

// LoadBoxScores reads every recorded box score row
func (s *TeamStore) LoadBoxScores() ([]*models.BoxScoreRow, error) {
	return ReadBoxScores(s.boxScorePath)
}

// AppendStats reports how many rows an Append actually wrote
type AppendStats struct {
	GameRows     int
	BoxScoreRows int
}

// Append extends both files. Existing rows are never rewritten.
//
// Box scores are written before the game log: a game only counts as pulled
// once its rows are on disk. Box score rows already present (same player,
// date and matchup) are skipped so that a retry after an interrupted append
// does not duplicate them.
func (s *TeamStore) Append(games []*models.GameRecord, rows []*models.BoxScoreRow) (AppendStats, error) {
	var stats AppendStats
	if len(games) == 0 && len(rows) == 0 {
		return stats, nil
	}

	existingGames, err := s.LoadGameLog()
	if err != nil {
		return stats, err
	}
	known := make(map[string]struct{}, len(existingGames))
	for _, g := range existingGames {
		known[g.GameID] = struct{}{}
	}
	gameRecords := make([][]string, 0, len(games))
	for _, g := range games {
		if _, dup := known[g.GameID]; dup {
			return stats, fmt.Errorf("%w: %s", ErrDuplicateGame, g.GameID)
		}
		known[g.GameID] = struct{}{}
		gameRecords = append(gameRecords, encodeGame(g))
	}

	existingRows, err := s.LoadBoxScores()
	if err != nil {
		return stats, err
	}
	seen := make(map[string]struct{}, len(existingRows))
	for _, r := range existingRows {
		seen[boxScoreKey(r.Player, r.DateString(), r.Matchup)] = struct{}{}
	}
	rowRecords := make([][]string, 0, len(rows))
	for _, r := range rows {
		key := boxScoreKey(r.Player, r.DateString(), r.Matchup)
		if _, dup := seen[key]; dup {
			log.Warn().
				Str("player", r.Player).
				Str("date", r.DateString()).
				Str("matchup", r.Matchup).
				Msg("Box score row already on disk, skipping")
			continue
		}
		seen[key] = struct{}{}
		rowRecords = append(rowRecords, encodeBoxScore(r))
	}

	if err := appendRecords(s.boxScorePath, rowRecords); err != nil {
		return stats, err
	}
	stats.BoxScoreRows = len(rowRecords)

	if err := appendRecords(s.gameLogPath, gameRecords); err != nil {
		return stats, err
	}
	stats.GameRows = len(gameRecords)

	return stats, nil
}
