package repository

import (
	"context"
	"fmt"
	"time"

	"nba_ytd/boxscores/internal/metrics"
	"nba_ytd/boxscores/internal/models"

	"github.com/rs/zerolog/log"
)

// GameRepository handles games_pulled operations
type GameRepository struct {
	db *Database
}

// InsertMany inserts games for a team in one transaction, skipping games
// already present. Returns how many rows were new.
func (r *GameRepository) InsertMany(ctx context.Context, teamID int, games []*models.GameRecord) (int64, error) {
	if len(games) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO games_pulled (team_id, game_id, game_date, season, matchup, wl)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id, game_id) DO NOTHING
	`

	start := time.Now()
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inserted int64
	for _, g := range games {
		tag, err := tx.Exec(ctx, query, teamID, g.GameID, g.Date, g.Season, g.Matchup, string(g.WL))
		if err != nil {
			metrics.RecordDBQuery("insert", "games_pulled", "error", time.Since(start).Seconds())
			return 0, fmt.Errorf("failed to insert game %s: %w", g.GameID, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.RecordDBQuery("insert", "games_pulled", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("failed to commit games: %w", err)
	}
	metrics.RecordDBQuery("insert", "games_pulled", "success", time.Since(start).Seconds())

	log.Debug().
		Int("team_id", teamID).
		Int("games", len(games)).
		Int64("inserted", inserted).
		Msg("Games mirrored")

	return inserted, nil
}

// ListByTeam retrieves a team's games ordered by game id
func (r *GameRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.GameRecord, error) {
	query := `
		SELECT game_id, game_date, season, matchup, wl
		FROM games_pulled
		WHERE team_id = $1
		ORDER BY game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.GameRecord
	for rows.Next() {
		var g models.GameRecord
		var wl string
		if err := rows.Scan(&g.GameID, &g.Date, &g.Season, &g.Matchup, &wl); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g.WL = models.Result(wl)
		games = append(games, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
