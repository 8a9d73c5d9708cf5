package repository

import (
	"context"
	"fmt"
	"time"

	"nba_ytd/boxscores/internal/metrics"
	"nba_ytd/boxscores/internal/models"

	"github.com/jackc/pgx/v5"
)

// BoxScoreRepository handles player_boxscores operations
type BoxScoreRepository struct {
	db *Database
}

// InsertMany inserts box score rows for a team as one batch, skipping rows
// already present. Rows must carry their game id.
func (r *BoxScoreRepository) InsertMany(ctx context.Context, teamID int, rows []*models.BoxScoreRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO player_boxscores (
			team_id, game_id, player, team, game_date, matchup, wl, min,
			pts, fgm, fga, fg3m, fg3a, ftm, fta, oreb, dreb, reb, ast, stl, blk, tov, pf, plus_minus
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (team_id, game_id, player) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		if row.GameID == "" {
			return 0, fmt.Errorf("box score row for %s on %s has no game id", row.Player, row.DateString())
		}
		batch.Queue(query,
			teamID, row.GameID, row.Player, row.Team, row.Date, row.Matchup, string(row.WL), row.Min,
			row.Pts, row.FGM, row.FGA, row.FG3M, row.FG3A, row.FTM, row.FTA,
			row.OReb, row.DReb, row.Reb, row.Ast, row.Stl, row.Blk, row.Tov, row.PF, row.PlusMinus,
		)
	}

	start := time.Now()
	results := r.db.Pool.SendBatch(ctx, batch)

	var inserted int64
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			metrics.RecordDBQuery("insert", "player_boxscores", "error", time.Since(start).Seconds())
			return 0, fmt.Errorf("failed to insert box score rows: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	if err := results.Close(); err != nil {
		metrics.RecordDBQuery("insert", "player_boxscores", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}
	metrics.RecordDBQuery("insert", "player_boxscores", "success", time.Since(start).Seconds())

	return inserted, nil
}
