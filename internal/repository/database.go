package repository

import (
	"context"
	"fmt"
	"time"

	"nba_ytd/boxscores/internal/metrics"
	"nba_ytd/boxscores/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database holds the database connection pool and provides access to repositories.
// It mirrors the flat files; the CSVs stay the source of truth.
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Games     *GameRepository
	BoxScores *BoxScoreRepository
}

const schema = `
CREATE TABLE IF NOT EXISTS games_pulled (
	team_id    INTEGER     NOT NULL,
	game_id    TEXT        NOT NULL,
	game_date  DATE        NOT NULL,
	season     TEXT        NOT NULL,
	matchup    TEXT        NOT NULL,
	wl         CHAR(1)     NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (team_id, game_id)
);

CREATE TABLE IF NOT EXISTS player_boxscores (
	team_id     INTEGER     NOT NULL,
	game_id     TEXT        NOT NULL,
	player      TEXT        NOT NULL,
	team        TEXT        NOT NULL,
	game_date   DATE        NOT NULL,
	matchup     TEXT        NOT NULL,
	wl          CHAR(1)     NOT NULL,
	min         INTEGER     NOT NULL,
	pts         INTEGER     NOT NULL,
	fgm         INTEGER     NOT NULL,
	fga         INTEGER     NOT NULL,
	fg3m        INTEGER     NOT NULL,
	fg3a        INTEGER     NOT NULL,
	ftm         INTEGER     NOT NULL,
	fta         INTEGER     NOT NULL,
	oreb        INTEGER     NOT NULL,
	dreb        INTEGER     NOT NULL,
	reb         INTEGER     NOT NULL,
	ast         INTEGER     NOT NULL,
	stl         INTEGER     NOT NULL,
	blk         INTEGER     NOT NULL,
	tov         INTEGER     NOT NULL,
	pf          INTEGER     NOT NULL,
	plus_minus  INTEGER     NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (team_id, game_id, player)
);
`

// NewDatabase creates a new database connection pool, ensures the schema and
// initializes repositories
func NewDatabase(ctx context.Context, databaseURL string) (*Database, error) {
	// Configure connection pool
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// The refresh job is a single sequential writer
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Create connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}
	db.Games = &GameRepository{db: db}
	db.BoxScores = &BoxScoreRepository{db: db}

	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the mirror tables if they do not exist
func (db *Database) EnsureSchema(ctx context.Context) error {
	start := time.Now()
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		metrics.RecordDBQuery("create", "schema", "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	metrics.RecordDBQuery("create", "schema", "success", time.Since(start).Seconds())
	return nil
}

// Mirror inserts the games and box score rows of a refresh run. Rows that
// are already present are left alone.
func (db *Database) Mirror(ctx context.Context, team *models.Team, games []*models.GameRecord, rows []*models.BoxScoreRow) error {
	gamesInserted, err := db.Games.InsertMany(ctx, team.TeamID, games)
	if err != nil {
		return err
	}

	rowsInserted, err := db.BoxScores.InsertMany(ctx, team.TeamID, rows)
	if err != nil {
		return err
	}

	log.Info().
		Str("team", team.Slug()).
		Int64("games_inserted", gamesInserted).
		Int64("rows_inserted", rowsInserted).
		Msg("Mirrored refresh to database")

	return nil
}

// Reconcile mirrors the local games the database is missing, for instance
// after a run whose mirror write failed. Box score rows read from CSV carry
// no game id, so they are matched to their game by date and matchup.
// It returns the number of games re-mirrored.
func (db *Database) Reconcile(ctx context.Context, team *models.Team, games []*models.GameRecord, rows []*models.BoxScoreRow) (int, error) {
	stored, err := db.Games.ListByTeam(ctx, team.TeamID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(stored))
	for _, g := range stored {
		have[g.GameID] = struct{}{}
	}

	missing := make(map[string]*models.GameRecord)
	var missingGames []*models.GameRecord
	for _, g := range games {
		if _, ok := have[g.GameID]; ok {
			continue
		}
		missing[g.DateString()+","+g.Matchup] = g
		missingGames = append(missingGames, g)
	}
	if len(missingGames) == 0 {
		return 0, nil
	}

	var missingRows []*models.BoxScoreRow
	for _, r := range rows {
		g, ok := missing[r.DateString()+","+r.Matchup]
		if !ok {
			continue
		}
		keyed := *r
		keyed.GameID = g.GameID
		missingRows = append(missingRows, &keyed)
	}

	if err := db.Mirror(ctx, team, missingGames, missingRows); err != nil {
		return 0, err
	}
	return len(missingGames), nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
