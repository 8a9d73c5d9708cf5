package refresh

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"nba_ytd/boxscores/internal/lock"
	"nba_ytd/boxscores/internal/metrics"
	"nba_ytd/boxscores/internal/models"
	"nba_ytd/boxscores/internal/retry"
	"nba_ytd/boxscores/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Provider is the remote source of game logs and box scores
type Provider interface {
	FetchTeamGameLog(ctx context.Context, teamID int, season string) ([]models.GameLogInput, error)
	FetchBoxScore(ctx context.Context, gameID string) ([]models.PlayerStatsInput, error)
}

// Mirror receives a copy of every appended batch. Failures are logged, not fatal.
type Mirror interface {
	Mirror(ctx context.Context, team *models.Team, games []*models.GameRecord, rows []*models.BoxScoreRow) error
}

// Locker serializes runs for the same team across processes
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

// Options controls a refresh run
type Options struct {
	Season         string
	MaxGamesPerRun int
	// FetchDelay is the minimum spacing between provider calls; zero disables pacing
	FetchDelay time.Duration
	Retry      retry.Policy
}

// DefaultOptions returns the production settings
func DefaultOptions() Options {
	return Options{
		Season:         "2020-21",
		MaxGamesPerRun: 5,
		FetchDelay:     5 * time.Second,
		Retry:          retry.DefaultPolicy(),
	}
}

// Result summarizes a refresh run
type Result struct {
	RunID                string
	Skipped              bool // another run held the team lock
	RemoteGames          int
	NewGames             int
	Processed            int
	Remaining            int
	GameRowsAppended     int
	BoxScoreRowsAppended int
}

// Engine runs incremental refreshes
type Engine struct {
	provider Provider
	opts     Options
	mirror   Mirror
	locker   Locker
	limiter  *rate.Limiter
}

// NewEngine creates a refresh engine. mirror and locker are optional.
func NewEngine(provider Provider, opts Options, mirror Mirror, locker Locker) *Engine {
	limit := rate.Inf
	if opts.FetchDelay > 0 {
		limit = rate.Every(opts.FetchDelay)
	}
	if opts.MaxGamesPerRun <= 0 {
		opts.MaxGamesPerRun = DefaultOptions().MaxGamesPerRun
	}

	return &Engine{
		provider: provider,
		opts:     opts,
		mirror:   mirror,
		locker:   locker,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run extends the team's files with the games the provider knows about and
// the store does not. At most MaxGamesPerRun games are fetched; the rest are
// left for later runs.
//
// Games fully processed before a failure are still appended, then the error
// is returned. A game is never recorded without its box score rows.
func (e *Engine) Run(ctx context.Context, team *models.Team, store *storage.TeamStore) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	logger := log.With().
		Str("run_id", result.RunID).
		Str("team", team.Slug()).
		Logger()

	if e.locker != nil {
		release, err := e.locker.Acquire(ctx, team.Slug())
		if errors.Is(err, lock.ErrLocked) {
			logger.Warn().Msg("Another refresh holds the team lock, skipping run")
			result.Skipped = true
			metrics.RecordRefresh(team.Slug(), "skipped", time.Since(start).Seconds())
			return result, nil
		}
		if err != nil {
			metrics.RecordRefresh(team.Slug(), "error", time.Since(start).Seconds())
			return result, err
		}
		defer func() {
			// Release even if ctx was cancelled mid-run
			if err := release(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("Failed to release team lock")
			}
		}()
	}

	err := e.run(ctx, logger, team, store, result)

	status := "success"
	if err != nil {
		status = "error"
		metrics.RecordError("refresh", errorType(err))
	}
	metrics.RecordRefresh(team.Slug(), status, time.Since(start).Seconds())
	metrics.SetGamesRemaining(team.Slug(), result.Remaining)

	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Int("remote_games", result.RemoteGames).
		Int("new_games", result.NewGames).
		Int("processed", result.Processed).
		Int("remaining", result.Remaining).
		Int("game_rows_appended", result.GameRowsAppended).
		Int("boxscore_rows_appended", result.BoxScoreRowsAppended).
		Dur("duration", time.Since(start)).
		Msg("Refresh run finished")

	return result, err
}

func (e *Engine) run(ctx context.Context, logger zerolog.Logger, team *models.Team, store *storage.TeamStore, result *Result) error {
	local, err := store.LoadGameLog()
	if err != nil {
		return fmt.Errorf("failed to load game log: %w", err)
	}
	known := make(map[string]struct{}, len(local))
	for _, g := range local {
		known[g.GameID] = struct{}{}
	}

	remote, err := e.fetchGameLog(ctx, team)
	if err != nil {
		return err
	}
	result.RemoteGames = len(remote)

	// Only remote - local: a game never leaves the local log
	var pending []*models.GameRecord
	for _, g := range remote {
		if _, ok := known[g.GameID]; !ok {
			pending = append(pending, g)
		}
	}
	result.NewGames = len(pending)

	batch := pending
	if len(batch) > e.opts.MaxGamesPerRun {
		batch = batch[:e.opts.MaxGamesPerRun]
	}
	result.Remaining = len(pending)

	if len(pending) == 0 {
		logger.Info().Int("remote_games", len(remote)).Msg("No new games to pull")
		return nil
	}
	logger.Info().
		Int("new_games", len(pending)).
		Int("batch", len(batch)).
		Int("remaining", len(pending)-len(batch)).
		Msg("Pulling new games")

	var (
		games  []*models.GameRecord
		rows   []*models.BoxScoreRow
		runErr error
	)
	for _, game := range batch {
		gameRows, err := e.fetchGameRows(ctx, team, game)
		if err != nil {
			runErr = err
			break
		}

		games = append(games, game)
		rows = append(rows, gameRows...)
		result.Processed++
		result.Remaining--

		logger.Debug().
			Str("game_id", game.GameID).
			Str("matchup", game.Matchup).
			Int("rows", len(gameRows)).
			Msg("Game processed")
	}

	if len(games) > 0 {
		stats, err := store.Append(games, rows)
		result.GameRowsAppended = stats.GameRows
		result.BoxScoreRowsAppended = stats.BoxScoreRows
		metrics.RecordRowsAppended(team.Slug(), "games_pulled", stats.GameRows)
		metrics.RecordRowsAppended(team.Slug(), "player_boxscore", stats.BoxScoreRows)
		if err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to append rows: %w", err))
		}

		if e.mirror != nil {
			if err := e.mirror.Mirror(ctx, team, games, rows); err != nil {
				logger.Warn().Err(err).Msg("Failed to mirror refresh to database")
				metrics.RecordError("mirror", "write")
			}
		}
	}

	return runErr
}

// fetchGameLog returns the team's remote games, deduplicated and sorted by id
func (e *Engine) fetchGameLog(ctx context.Context, team *models.Team) ([]*models.GameRecord, error) {
	var inputs []models.GameLogInput
	err := e.opts.Retry.Do(ctx, func(attempt int) error {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		inputs, err = e.provider.FetchTeamGameLog(ctx, team.TeamID, e.opts.Season)
		if err != nil && retry.IsRetryable(err) {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Game log fetch failed")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log: %w", err)
	}

	byID := make(map[string]*models.GameRecord, len(inputs))
	for i := range inputs {
		game, err := inputs[i].ToGameRecord(e.opts.Season)
		if err != nil {
			return nil, fmt.Errorf("failed to convert game log: %w", err)
		}
		byID[game.GameID] = game
	}

	games := make([]*models.GameRecord, 0, len(byID))
	for _, g := range byID {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })

	return games, nil
}

// fetchGameRows fetches one game's box score and keeps the team's rows with minutes
func (e *Engine) fetchGameRows(ctx context.Context, team *models.Team, game *models.GameRecord) ([]*models.BoxScoreRow, error) {
	var inputs []models.PlayerStatsInput
	err := e.opts.Retry.Do(ctx, func(attempt int) error {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		inputs, err = e.provider.FetchBoxScore(ctx, game.GameID)
		if err != nil && retry.IsRetryable(err) {
			log.Warn().Err(err).Str("game_id", game.GameID).Int("attempt", attempt).Msg("Box score fetch failed")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch box score for game %s: %w", game.GameID, err)
	}

	var rows []*models.BoxScoreRow
	for i := range inputs {
		in := &inputs[i]
		if !in.PlayedFor(team.TeamID) {
			continue
		}
		row, err := in.ToBoxScoreRow(game)
		if err != nil {
			return nil, fmt.Errorf("failed to convert box score for game %s: %w", game.GameID, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, models.ErrSchema):
		return "schema"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case retry.IsPermanent(err):
		return "permanent"
	default:
		return "transient"
	}
}
