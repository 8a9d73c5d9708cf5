package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nba_ytd/boxscores/internal/client"
	"nba_ytd/boxscores/internal/config"
	"nba_ytd/boxscores/internal/lock"
	"nba_ytd/boxscores/internal/logging"
	"nba_ytd/boxscores/internal/metrics"
	"nba_ytd/boxscores/internal/models"
	"nba_ytd/boxscores/internal/refresh"
	"nba_ytd/boxscores/internal/repository"
	"nba_ytd/boxscores/internal/retry"
	"nba_ytd/boxscores/internal/scheduler"
	"nba_ytd/boxscores/internal/storage"

	"github.com/rs/zerolog/log"
)

const lockPrefix = "nba:refresh:"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.MustLoad()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <team>\n", os.Args[0])
		return 2
	}

	team, err := models.LookupTeam(os.Args[1])
	if err != nil {
		log.Error().Err(err).Str("team", os.Args[1]).Msg("Unknown team")
		return 1
	}

	log.Info().
		Str("env", cfg.AppEnv).
		Str("team", team.FullName).
		Str("season", cfg.Season).
		Str("data_dir", cfg.DataDir).
		Msg("Starting box score refresh")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	store, err := storage.Open(cfg.DataDir, team.Slug())
	if err != nil {
		log.Error().Err(err).Msg("Failed to open team storage")
		return 1
	}

	nba := client.NewClient(cfg.NBABaseURL, cfg.NBATimeout)

	checks := make(map[string]metrics.HealthCheck)

	// Optional Postgres mirror
	var mirror refresh.Mirror
	if cfg.DatabaseURL != "" {
		db, err := repository.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to database - continuing without mirror")
		} else {
			defer db.Close()
			mirror = db
			checks["database"] = db.Health
			reconcileMirror(ctx, db, team, store)
		}
	}

	// Optional Redis team lock
	var locker refresh.Locker
	if cfg.RedisURL != "" {
		rdb, err := lock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without team lock")
		} else {
			defer rdb.Close()
			locker = lock.NewRedisLocker(rdb, lockPrefix, cfg.LockTTL)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	engine := refresh.NewEngine(nba, refresh.Options{
		Season:         cfg.Season,
		MaxGamesPerRun: cfg.MaxGamesPerRun,
		FetchDelay:     cfg.FetchDelay,
		Retry: retry.Policy{
			MaxAttempts: cfg.FetchMaxAttempts,
			Delay:       cfg.FetchRetryDelay,
			Classifier:  retry.IsRetryable,
		},
	}, mirror, locker)

	if !cfg.EnableScheduler {
		return runOnce(ctx, cfg, engine, team, store)
	}
	return runScheduled(ctx, cfg, engine, team, store, checks)
}

// runOnce performs a single refresh and maps its outcome to an exit code
func runOnce(ctx context.Context, cfg *config.Config, engine *refresh.Engine, team *models.Team, store *storage.TeamStore) int {
	result, err := engine.Run(ctx, team, store)

	if cfg.PushgatewayURL != "" {
		if pushErr := metrics.Push(cfg.PushgatewayURL, "nba_refresh", team.Slug()); pushErr != nil {
			log.Warn().Err(pushErr).Msg("Failed to push metrics")
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Refresh interrupted")
		}
		return 1
	}
	if result.Remaining > 0 {
		log.Info().
			Int("remaining", result.Remaining).
			Msg("More games pending, run again to continue")
	}
	return 0
}

// runScheduled refreshes on the cron schedule until a shutdown signal
func runScheduled(ctx context.Context, cfg *config.Config, engine *refresh.Engine, team *models.Team, store *storage.TeamStore, checks map[string]metrics.HealthCheck) int {
	srv := metrics.NewServer(cfg.MetricsPort, checks)
	go func() {
		log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	sched := scheduler.NewScheduler("refresh_"+team.Slug(), cfg.RefreshCron, func(ctx context.Context) error {
		_, err := engine.Run(ctx, team, store)
		return err
	})

	log.Info().Str("schedule", cfg.RefreshCron).Msg("Starting scheduler...")
	if err := sched.Start(ctx, cfg.InitialSyncEnabled); err != nil {
		log.Error().Err(err).Msg("Failed to start scheduler")
		return 1
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Metrics server shutdown failed")
	}

	log.Info().Msg("Refresh worker shutdown complete")
	return 0
}

// reconcileMirror re-mirrors games an earlier failed mirror write left out.
// The CSV files stay authoritative, so failures only warn.
func reconcileMirror(ctx context.Context, db *repository.Database, team *models.Team, store *storage.TeamStore) {
	games, err := store.LoadGameLog()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load game log for mirror reconcile")
		return
	}
	rows, err := store.LoadBoxScores()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load box scores for mirror reconcile")
		return
	}

	n, err := db.Reconcile(ctx, team, games, rows)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to reconcile database mirror")
		metrics.RecordError("mirror", "reconcile")
		return
	}
	if n > 0 {
		log.Info().Int("games", n).Msg("Reconciled database mirror")
	}
}
