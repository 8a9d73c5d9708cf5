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

	"nba_ytd/boxscores/internal/config"
	"nba_ytd/boxscores/internal/dashboard"
	"nba_ytd/boxscores/internal/logging"
	"nba_ytd/boxscores/internal/models"
	"nba_ytd/boxscores/internal/storage"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	team, err := models.LookupTeam(cfg.DashboardTeam)
	if err != nil {
		log.Fatal().Err(err).Str("team", cfg.DashboardTeam).Msg("Unknown dashboard team")
	}

	path := storage.BoxScorePath(cfg.DataDir, team.Slug())
	dataset, err := dashboard.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to load box scores")
	}
	log.Info().
		Str("team", team.FullName).
		Str("path", path).
		Int("rows", dataset.Len()).
		Int("players", len(dataset.Players())).
		Msg("Box scores loaded")

	server := dashboard.NewServer(dataset, dashboard.Options{
		TeamName:      team.FullName,
		DefaultPlayer: cfg.DefaultPlayer,
		CORSOrigins:   cfg.CORSAllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.DashboardPort),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.DashboardPort).Msg("Starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Dashboard server failed")
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Dashboard shutdown failed")
	}

	log.Info().Msg("Dashboard shutdown complete")
}
