package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AppEnv:           "development",
		DataDir:          "data",
		Season:           "2020-21",
		MaxGamesPerRun:   5,
		FetchDelay:       5 * time.Second,
		FetchMaxAttempts: 3,
		FetchRetryDelay:  5 * time.Second,
		RefreshCron:      "0 */6 * * *",
		LockTTL:          10 * time.Minute,
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2020-21", cfg.Season)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5, cfg.MaxGamesPerRun)
	assert.Equal(t, 5*time.Second, cfg.FetchDelay)
	assert.Equal(t, 3, cfg.FetchMaxAttempts)
	assert.Equal(t, "https://stats.nba.com/stats", cfg.NBABaseURL)
	assert.False(t, cfg.EnableScheduler)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 8050, cfg.DashboardPort)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("NBA_SEASON", "2021-22")
	t.Setenv("MAX_GAMES_PER_RUN", "10")
	t.Setenv("FETCH_DELAY", "1500ms")
	t.Setenv("ENABLE_SCHEDULER", "true")
	t.Setenv("REFRESH_CRON", "30 3 * * *")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "2021-22", cfg.Season)
	assert.Equal(t, 10, cfg.MaxGamesPerRun)
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchDelay)
	assert.True(t, cfg.EnableScheduler)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.CORSAllowedOrigins())
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("NBA_SEASON", "2020")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad season", func(c *Config) { c.Season = "20-21" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero cap", func(c *Config) { c.MaxGamesPerRun = 0 }},
		{"zero attempts", func(c *Config) { c.FetchMaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.FetchDelay = -time.Second }},
		{"bad cron", func(c *Config) { c.EnableScheduler = true; c.RefreshCron = "every day" }},
		{"redis without ttl", func(c *Config) { c.RedisURL = "redis://localhost:6379"; c.LockTTL = 0 }},
	}

	base := validConfig()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSeasonValidationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any YYYY-YY season label is accepted", prop.ForAll(
		func(year int) bool {
			cfg := validConfig()
			cfg.Season = fmt.Sprintf("%d-%02d", year, (year+1)%100)
			return cfg.Validate() == nil
		},
		gen.IntRange(1946, 2099),
	))

	properties.Property("bare years are rejected", prop.ForAll(
		func(year int) bool {
			cfg := validConfig()
			cfg.Season = fmt.Sprintf("%d", year)
			return cfg.Validate() != nil
		},
		gen.IntRange(1946, 2099),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
