package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

var seasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Config holds all application configuration
type Config struct {
	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	DataDir  string `envconfig:"DATA_DIR" default:"data"`

	// Stats provider
	Season     string        `envconfig:"NBA_SEASON" default:"2020-21"`
	NBABaseURL string        `envconfig:"NBA_BASE_URL" default:"https://stats.nba.com/stats"`
	NBATimeout time.Duration `envconfig:"NBA_TIMEOUT" default:"30s"`

	// Refresh
	MaxGamesPerRun   int           `envconfig:"MAX_GAMES_PER_RUN" default:"5"`
	FetchDelay       time.Duration `envconfig:"FETCH_DELAY" default:"5s"`
	FetchMaxAttempts int           `envconfig:"FETCH_MAX_ATTEMPTS" default:"3"`
	FetchRetryDelay  time.Duration `envconfig:"FETCH_RETRY_DELAY" default:"5s"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	RefreshCron        string `envconfig:"REFRESH_CRON" default:"0 */6 * * *"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`

	// Optional sinks; empty disables them
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	LockTTL        time.Duration `envconfig:"LOCK_TTL" default:"10m"`
	PushgatewayURL string        `envconfig:"PUSHGATEWAY_URL"`

	// Dashboard
	DashboardPort int    `envconfig:"DASHBOARD_PORT" default:"8050"`
	DashboardTeam string `envconfig:"DASHBOARD_TEAM" default:"timberwolves"`
	DefaultPlayer string `envconfig:"DEFAULT_PLAYER" default:"Anthony Edwards"`
	CORSOrigins   string `envconfig:"CORS_ORIGINS" default:"*"`

	// Monitoring
	MetricsPort int `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !seasonPattern.MatchString(c.Season) {
		return fmt.Errorf("NBA_SEASON must look like 2020-21, got %q", c.Season)
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	if c.MaxGamesPerRun < 1 {
		return fmt.Errorf("MAX_GAMES_PER_RUN must be at least 1")
	}

	if c.FetchMaxAttempts < 1 {
		return fmt.Errorf("FETCH_MAX_ATTEMPTS must be at least 1")
	}

	if c.FetchDelay < 0 || c.FetchRetryDelay < 0 {
		return fmt.Errorf("FETCH_DELAY and FETCH_RETRY_DELAY must not be negative")
	}

	if c.EnableScheduler {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("REFRESH_CRON is invalid: %w", err)
		}
	}

	if c.RedisURL != "" && c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive when REDIS_URL is set")
	}

	return nil
}

// CORSAllowedOrigins splits CORS_ORIGINS on commas
func (c *Config) CORSAllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
