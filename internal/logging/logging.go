package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger: pretty console output in
// development, JSON otherwise, level from LOG_LEVEL (default info).
func Setup(appEnv, level string) {
	Configure(os.Stdout, appEnv, level)
}

// Configure is Setup with an explicit destination
func Configure(out io.Writer, appEnv, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = out
	if appEnv == "development" {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	parsed := zerolog.InfoLevel
	if lvl := strings.TrimSpace(level); lvl != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(lvl)); err == nil {
			parsed = l
		}
	}
	zerolog.SetGlobalLevel(parsed)
}
