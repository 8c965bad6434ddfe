package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Terminals get the console
// writer; anything else (pipes, log collectors) gets JSON lines.
// An empty level falls back to LOGLEVEL, then info.
func Setup(level string) {
	SetupWriter(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()), level)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, console bool, level string) {
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}

	if level == "" {
		level = os.Getenv("LOGLEVEL")
	}
	lvl, known := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	if !known {
		log.Warn().Msgf("Unknown log level '%s', defaulting to info.", level)
	}
}

// ParseLevel maps a level name to a zerolog level. Unknown names report false and map to info.
func ParseLevel(s string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, true
	case "info", "":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// ForLoad returns a child logger tagged with a load id
func ForLoad(loadID string) zerolog.Logger {
	return log.With().Str("load_id", loadID).Logger()
}
