package shared

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog for the bot service. Console output is the
// default; structured selects JSON lines.
func SetupLogger(level string, structured bool) zerolog.Logger {
	return newLogger(os.Stderr, level, structured)
}

func newLogger(w io.Writer, level string, structured bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if structured {
		zerolog.TimeFieldFormat = time.RFC3339Nano
	} else {
		w = zerolog.ConsoleWriter{Out: w}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// SetupClientLogger configures the logger used by client-side commands
func SetupClientLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level})
}
