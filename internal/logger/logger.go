package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config selects the output format and minimum level.
type Config struct {
	Env   string // development writes human-readable lines, anything else JSON
	Level string // trace, debug, info, warn, error
	Out   io.Writer
}

// New builds the application logger.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = cfg.Out
	if w == nil {
		w = os.Stdout
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}
