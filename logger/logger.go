// Package logger builds the *slog.Logger used by the command line and the
// HTTP client.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New returns a logger writing text records to stderr at Info level unless
// configured otherwise. WithPretty wins over WithJSON.
func New(opts ...Option) *slog.Logger {
	cfg := config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}

	var w io.Writer
	switch len(cfg.writers) {
	case 0:
		w = os.Stderr
	case 1:
		w = cfg.writers[0]
	default:
		w = io.MultiWriter(cfg.writers...)
	}

	switch {
	case cfg.pretty:
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(cfg.level),
			ReportTimestamp: true,
			ReportCaller:    cfg.source,
			TimeFormat:      time.Kitchen,
		})
		return slog.New(h)
	case cfg.json:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.source}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.source}))
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func charmLevel(l slog.Level) charmlog.Level {
	if l <= slog.LevelDebug {
		return charmlog.DebugLevel
	}
	return charmlog.InfoLevel
}
