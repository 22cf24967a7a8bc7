// Package observability provides the logger and Prometheus metrics shared
// by the driver and its adapters.
package observability

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
)

// NewLogger builds the process logger from settings. The json format is
// meant for batch schedulers that collect logs; text is for terminals.
func NewLogger(s *config.Settings) *slog.Logger {
	return newLogger(os.Stderr, s.LogLevel, s.LogFormat)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := parseLevel(level)
	if format == "text" {
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(lvl),
			ReportTimestamp: true,
			Prefix:          "modedriver",
		})
		return slog.New(h)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
