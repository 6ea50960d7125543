package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options selects the slog handler for the process.
type Options struct {
	Level  string
	Format string // "json" or "text"
}

// New builds the process logger. JSON is the default; anything but "text" selects it.
func New(w io.Writer, opts Options) *slog.Logger {
	cfg := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		return slog.New(slog.NewTextHandler(w, cfg))
	}
	return slog.New(slog.NewJSONHandler(w, cfg))
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
