package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application logger from the parsed CLI options. An
// unrecognized level falls back to info so a typo still produces output
// instead of a dead pipeline.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
