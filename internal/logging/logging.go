// Package logging builds the process slog logger from configuration and
// environment overrides.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mesh-intelligence/lattice/internal/config"
)

// Environment variables that override the configured level and format.
const (
	EnvLogLevel  = "LATTICE_LOG_LEVEL"
	EnvLogFormat = "LATTICE_LOG_FORMAT"
)

// Options controls the handler built by New.
type Options struct {
	Level  slog.Level
	Format string
}

// FromConfig derives Options from cfg and applies environment overrides.
func FromConfig(cfg config.Config) Options {
	opts := Options{Level: slog.LevelInfo, Format: config.LogFormatText}
	if lvl, ok := ParseLevel(cfg.LogLevel); ok {
		opts.Level = lvl
	}
	if f, ok := parseFormat(cfg.LogFormat); ok {
		opts.Format = f
	}
	applyEnvOverrides(&opts)
	return opts
}

func applyEnvOverrides(opts *Options) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		opts.Level = lvl
	}
	if f, ok := parseFormat(os.Getenv(EnvLogFormat)); ok {
		opts.Format = f
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// Setup builds a stderr logger from cfg and installs it as the slog default.
func Setup(cfg config.Config) *slog.Logger {
	logger := New(os.Stderr, FromConfig(cfg))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level. The second result is false
// for empty or unknown names.
func ParseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func parseFormat(raw string) (string, bool) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case config.LogFormatText, config.LogFormatJSON:
		return f, true
	default:
		return "", false
	}
}
