// Package logger holds the process-wide slog logger used by pools and arrays
// that were not given one explicitly.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvLevel names the environment variable read by FromEnv.
const EnvLevel = "POOLKIT_LOG"

// L is the global logger instance. It discards all output by default.
// Call Init or FromEnv to enable logging.
var L = discard()

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Path    string     // Log file path. Empty means stderr
	Level   slog.Level // Minimum log level
	JSON    bool       // JSON records instead of logfmt-style text
}

// Init configures logging. Call from main() before any pool is created.
func Init(opts Options) error {
	if !opts.Enabled {
		L = discard()
		return nil
	}

	var w io.Writer = os.Stderr
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		w = f
	}

	L = New(w, opts.Level, opts.JSON)
	return nil
}

// FromEnv enables stderr logging at the level named by POOLKIT_LOG.
// An unset variable leaves L untouched.
func FromEnv() error {
	v, ok := os.LookupEnv(EnvLevel)
	if !ok || v == "" {
		return nil
	}
	level, err := ParseLevel(v)
	if err != nil {
		return err
	}
	return Init(Options{Enabled: true, Level: level})
}

// New builds a logger writing to w.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// Default returns L, or a discarding logger when L was set to nil.
func Default() *slog.Logger {
	if L == nil {
		return discard()
	}
	return L
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logger: unknown level %q", s)
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
