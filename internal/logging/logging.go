// Package logging builds the application's slog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/javiermolinar/chronoblock/internal/config"
)

// Option adjusts a logger before it is built.
type Option func(*options)

type options struct {
	level  *slog.Level
	output io.Writer
}

// WithLevel overrides the configured level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = &level
	}
}

// WithOutput writes to w instead of the configured file or stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger for cfg and a Closer for any file it opened.
func New(cfg config.LogConfig, opts ...Option) (*slog.Logger, io.Closer, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if o.level != nil {
		level = *o.level
	}

	var (
		out    = o.output
		closer io.Closer = nopCloser{}
	)
	if out == nil {
		out = os.Stderr
		if cfg.File != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating log directory: %w", err)
			}
			f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("opening log file: %w", err)
			}
			out, closer = f, f
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	default:
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel maps debug, info, warn or error to a slog.Level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
