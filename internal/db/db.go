// Package db provides the storage adapters that persist schedule snapshots.
package db

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/javiermolinar/chronoblock/internal/config"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// Adapter is a schedule.Persister that holds resources until closed.
type Adapter interface {
	schedule.Persister
	io.Closer
}

var (
	_ Adapter = (*SQLite)(nil)
	_ Adapter = (*Postgres)(nil)
	_ Adapter = (*JSONFile)(nil)
)

// Open returns the adapter selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		logger.Debug("opening sqlite storage", "path", cfg.DBPath)
		s, err := NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		logger.Debug("opening postgres storage")
		p, err := NewPostgres(ctx, cfg.DatabaseURL, postgresOptions(cfg, logger)...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DriverJSON:
		logger.Debug("opening json storage", "path", cfg.JSONPath)
		return NewJSONFile(cfg.JSONPath), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

// postgresOptions maps the storage config onto pool options.
func postgresOptions(cfg config.StorageConfig, logger *slog.Logger) []PostgresOption {
	return []PostgresOption{
		WithMaxConns(int32(min(cfg.MaxConns, math.MaxInt32))),
		WithConnectTimeout(cfg.ConnectTimeoutDuration()),
		WithQueryLogging(logger),
	}
}
