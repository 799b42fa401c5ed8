package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

const undefinedTable = "42P01"

// ErrUndefinedTable reports a database whose schema was never applied.
var ErrUndefinedTable = errors.New("undefined table")

// Postgres stores schedule snapshots in PostgreSQL through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

type pgOptions struct {
	maxConns       int32
	connectTimeout time.Duration
	logger         *slog.Logger
	logQueries     bool
}

// PostgresOption configures NewPostgres.
type PostgresOption func(*pgOptions)

// WithMaxConns sets the maximum number of pooled connections.
// Non-positive values keep the default.
func WithMaxConns(n int32) PostgresOption {
	return func(o *pgOptions) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// WithConnectTimeout bounds pool creation and the initial ping.
// Non-positive values keep the default.
func WithConnectTimeout(d time.Duration) PostgresOption {
	return func(o *pgOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithQueryLogging logs every statement at debug level.
func WithQueryLogging(logger *slog.Logger) PostgresOption {
	return func(o *pgOptions) {
		o.logger = logger
		o.logQueries = logger != nil
	}
}

func newPGOptions(opts ...PostgresOption) *pgOptions {
	o := &pgOptions{
		maxConns:       4,
		connectTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewPostgres connects to databaseURL, pings it and applies the schema.
func NewPostgres(ctx context.Context, databaseURL string, opts ...PostgresOption) (*Postgres, error) {
	o := newPGOptions(opts...)

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = o.maxConns
	if o.logQueries {
		poolConfig.ConnConfig.Tracer = &queryLogger{logger: o.logger}
	}

	ctx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Load reads every task and time block.
func (p *Postgres) Load(ctx context.Context) (schedule.State, error) {
	var state schedule.State

	rows, err := p.pool.Query(ctx, `
		SELECT id, title, completed, description, estimated_duration, color, created_at
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return state, fmt.Errorf("querying tasks: %w", handlePgError(err))
	}
	state.Tasks, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (schedule.Task, error) {
		var t schedule.Task
		err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.Description, &t.EstimatedDuration, &t.Color, &t.CreatedAt)
		t.CreatedAt = t.CreatedAt.Local()
		return t, err
	})
	if err != nil {
		return state, fmt.Errorf("scanning tasks: %w", err)
	}

	rows, err = p.pool.Query(ctx, `
		SELECT id, title, start_at, end_at, completed, color
		FROM time_blocks
		ORDER BY start_at, id
	`)
	if err != nil {
		return state, fmt.Errorf("querying time blocks: %w", handlePgError(err))
	}
	state.TimeBlocks, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (schedule.TimeBlock, error) {
		var b schedule.TimeBlock
		err := row.Scan(&b.ID, &b.Title, &b.Start, &b.End, &b.Completed, &b.Color)
		b.Start, b.End = b.Start.Local(), b.End.Local()
		return b, err
	})
	if err != nil {
		return state, fmt.Errorf("scanning time blocks: %w", err)
	}

	return state, nil
}

// Save replaces the stored schedule with state in one transaction.
// All statements travel in a single batch.
func (p *Postgres) Save(ctx context.Context, state schedule.State) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM tasks`)
	batch.Queue(`DELETE FROM time_blocks`)
	for i, t := range state.Tasks {
		batch.Queue(`
			INSERT INTO tasks (id, position, title, completed, description, estimated_duration, color, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, i, t.Title, t.Completed, t.Description, t.EstimatedDuration, t.Color, t.CreatedAt)
	}
	for _, b := range state.TimeBlocks {
		batch.Queue(`
			INSERT INTO time_blocks (id, title, start_at, end_at, completed, color)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, b.Title, b.Start, b.End, b.Completed, b.Color)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing schedule: %w", handlePgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// handlePgError maps PostgreSQL error codes to package errors.
func handlePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", ErrUndefinedTable, pgErr.Message)
	}
	return err
}

// queryLogger is a pgx.QueryTracer that logs statements and their duration.
type queryLogger struct {
	logger *slog.Logger
}

type queryStartKey struct{}

type queryStart struct {
	sql   string
	start time.Time
}

func (l *queryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, start: time.Now()})
}

func (l *queryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	if data.Err != nil {
		l.logger.Debug("query failed", "sql", qs.sql, "duration", time.Since(qs.start), "error", data.Err)
		return
	}
	l.logger.Debug("query", "sql", qs.sql, "duration", time.Since(qs.start), "rows", data.CommandTag.RowsAffected())
}
