package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// SQLite stores schedule snapshots in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at path and runs migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Load reads every task and time block.
func (s *SQLite) Load(ctx context.Context) (schedule.State, error) {
	var state schedule.State

	tasks, err := s.loadTasks(ctx)
	if err != nil {
		return state, err
	}
	blocks, err := s.loadTimeBlocks(ctx)
	if err != nil {
		return state, err
	}

	state.Tasks = tasks
	state.TimeBlocks = blocks
	return state, nil
}

func (s *SQLite) loadTasks(ctx context.Context) ([]schedule.Task, error) {
	query := `
		SELECT id, title, completed, description, estimated_duration, color, created_at
		FROM tasks
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []schedule.Task
	for rows.Next() {
		var (
			t         schedule.Task
			createdAt string
		)
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Completed,
			&t.Description,
			&t.EstimatedDuration,
			&t.Color,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}

		t.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of task %s: %w", t.ID, err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLite) loadTimeBlocks(ctx context.Context) ([]schedule.TimeBlock, error) {
	query := `
		SELECT id, title, start_at, end_at, completed, color
		FROM time_blocks
		ORDER BY start_at, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying time blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var blocks []schedule.TimeBlock
	for rows.Next() {
		var (
			b          schedule.TimeBlock
			start, end string
		)
		if err := rows.Scan(&b.ID, &b.Title, &start, &end, &b.Completed, &b.Color); err != nil {
			return nil, fmt.Errorf("scanning time block: %w", err)
		}

		b.Start, err = parseTimestamp(start)
		if err != nil {
			return nil, fmt.Errorf("parsing start of time block %s: %w", b.ID, err)
		}
		b.End, err = parseTimestamp(end)
		if err != nil {
			return nil, fmt.Errorf("parsing end of time block %s: %w", b.ID, err)
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time blocks: %w", err)
	}
	return blocks, nil
}

// Save replaces the stored schedule with state in one transaction.
func (s *SQLite) Save(ctx context.Context, state schedule.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_blocks`); err != nil {
		return fmt.Errorf("clearing time blocks: %w", err)
	}

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (
			id, position, title, completed, description, estimated_duration, color, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer func() { _ = taskStmt.Close() }()

	for i, t := range state.Tasks {
		if _, err := taskStmt.ExecContext(ctx,
			t.ID,
			i,
			t.Title,
			t.Completed,
			t.Description,
			t.EstimatedDuration,
			t.Color,
			formatTimestamp(t.CreatedAt),
		); err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
	}

	blockStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO time_blocks (id, title, start_at, end_at, completed, color)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing time block insert: %w", err)
	}
	defer func() { _ = blockStmt.Close() }()

	for _, b := range state.TimeBlocks {
		if _, err := blockStmt.ExecContext(ctx,
			b.ID,
			b.Title,
			formatTimestamp(b.Start),
			formatTimestamp(b.End),
			b.Completed,
			b.Color,
		); err != nil {
			return fmt.Errorf("inserting time block %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// formatTimestamp keeps the wall clock and offset so stored rows read naturally.
func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}
