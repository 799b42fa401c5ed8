package db

import "fmt"

// migrate runs database migrations.
// Timestamps are RFC3339 TEXT; DATETIME columns would be rewritten by the driver.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id                 TEXT PRIMARY KEY,
			position           INTEGER NOT NULL,
			title              TEXT NOT NULL,
			completed          INTEGER NOT NULL DEFAULT 0,
			description        TEXT NOT NULL DEFAULT '',
			estimated_duration INTEGER NOT NULL DEFAULT 0 CHECK(estimated_duration >= 0),
			color              TEXT NOT NULL DEFAULT '',
			created_at         TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS time_blocks (
			id        TEXT PRIMARY KEY,
			title     TEXT NOT NULL,
			start_at  TEXT NOT NULL,
			end_at    TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			color     TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
		CREATE INDEX IF NOT EXISTS idx_time_blocks_start ON time_blocks(start_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schedule tables: %w", err)
	}

	return nil
}

// postgresSchema is applied by Postgres on open.
const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id                 TEXT PRIMARY KEY,
		position           INTEGER NOT NULL,
		title              TEXT NOT NULL,
		completed          BOOLEAN NOT NULL DEFAULT FALSE,
		description        TEXT NOT NULL DEFAULT '',
		estimated_duration INTEGER NOT NULL DEFAULT 0 CHECK (estimated_duration >= 0),
		color              TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_blocks (
		id        TEXT PRIMARY KEY,
		title     TEXT NOT NULL,
		start_at  TIMESTAMPTZ NOT NULL,
		end_at    TIMESTAMPTZ NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		color     TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_time_blocks_start ON time_blocks(start_at);
`
