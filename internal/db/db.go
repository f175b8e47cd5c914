// Package db records sourcing runs in PostgreSQL. The ledger is write-mostly
// bookkeeping; nothing in the pipeline reads it back to make decisions.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sourcing_runs (
	id            UUID PRIMARY KEY,
	mode          TEXT NOT NULL,
	dry_run       BOOLEAN NOT NULL DEFAULT FALSE,
	status        TEXT NOT NULL,
	error_message TEXT,
	started_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS sourcing_run_roles (
	run_id       UUID NOT NULL REFERENCES sourcing_runs(id) ON DELETE CASCADE,
	job_id       TEXT NOT NULL,
	role_title   TEXT NOT NULL DEFAULT '',
	found        INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	imported     INTEGER NOT NULL DEFAULT 0,
	flagged      INTEGER NOT NULL DEFAULT 0,
	scored       INTEGER NOT NULL DEFAULT 0,
	recommended  INTEGER NOT NULL DEFAULT 0,
	backup       INTEGER NOT NULL DEFAULT 0,
	errors       INTEGER NOT NULL DEFAULT 0,
	engine_stats JSONB,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_id, job_id)
);

CREATE INDEX IF NOT EXISTS sourcing_runs_started_at_idx ON sourcing_runs (started_at DESC);
`

// EnsureSchema creates the ledger tables when they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return nil
}
