package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-sourcing/internal/types"
)

// StartRun inserts a running run record and returns its ID
func (db *DB) StartRun(ctx context.Context, mode string, dryRun bool) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sourcing_runs (id, mode, dry_run, status) VALUES ($1, $2, $3, $4)`,
		id, mode, dryRun, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// RecordRole upserts the statistics of one role within a run
func (db *DB) RecordRole(ctx context.Context, runID uuid.UUID, jobID string, stats types.RunStats, engines map[string]types.EngineStats) error {
	var enginesJSON []byte
	if len(engines) > 0 {
		var err error
		enginesJSON, err = json.Marshal(engines)
		if err != nil {
			return fmt.Errorf("failed to marshal engine stats: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO sourcing_run_roles
		   (run_id, job_id, role_title, found, skipped, imported, flagged, scored, recommended, backup, errors, engine_stats)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (run_id, job_id) DO UPDATE SET
		   role_title = EXCLUDED.role_title,
		   found = EXCLUDED.found, skipped = EXCLUDED.skipped, imported = EXCLUDED.imported,
		   flagged = EXCLUDED.flagged, scored = EXCLUDED.scored, recommended = EXCLUDED.recommended,
		   backup = EXCLUDED.backup, errors = EXCLUDED.errors,
		   engine_stats = COALESCE(EXCLUDED.engine_stats, sourcing_run_roles.engine_stats),
		   recorded_at = NOW()`,
		runID, jobID, stats.Role, stats.Found, stats.Skipped, stats.Imported, stats.Flagged,
		stats.Scored, stats.Recommended, stats.Backup, stats.Errors, enginesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to record role %s: %w", jobID, err)
	}
	return nil
}

// FinishRun marks a run as finished, storing the error message when runErr is set
func (db *DB) FinishRun(ctx context.Context, runID uuid.UUID, runErr error) error {
	var message *string
	if runErr != nil {
		m := runErr.Error()
		message = &m
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE sourcing_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		FinalStatus(runErr), message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, returning nil when it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, mode, dry_run, status, error_message, started_at, completed_at
		 FROM sourcing_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Mode, &run.DryRun, &run.Status, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, mode, dry_run, status, error_message, started_at, completed_at
		 FROM sourcing_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Mode, &run.DryRun, &run.Status, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRoles returns every role recorded for a run in insertion order
func (db *DB) ListRoles(ctx context.Context, runID uuid.UUID) ([]RoleResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, job_id, role_title, found, skipped, imported, flagged, scored,
		        recommended, backup, errors, engine_stats, recorded_at
		 FROM sourcing_run_roles WHERE run_id = $1 ORDER BY recorded_at`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run roles: %w", err)
	}
	defer rows.Close()

	var roles []RoleResult
	for rows.Next() {
		var r RoleResult
		var enginesJSON []byte
		if err := rows.Scan(&r.RunID, &r.JobID, &r.Stats.Role, &r.Stats.Found, &r.Stats.Skipped,
			&r.Stats.Imported, &r.Stats.Flagged, &r.Stats.Scored, &r.Stats.Recommended,
			&r.Stats.Backup, &r.Stats.Errors, &enginesJSON, &r.RecordedAt); err != nil {
			return nil, err
		}
		if enginesJSON != nil {
			_ = json.Unmarshal(enginesJSON, &r.EngineStats)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
