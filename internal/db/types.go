package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-sourcing/internal/types"
)

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// Run mode constants
const (
	ModeRun    = "run"
	ModeScrape = "scrape"
	ModeScore  = "score"
)

// Run represents one sourcing run
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Mode         string     `json:"mode"`
	DryRun       bool       `json:"dry_run"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RoleResult is the per-role outcome of a run
type RoleResult struct {
	RunID       uuid.UUID                    `json:"run_id"`
	JobID       string                       `json:"job_id"`
	Stats       types.RunStats               `json:"stats"`
	EngineStats map[string]types.EngineStats `json:"engine_stats,omitempty"`
	RecordedAt  time.Time                    `json:"recorded_at"`
}

// FinalStatus maps the error a run ended with onto a run status.
func FinalStatus(err error) string {
	switch {
	case err == nil:
		return RunStatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return RunStatusCancelled
	default:
		return RunStatusFailed
	}
}
