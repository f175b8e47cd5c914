package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

// Mode selects which phases Run executes.
type Mode string

// Run modes.
const (
	ModeRun    Mode = "run"
	ModeScrape Mode = "scrape"
	ModeScore  Mode = "score"
)

// ErrNoRoles is returned when neither the caller nor the record store names a role.
var ErrNoRoles = errors.New("no target job ids configured")

// RoleOutcome is the result of processing one role.
type RoleOutcome struct {
	JobID  string
	Role   types.RoleRequirement
	Stats  types.RunStats
	Scrape *ScrapeResult
	Score  *ScoreResult
	Err    error
}

// RunReport aggregates every role of one run.
type RunReport struct {
	RunID  uuid.UUID
	Mode   Mode
	DryRun bool
	Roles  []RoleOutcome
	Totals types.RunStats
}

// NoCandidates reports whether every scraped role came back empty.
func (r RunReport) NoCandidates() bool {
	scraped := 0
	for _, o := range r.Roles {
		if o.Scrape == nil {
			continue
		}
		scraped++
		if !o.Scrape.NoCandidates {
			return false
		}
	}
	return scraped > 0
}

// Run processes each role in turn with a randomized pause between roles.
// With no jobIDs the record store's target list is used. Per-role failures are
// recorded in the report; only cancellation and an empty role list are returned.
func (c *Coordinator) Run(ctx context.Context, mode Mode, jobIDs []string) (report RunReport, err error) {
	report = RunReport{Mode: mode, DryRun: c.opts.DryRun, Totals: types.RunStats{Role: "total"}}

	if len(jobIDs) == 0 {
		jobIDs, err = c.deps.Store.TargetJobIDs(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to load target job ids: %w", err)
		}
	}
	if len(jobIDs) == 0 {
		return report, ErrNoRoles
	}

	if c.deps.Ledger != nil {
		id, lerr := c.deps.Ledger.StartRun(ctx, string(mode), c.opts.DryRun)
		if lerr != nil {
			c.logger.Warn("run ledger unavailable", zap.Error(lerr))
		} else {
			report.RunID = id
			defer func() {
				if ferr := c.deps.Ledger.FinishRun(context.WithoutCancel(ctx), id, err); ferr != nil {
					c.logger.Warn("failed to close run record", zap.Error(ferr))
				}
			}()
		}
	}

	c.logger.Info("run started",
		zap.String("mode", string(mode)),
		zap.Strings("job_ids", jobIDs),
		zap.Bool("dry_run", c.opts.DryRun))

	for i, id := range jobIDs {
		if i > 0 {
			if err = c.opts.Policy.Sleep(ctx, stealth.DelayJob); err != nil {
				return report, err
			}
		}

		outcome := c.runRole(ctx, mode, id)
		report.Roles = append(report.Roles, outcome)
		report.Totals.Add(outcome.Stats)
		if c.deps.Ledger != nil && report.RunID != uuid.Nil {
			var engines map[string]types.EngineStats
			if outcome.Scrape != nil {
				engines = outcome.Scrape.Engines
			}
			if lerr := c.deps.Ledger.RecordRole(ctx, report.RunID, id, outcome.Stats, engines); lerr != nil {
				c.logger.Warn("failed to record role", zap.String("job_id", id), zap.Error(lerr))
			}
		}
		c.emit(StepRoleDone, CategoryRun, id, "role finished", outcome.Stats)

		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	c.logger.Info("run finished",
		zap.Int("roles", len(report.Roles)),
		zap.Int("found", report.Totals.Found),
		zap.Int("imported", report.Totals.Imported),
		zap.Int("scored", report.Totals.Scored),
		zap.Int("recommended", report.Totals.Recommended),
		zap.Int("errors", report.Totals.Errors))
	return report, nil
}

func (c *Coordinator) runRole(ctx context.Context, mode Mode, jobID string) RoleOutcome {
	outcome := RoleOutcome{JobID: jobID}
	c.emit(StepLoadRole, CategoryRun, jobID, "loading role", nil)

	role, err := c.deps.Store.GetRole(ctx, jobID)
	if err != nil {
		outcome.Err = fmt.Errorf("load role %s: %w", jobID, err)
		outcome.Stats.Errors++
		c.logger.Warn("role skipped", zap.String("job_id", jobID), zap.Error(err))
		return outcome
	}
	if role.JobID == "" {
		role.JobID = jobID
	}
	outcome.Role = role
	outcome.Stats.Role = role.Title

	if mode == ModeRun || mode == ModeScrape {
		sr, err := c.Scrape(ctx, role)
		outcome.Scrape = &sr
		mergeStats(&outcome.Stats, sr.Stats)
		if err != nil {
			outcome.Err = err
			outcome.Stats.Errors++
			return outcome
		}
	}
	if mode == ModeRun || mode == ModeScore {
		sc, err := c.Score(ctx, role)
		outcome.Score = &sc
		mergeStats(&outcome.Stats, sc.Stats)
		if err != nil {
			outcome.Err = err
			outcome.Stats.Errors++
		}
	}
	return outcome
}

func mergeStats(dst *types.RunStats, src types.RunStats) {
	role := dst.Role
	dst.Add(src)
	dst.Role = role
}
