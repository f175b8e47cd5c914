package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-sourcing/internal/logging"
	"github.com/jonathan/talent-sourcing/internal/profilereader"
	"github.com/jonathan/talent-sourcing/internal/recordstore"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

// ScrapeResult is the outcome of one scrape phase.
type ScrapeResult struct {
	Stats        types.RunStats
	Imported     []types.CandidateProfile
	Engines      map[string]types.EngineStats
	Contributors []string
	Warnings     []string
	State        *SearchRunState
	// NoCandidates is set when every attempted source returned nothing.
	NoCandidates bool
}

// Scrape searches for new candidates for role and imports the ones the record
// store does not know yet with the pending-score status.
func (c *Coordinator) Scrape(ctx context.Context, role types.RoleRequirement) (ScrapeResult, error) {
	logger := logging.Role(c.logger, role.JobID, role.Title)
	res := ScrapeResult{Stats: types.RunStats{Role: role.Title}}

	known, err := c.deps.Store.ListCandidates(ctx, recordstore.Filter{Limit: recordstore.DefaultListLimit})
	if err != nil {
		if !c.opts.DryRun {
			return res, fmt.Errorf("failed to load known candidates: %w", err)
		}
		logger.Warn("could not load known candidates, deduplicating within this run only", zap.Error(err))
	}
	state := NewSearchRunState(recordstore.Profiles(known))
	res.State = state
	logger.Info("known identities loaded", zap.Int("records", len(known)), zap.Int("keys", state.Seen.Len()))

	c.emit(StepSearch, CategoryScrape, role.JobID, "searching code host and web", nil)
	report, err := c.deps.Searcher.Search(ctx, role, c.opts.Pages)
	state.Record(report)
	res.Engines = state.Engines
	res.Contributors = report.Contributors
	res.Warnings = report.Warnings
	for _, w := range report.Warnings {
		logger.Warn("search warning", zap.String("message", w))
	}
	if err != nil {
		return res, fmt.Errorf("search failed: %w", err)
	}

	res.Stats.Found = len(report.Profiles)
	if res.Stats.Found == 0 {
		res.NoCandidates = true
		logger.Warn("no candidates found", zap.Strings("exhausted", state.ExhaustedStages))
		c.emit(StepSearch, CategoryScrape, role.JobID, "no candidates found", res.Engines)
		return res, nil
	}

	var accepted []types.CandidateProfile
	for _, p := range report.Profiles {
		if !p.Eligible() {
			res.Stats.Skipped++
			continue
		}
		isNew, flagged := state.Seen.Accept(p)
		if !isNew {
			res.Stats.Skipped++
			continue
		}
		if flagged {
			p.NeedsIdentityReview = true
			res.Stats.Flagged++
		}
		accepted = append(accepted, p)
	}
	logger.Info("deduplicated",
		zap.Int("returned", res.Stats.Found),
		zap.Int("new", len(accepted)),
		zap.Int("duplicates", res.Stats.Skipped),
		zap.Int("flagged", res.Stats.Flagged))
	c.emit(StepDeduplicate, CategoryScrape, role.JobID,
		fmt.Sprintf("%d new of %d found", len(accepted), res.Stats.Found), nil)

	if c.deps.Enricher != nil && len(accepted) > 0 {
		var stats profilereader.Stats
		accepted, stats = c.deps.Enricher.EnrichAll(ctx, accepted)
		c.emit(StepEnrich, CategoryScrape, role.JobID, "profiles enriched", stats)
	}

	for i, p := range accepted {
		if i > 0 {
			if err := c.opts.Policy.Sleep(ctx, stealth.DelayCandidate); err != nil {
				return res, err
			}
		}
		if c.opts.DryRun {
			logger.Info("dry run: would import", zap.String("candidate", p.DisplayName()))
			res.Stats.Imported++
			res.Imported = append(res.Imported, p)
			continue
		}
		id, err := c.deps.Store.CreateCandidate(ctx, p, role, types.StatusPendingScore)
		if err != nil {
			res.Stats.Errors++
			logger.Warn("import failed", zap.String("candidate", p.DisplayName()), zap.Error(err))
			continue
		}
		p.RecordID = id
		res.Stats.Imported++
		res.Imported = append(res.Imported, p)
	}
	c.emit(StepImport, CategoryScrape, role.JobID,
		fmt.Sprintf("imported %d candidates", res.Stats.Imported), res.Stats)
	return res, nil
}
