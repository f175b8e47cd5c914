// Package pipeline sequences one sourcing cycle per role: search, deduplicate
// against the record store, import, then score and route pending candidates.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-sourcing/internal/llm"
	"github.com/jonathan/talent-sourcing/internal/profilereader"
	"github.com/jonathan/talent-sourcing/internal/recordstore"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

// Searcher finds candidate profiles for a role across every configured source.
type Searcher interface {
	Search(ctx context.Context, role types.RoleRequirement, pages int) (SearchReport, error)
}

// Scorer scores one profile against one role.
type Scorer interface {
	Score(p types.CandidateProfile, role types.RoleRequirement, now time.Time) types.ScoreBreakdown
}

// RecordStore is the external candidate and job backend.
type RecordStore interface {
	ListCandidates(ctx context.Context, f recordstore.Filter) ([]recordstore.Record, error)
	CreateCandidate(ctx context.Context, p types.CandidateProfile, role types.RoleRequirement, status string) (string, error)
	UpdateCandidate(ctx context.Context, id string, u recordstore.Update) error
	GetRole(ctx context.Context, id string) (types.RoleRequirement, error)
	TargetJobIDs(ctx context.Context) ([]string, error)
	Actor() string
}

// Narrator writes the consultant-facing conclusion for a scored candidate.
type Narrator interface {
	Conclude(ctx context.Context, a llm.Assessment) (string, bool)
}

// Enricher visits profile pages to fill in fields search results lack.
type Enricher interface {
	EnrichAll(ctx context.Context, profiles []types.CandidateProfile) ([]types.CandidateProfile, profilereader.Stats)
}

// RunLedger records run statistics.
type RunLedger interface {
	StartRun(ctx context.Context, mode string, dryRun bool) (uuid.UUID, error)
	RecordRole(ctx context.Context, runID uuid.UUID, jobID string, stats types.RunStats, engines map[string]types.EngineStats) error
	FinishRun(ctx context.Context, runID uuid.UUID, runErr error) error
}

// Dependencies are the collaborators of a Coordinator. Enricher, Narrator and Ledger are optional.
type Dependencies struct {
	Searcher Searcher
	Scorer   Scorer
	Store    RecordStore
	Narrator Narrator
	Enricher Enricher
	Ledger   RunLedger
}

// Options configures a Coordinator.
type Options struct {
	// Pages is the result page count per search engine, clamped to 1-3.
	Pages int
	// DryRun skips every record-store write.
	DryRun bool
	// NarratorLabel is appended to evaluated_by when a conclusion came from the model.
	NarratorLabel string
	Policy        *stealth.Policy
	Now           func() time.Time
	OnProgress    ProgressCallback
}

// Coordinator runs the scrape and score phases.
type Coordinator struct {
	deps   Dependencies
	opts   Options
	logger *zap.Logger
}

// New creates a Coordinator. Searcher, Scorer and Store are required.
func New(deps Dependencies, opts Options, logger *zap.Logger) (*Coordinator, error) {
	if deps.Searcher == nil || deps.Scorer == nil || deps.Store == nil {
		return nil, errors.New("pipeline requires a searcher, a scorer and a record store")
	}
	opts.Pages = ClampPages(opts.Pages)
	if opts.Policy == nil {
		opts.Policy = stealth.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NarratorLabel == "" {
		opts.NarratorLabel = "Gemini"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{deps: deps, opts: opts, logger: logger}, nil
}

// ClampPages limits search page counts to 1-3.
func ClampPages(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 3:
		return 3
	default:
		return n
	}
}
