package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-sourcing/internal/codehost"
	"github.com/jonathan/talent-sourcing/internal/query"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/jonathan/talent-sourcing/internal/websearch"
	"go.uber.org/zap"
)

// EngineCodeHost is the stats key of the code-host search.
const EngineCodeHost = "github"

// SearchReport is everything one role search produced.
type SearchReport struct {
	Queries      query.Queries
	Profiles     []types.CandidateProfile
	Engines      map[string]types.EngineStats
	Contributors []string
	// Warnings are operator-facing messages such as quota remediation.
	Warnings []string
}

// CodeHostSearcher is the code-host search client.
type CodeHostSearcher interface {
	Search(ctx context.Context, queries []string, pages int) (codehost.Result, error)
}

// WebSearcher is the web-search fallback chain.
type WebSearcher interface {
	Run(ctx context.Context, query string) websearch.Outcome
}

// Sources searches the code host, then the web chain. Either may be nil.
type Sources struct {
	codeHost CodeHostSearcher
	web      WebSearcher
	logger   *zap.Logger
}

// NewSources creates a Searcher over the given backends.
func NewSources(codeHost CodeHostSearcher, web WebSearcher, logger *zap.Logger) *Sources {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sources{codeHost: codeHost, web: web, logger: logger}
}

// Search builds the queries for role and runs every backend sequentially.
// Backend failures are logged and counted; only context cancellation is returned.
func (s *Sources) Search(ctx context.Context, role types.RoleRequirement, pages int) (SearchReport, error) {
	q := query.ForRole(role)
	report := SearchReport{Queries: q, Engines: make(map[string]types.EngineStats)}

	if s.codeHost != nil && len(q.CodeHost) > 0 {
		res, err := s.codeHost.Search(ctx, q.CodeHost, pages)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			s.logger.Warn("code host search failed", zap.Error(err))
			report.Engines[EngineCodeHost] = types.EngineStats{Attempted: 1, Failed: 1}
		default:
			stats := res.Stats
			if stats.Attempted == 0 {
				stats.Attempted = 1
			}
			if res.RateLimited {
				stats.Failed++
				report.Warnings = append(report.Warnings, res.Message)
			}
			report.Engines[EngineCodeHost] = stats
			report.Profiles = append(report.Profiles, res.Profiles...)
			if len(res.Profiles) > 0 {
				report.Contributors = append(report.Contributors, EngineCodeHost)
			}
		}
		s.logger.Info("code host search finished",
			zap.Int("queries", len(q.CodeHost)),
			zap.Int("returned", len(res.Profiles)),
			zap.Bool("rate_limited", res.RateLimited))
	}

	if s.web != nil && q.Web != "" {
		out := s.web.Run(ctx, q.Web)
		for name, st := range out.Stats {
			report.Engines[name] = st
		}
		for _, r := range out.Results {
			report.Profiles = append(report.Profiles, r.Profile())
		}
		report.Contributors = append(report.Contributors, out.Contributors...)
		s.logger.Info("web search finished",
			zap.Int("returned", len(out.Results)),
			zap.Strings("contributors", out.Contributors))
		if ctx.Err() != nil {
			return report, fmt.Errorf("web search interrupted: %w", ctx.Err())
		}
	}

	return report, nil
}
