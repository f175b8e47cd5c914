// Package websearch finds professional-network profiles through an ordered
// chain of search stages: a rendered browser, two HTML endpoints and a
// licensed search API.
package websearch

import (
	"context"

	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

// Stage is one search backend. Attempt never returns an error: failures are
// logged inside the stage and reflected in the results it did collect.
// prior is the number of unique results the chain already holds.
type Stage interface {
	Name() string
	Attempt(ctx context.Context, query string, prior int) (results []Result, shouldContinue bool)
}

// Link places a stage in a chain.
type Link struct {
	Stage   Stage
	Enabled bool
	// Always runs the stage whenever it is enabled, regardless of whether the
	// previous stage asked to continue.
	Always bool
}

// Outcome is the merged result of one chain run.
type Outcome struct {
	Results []Result
	// Contributors lists the stages that added at least one new result, in order.
	Contributors []string
	Stats        map[string]types.EngineStats
}

// Chain runs stages in order and merges their results.
type Chain struct {
	links  []Link
	policy *stealth.Policy
	logger *zap.Logger
}

// NewChain creates a chain over links.
func NewChain(links []Link, policy *stealth.Policy, logger *zap.Logger) *Chain {
	if policy == nil {
		policy = stealth.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{links: links, policy: policy, logger: logger}
}

// Stages returns the names of the enabled stages in order.
func (c *Chain) Stages() []string {
	var names []string
	for _, l := range c.links {
		if l.Enabled {
			names = append(names, l.Stage.Name())
		}
	}
	return names
}

// Run executes the chain for one query. Results are de-duplicated by
// canonical URL, keeping the first-seen order.
func (c *Chain) Run(ctx context.Context, query string) Outcome {
	out := Outcome{Stats: make(map[string]types.EngineStats)}
	seen := make(map[string]bool)
	proceed := true
	ran := 0

	for _, l := range c.links {
		if ctx.Err() != nil {
			break
		}
		if !l.Enabled {
			continue
		}
		name := l.Stage.Name()
		if !proceed && !l.Always {
			c.logger.Debug("skipping stage", zap.String("stage", name))
			continue
		}

		if ran > 0 {
			if err := c.policy.Sleep(ctx, stealth.DelayEngine); err != nil {
				break
			}
		}
		ran++

		results, cont := l.Stage.Attempt(ctx, query, len(out.Results))
		added := 0
		for _, r := range results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			if r.Stage == "" {
				r.Stage = name
			}
			out.Results = append(out.Results, r)
			added++
		}

		stats := out.Stats[name]
		stats.Attempted++
		stats.Returned += added
		if len(results) == 0 {
			stats.Failed++
		}
		out.Stats[name] = stats
		if added > 0 {
			out.Contributors = append(out.Contributors, name)
		}

		c.logger.Info("search stage finished",
			zap.String("stage", name),
			zap.Int("returned", len(results)),
			zap.Int("new", added),
			zap.Int("total", len(out.Results)),
			zap.Bool("continue", cont))
		proceed = cont
	}

	return out
}
