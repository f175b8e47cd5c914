package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/talent-sourcing/internal/llm"
	"github.com/jonathan/talent-sourcing/internal/logging"
	"github.com/jonathan/talent-sourcing/internal/ranking"
	"github.com/jonathan/talent-sourcing/internal/recordstore"
	"github.com/jonathan/talent-sourcing/internal/schemas"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

// ScoredCandidate is one routed candidate.
type ScoredCandidate struct {
	RecordID  string
	Profile   types.CandidateProfile
	Breakdown types.ScoreBreakdown
	Status    string
	Artifact  types.Artifact
}

// ScoreResult is the outcome of one score phase, ranked best first.
type ScoreResult struct {
	Stats      types.RunStats
	Candidates []ScoredCandidate
}

// Score scores every pending candidate imported for role, routes it by the
// recommendation threshold and writes the status and artifact back.
func (c *Coordinator) Score(ctx context.Context, role types.RoleRequirement) (ScoreResult, error) {
	logger := logging.Role(c.logger, role.JobID, role.Title)
	res := ScoreResult{Stats: types.RunStats{Role: role.Title}}

	records, err := c.deps.Store.ListCandidates(ctx, recordstore.Filter{
		Status: types.StatusPendingScore,
		JobID:  role.JobID,
		Limit:  recordstore.DefaultListLimit,
	})
	if err != nil {
		return res, fmt.Errorf("failed to list pending candidates: %w", err)
	}

	var pending []recordstore.Record
	for _, r := range records {
		if !r.Scored {
			pending = append(pending, r)
		}
	}
	logger.Info("pending candidates loaded", zap.Int("listed", len(records)), zap.Int("pending", len(pending)))
	c.emit(StepScore, CategoryScore, role.JobID, fmt.Sprintf("%d candidates to score", len(pending)), nil)

	now := c.opts.Now()
	for i, rec := range pending {
		if i > 0 {
			if err := c.opts.Policy.Sleep(ctx, stealth.DelayCandidate); err != nil {
				return finishScore(res), err
			}
		}

		b := c.deps.Scorer.Score(rec.Profile, role, now)
		status := ranking.Route(b.Overall)
		artifact := c.artifact(ctx, rec.Profile, role, b, now)
		if err := schemas.Validate(schemas.AIMatchResult, artifact); err != nil {
			res.Stats.Errors++
			logger.Error("artifact failed validation", zap.String("record", rec.ID), zap.Error(err))
			continue
		}

		res.Stats.Scored++
		if status == types.StatusAIRecommended {
			res.Stats.Recommended++
		} else {
			res.Stats.Backup++
		}
		res.Candidates = append(res.Candidates, ScoredCandidate{
			RecordID:  rec.ID,
			Profile:   rec.Profile,
			Breakdown: b,
			Status:    status,
			Artifact:  artifact,
		})
		logger.Debug("candidate scored",
			zap.String("candidate", b.CandidateName),
			zap.Float64("overall", b.Overall),
			zap.String("grade", string(b.Grade)),
			zap.String("status", status))

		if c.opts.DryRun {
			continue
		}
		if err := c.deps.Store.UpdateCandidate(ctx, rec.ID, recordstore.Update{Status: status, Result: artifact}); err != nil {
			res.Stats.Errors++
			logger.Warn("status update failed", zap.String("record", rec.ID), zap.Error(err))
		}
	}

	logger.Info("scoring finished",
		zap.Int("scored", res.Stats.Scored),
		zap.Int("recommended", res.Stats.Recommended),
		zap.Int("backup", res.Stats.Backup),
		zap.Int("errors", res.Stats.Errors))
	return finishScore(res), nil
}

// finishScore orders candidates by overall score, ties broken by name.
func finishScore(res ScoreResult) ScoreResult {
	sort.SliceStable(res.Candidates, func(i, j int) bool {
		a, b := res.Candidates[i].Breakdown, res.Candidates[j].Breakdown
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		return a.CandidateName < b.CandidateName
	})
	return res
}

// artifact builds the record-store document for one breakdown.
func (c *Coordinator) artifact(ctx context.Context, p types.CandidateProfile, role types.RoleRequirement, b types.ScoreBreakdown, now time.Time) types.Artifact {
	a := b.Artifact()
	a.JobID = role.JobID
	a.Recommendation = ranking.Recommendation(b.Overall)
	a.ProbingQuestions = llm.ProbingQuestions()
	a.EvaluatedAt = now.UTC().Format(time.RFC3339)
	a.EvaluatedBy = c.deps.Store.Actor()

	assessment := llm.Assessment{Profile: p, Role: role, Breakdown: b, Recommendation: a.Recommendation}
	if c.deps.Narrator == nil {
		a.Conclusion = llm.TemplateConclusion(assessment)
		return a
	}
	text, narrated := c.deps.Narrator.Conclude(ctx, assessment)
	a.Conclusion = text
	if narrated {
		a.EvaluatedBy += " + " + c.opts.NarratorLabel
	}
	return a
}

// ScoreProfile scores a single profile offline, without touching the record store.
func ScoreProfile(scorer Scorer, p types.CandidateProfile, role types.RoleRequirement, now time.Time) types.Artifact {
	b := scorer.Score(p, role, now)
	a := b.Artifact()
	a.JobID = role.JobID
	a.Recommendation = ranking.Recommendation(b.Overall)
	a.ProbingQuestions = llm.ProbingQuestions()
	a.Conclusion = llm.TemplateConclusion(llm.Assessment{Profile: p, Role: role, Breakdown: b, Recommendation: a.Recommendation})
	a.EvaluatedAt = now.UTC().Format(time.RFC3339)
	return a
}
