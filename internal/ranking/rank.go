package ranking

import (
	"sort"
	"time"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// RecommendThreshold is the overall score at or above which a candidate is routed to the recommended pool.
const RecommendThreshold = 80.0

// Recommendation labels written into the artifact.
const (
	RecommendStrong = "強力推薦"
	RecommendYes    = "推薦"
	RecommendWatch  = "觀望"
	RecommendNo     = "不推薦"
)

// RankedCandidate pairs a profile with its breakdown.
type RankedCandidate struct {
	Profile   types.CandidateProfile
	Breakdown types.ScoreBreakdown
}

// Rank scores every profile against the role and returns them sorted by overall score (descending).
// Ties are broken by candidate name so the order is deterministic.
func Rank(engine *Engine, profiles []types.CandidateProfile, role types.RoleRequirement, now time.Time) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(profiles))
	for _, p := range profiles {
		ranked = append(ranked, RankedCandidate{Profile: p, Breakdown: engine.Score(p, role, now)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Breakdown.Overall != ranked[j].Breakdown.Overall {
			return ranked[i].Breakdown.Overall > ranked[j].Breakdown.Overall
		}
		return ranked[i].Breakdown.CandidateName < ranked[j].Breakdown.CandidateName
	})
	return ranked
}

// TopN returns at most n entries from an already ranked slice.
func TopN(ranked []RankedCandidate, n int) []RankedCandidate {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// Recommendation maps an overall score onto a recommendation label.
func Recommendation(overall float64) string {
	switch {
	case overall >= 85:
		return RecommendStrong
	case overall >= 70:
		return RecommendYes
	case overall >= 55:
		return RecommendWatch
	default:
		return RecommendNo
	}
}

// Route returns the terminal record-store status for a scored candidate.
func Route(overall float64) string {
	if overall >= RecommendThreshold {
		return types.StatusAIRecommended
	}
	return types.StatusBackupPool
}
