// Package ranking scores candidate profiles against role requirements and ranks the results.
package ranking

import (
	"math"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/parsing"
	"github.com/jonathan/talent-sourcing/internal/types"
)

// neutralSkillScore is used when the role lists no required skills.
const neutralSkillScore = 75.0

// skillMatches reports whether a candidate skill and a required skill match
// by case-insensitive substring in either direction.
func skillMatches(candidateSkill, required string) bool {
	a := strings.ToLower(strings.TrimSpace(candidateSkill))
	b := strings.ToLower(strings.TrimSpace(required))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func hasSkill(candidateSkills []string, required string) bool {
	for _, s := range candidateSkills {
		if skillMatches(s, required) {
			return true
		}
	}
	return false
}

// computeSkillMatch returns the skill score (0-100) and the matched and missing required skills.
func computeSkillMatch(candidateSkills []string, role types.RoleRequirement) (float64, []string, []string) {
	if len(role.RequiredSkills) == 0 {
		return neutralSkillScore, nil, nil
	}

	var matched, missing []string
	for _, req := range role.RequiredSkills {
		if hasSkill(candidateSkills, req) {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}
	score := float64(len(matched)) / float64(len(role.RequiredSkills)) * 80

	if len(role.NiceToHaveSkills) > 0 {
		nice := 0
		for _, s := range role.NiceToHaveSkills {
			if hasSkill(candidateSkills, s) {
				nice++
			}
		}
		score += float64(nice) / float64(len(role.NiceToHaveSkills)) * 10
	}

	return clamp(score, 0, 100), matched, missing
}

// yearsScore maps the absolute difference between actual and required years onto a curve.
func yearsScore(actual, required int) float64 {
	diff := math.Abs(float64(actual - required))
	switch {
	case diff == 0:
		return 100
	case diff <= 1:
		return 95
	case diff <= 2:
		return 85
	case diff <= 3:
		return 70
	default:
		return math.Max(30, 100-diff*10)
	}
}

// stabilityScore penalizes frequent changes, short tenures and long recent gaps.
// Unknown (zero) tenure is not penalized.
func stabilityScore(p types.CandidateProfile) float64 {
	stability := 100.0
	if p.JobChanges > 2 {
		stability -= float64(p.JobChanges-2) * 20
	}
	switch {
	case p.AvgTenureMonths <= 0:
	case p.AvgTenureMonths < 6:
		stability -= 30
	case p.AvgTenureMonths < 12:
		stability -= 10
	}
	if p.RecentGapMonths > 3 {
		stability -= math.Min(20, float64(p.RecentGapMonths)*5)
	}
	return math.Max(20, stability)
}

// candidateYears returns the candidate's years of experience, estimating from
// the headline when the profile does not state it.
func candidateYears(p types.CandidateProfile) int {
	if p.YearsExperience > 0 {
		return p.YearsExperience
	}
	return parsing.EstimateYears(p.Headline)
}

func computeExperienceFit(p types.CandidateProfile, role types.RoleRequirement) float64 {
	years := yearsScore(candidateYears(p), role.MinYears)
	return clamp(years*0.7+stabilityScore(p)*0.3, 0, 100)
}

func regionOf(location string) int {
	lower := strings.ToLower(location)
	for i, region := range metroRegions {
		for _, city := range region {
			if strings.Contains(lower, city) {
				return i
			}
		}
	}
	return -1
}

func computeLocationFit(candidate, required string) float64 {
	c := strings.ToLower(strings.TrimSpace(candidate))
	r := strings.ToLower(strings.TrimSpace(required))
	if c != "" && c == r {
		return 100
	}
	if c != "" && r != "" {
		if rc, rr := regionOf(c), regionOf(r); rc >= 0 && rc == rr {
			return 90
		}
	}
	return 50
}

// employerHistory returns the current company followed by past employers.
func employerHistory(p types.CandidateProfile) []string {
	var out []string
	if strings.TrimSpace(p.Company) != "" {
		out = append(out, p.Company)
	}
	return append(out, p.Employers...)
}

func computeCompanyLevel(employers []string) float64 {
	score := defaultTierScore
	for _, company := range employers {
		for _, m := range tier1Matchers {
			if m.in(company) {
				return tier1Score
			}
		}
		for _, m := range tier2Matchers {
			if m.in(company) {
				score = math.Max(score, tier2Score)
			}
		}
	}
	return score
}

func transferableSkills(candidateSkills []string) []string {
	var out []string
	for _, s := range candidateSkills {
		lower := strings.ToLower(s)
		for _, base := range transferableBases {
			if strings.Contains(lower, base) {
				out = append(out, s)
				break
			}
		}
		if len(out) == maxTransferableSkills {
			break
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
