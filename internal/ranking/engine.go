package ranking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// Engine scores candidate profiles against role requirements.
// It has no I/O and no hidden randomness: the same inputs always produce the same breakdown.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// GradeFor maps an overall score onto a talent level.
func GradeFor(overall float64) types.Grade {
	switch {
	case overall >= 90:
		return types.GradeS
	case overall >= 85:
		return types.GradeAPlus
	case overall >= 75:
		return types.GradeA
	case overall >= 60:
		return types.GradeB
	default:
		return types.GradeC
	}
}

// Score computes the six-dimension breakdown for one profile and role.
// now is used only for profile-recency signals.
func (e *Engine) Score(p types.CandidateProfile, role types.RoleRequirement, now time.Time) types.ScoreBreakdown {
	skill, matched, missing := computeSkillMatch(p.Skills, role)
	experience := computeExperienceFit(p, role)
	location := computeLocationFit(p.Location, role.Location)
	hiring, ledger := computeHiringSignal(p, now)
	employers := employerHistory(p)
	company := computeCompanyLevel(employers)
	industry, migration := industryExperience(employers, role.Industry)

	scores := types.SubScores{
		SkillMatch:         clamp(skill, 0, 100),
		ExperienceFit:      clamp(experience, 0, 100),
		LocationFit:        clamp(location, 0, 100),
		HiringSignal:       clamp(hiring, 0, 100),
		CompanyLevel:       clamp(company, 0, 100),
		IndustryExperience: clamp(industry, 0, 100),
	}

	overall := roundOverall(clamp(
		scores.SkillMatch*skillMatchWeight+
			scores.ExperienceFit*experienceFitWeight+
			scores.LocationFit*locationFitWeight+
			scores.HiringSignal*hiringSignalWeight+
			scores.CompanyLevel*companyLevelWeight+
			scores.IndustryExperience*industryExperienceWeight,
		0, 100))

	strengths, weaknesses := analyze(p, role, scores, missing, ledger)

	return types.ScoreBreakdown{
		CandidateName:      p.DisplayName(),
		RoleTitle:          role.Title,
		Scores:             scores,
		Overall:            overall,
		Grade:              GradeFor(overall),
		HiringSignals:      ledger,
		Strengths:          strengths,
		Weaknesses:         weaknesses,
		MigrationAbility:   clamp(migration, 0, 1),
		TransferableSkills: transferableSkills(p.Skills),
		MatchedSkills:      matched,
		MissingSkills:      missing,
	}
}

func analyze(p types.CandidateProfile, role types.RoleRequirement, s types.SubScores, missing []string, ledger []types.SignalEntry) ([]string, []string) {
	strengths := []string{}
	weaknesses := []string{}

	if s.SkillMatch >= 80 {
		strengths = append(strengths, fmt.Sprintf("Strong skill match (%.0f%%)", s.SkillMatch))
	}
	if s.ExperienceFit >= 80 {
		strengths = append(strengths, fmt.Sprintf("Solid experience fit (%.0f%%)", s.ExperienceFit))
	}
	if s.IndustryExperience >= 80 {
		strengths = append(strengths, "Deep relevant industry background")
	}
	if years := candidateYears(p); years > role.MinYears+2 {
		strengths = append(strengths, fmt.Sprintf("Senior engineer (%d years)", years))
	}
	if best, ok := strongestIntentSignal(ledger); ok {
		strengths = append(strengths, fmt.Sprintf("Hiring signal: %s (+%.0f)", best.Label, best.Delta))
	}

	if s.SkillMatch < 60 && len(missing) > 0 {
		n := len(missing)
		if n > 2 {
			n = 2
		}
		weaknesses = append(weaknesses, "Missing key skills: "+strings.Join(missing[:n], ", "))
	}
	if s.ExperienceFit < 60 {
		weaknesses = append(weaknesses, "Experience or stability below target")
	}
	if p.JobChanges > 3 {
		weaknesses = append(weaknesses, fmt.Sprintf("Frequent job changes (%d)", p.JobChanges))
	}
	if s.IndustryExperience < 50 {
		weaknesses = append(weaknesses, "No related industry background; ramp-up needed")
	}

	return strengths, weaknesses
}

// roundOverall rounds to the single decimal written to overall_score.
// Grade, route and recommendation all read the rounded value.
func roundOverall(v float64) float64 {
	return math.Round(v*10) / 10
}
