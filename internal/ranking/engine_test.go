package ranking

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func backendRole() types.RoleRequirement {
	return types.RoleRequirement{
		Title:          "Backend Engineer",
		Industry:       types.IndustryInternet,
		RequiredSkills: []string{"Go", "Kubernetes", "Docker", "AWS"},
		MinYears:       5,
		Location:       "Taipei",
	}
}

func TestEngine_Score_EndToEndScenario(t *testing.T) {
	candidate := types.CandidateProfile{
		Name:            "Jane",
		Skills:          []string{"Go", "Docker", "SQL"},
		YearsExperience: 6,
		JobChanges:      1,
		Location:        "Taipei",
		RecentGapMonths: 1,
	}

	b := NewEngine().Score(candidate, backendRole(), fixedNow)

	assert.InDelta(t, 40.0, b.Scores.SkillMatch, 1e-9)
	assert.InDelta(t, 100.0, b.Scores.LocationFit, 1e-9)
	assert.InDelta(t, 96.5, b.Scores.ExperienceFit, 1e-9)
	assert.InDelta(t, 75.0, b.Scores.HiringSignal, 1e-9)
	assert.InDelta(t, 50.0, b.Scores.CompanyLevel, 1e-9)
	assert.InDelta(t, 30.0, b.Scores.IndustryExperience, 1e-9)

	expected := 40*0.25 + 96.5*0.20 + 100*0.15 + 75*0.15 + 50*0.15 + 30*0.10
	assert.InDelta(t, expected, b.Overall, 0.05+1e-9)
	assert.Equal(t, GradeFor(expected), b.Grade)
	assert.Equal(t, types.GradeB, b.Grade)

	assert.Equal(t, []string{"Go", "Docker"}, b.MatchedSkills)
	assert.Equal(t, []string{"Kubernetes", "AWS"}, b.MissingSkills)
	assert.InDelta(t, 0.3, b.MigrationAbility, 1e-9)
	assert.Equal(t, []string{"Docker", "SQL"}, b.TransferableSkills)

	require.NotEmpty(t, b.Strengths)
	assert.Contains(t, b.Strengths[0], "Solid experience fit")
	assert.Contains(t, b.Strengths, "Hiring signal: recent employment gap of 1 month(s) (+30)")
	assert.Contains(t, b.Weaknesses, "Missing key skills: Kubernetes, AWS")
}

func TestRoundOverall_LabelsMatchWrittenScore(t *testing.T) {
	tests := []struct {
		raw       float64
		overall   float64
		grade     types.Grade
		status    string
		recommend string
	}{
		{79.96, 80, types.GradeA, types.StatusAIRecommended, RecommendYes},
		{89.96, 90, types.GradeS, types.StatusAIRecommended, RecommendStrong},
		{79.94, 79.9, types.GradeA, types.StatusBackupPool, RecommendYes},
		{84.96, 85, types.GradeAPlus, types.StatusAIRecommended, RecommendStrong},
	}
	for _, tt := range tests {
		overall := roundOverall(tt.raw)
		assert.Equal(t, tt.overall, overall, "raw %v", tt.raw)

		b := types.ScoreBreakdown{Overall: overall, Grade: GradeFor(overall)}
		a := b.Artifact()
		assert.Equal(t, tt.overall, a.OverallScore, "raw %v", tt.raw)
		assert.Equal(t, tt.grade, a.TalentLevel, "raw %v", tt.raw)
		assert.Equal(t, int(tt.overall), a.Score, "raw %v", tt.raw)
		assert.Equal(t, tt.status, Route(a.OverallScore), "raw %v", tt.raw)
		assert.Equal(t, tt.recommend, Recommendation(a.OverallScore), "raw %v", tt.raw)
	}
}

func TestGradeFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		grade types.Grade
	}{
		{100, types.GradeS},
		{90, types.GradeS},
		{89.99, types.GradeAPlus},
		{85, types.GradeAPlus},
		{75, types.GradeA},
		{60, types.GradeB},
		{59.9, types.GradeC},
		{0, types.GradeC},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.grade, GradeFor(tt.score), "score %v", tt.score)
	}
}

func TestEngine_Score_Deterministic(t *testing.T) {
	candidate := types.CandidateProfile{
		Name:               "Det",
		Skills:             []string{"Python", "Kubernetes", "open to work"},
		Company:            "Shopee",
		Employers:          []string{"Cathay Bank"},
		YearsExperience:    4,
		JobChanges:         3,
		AvgTenureMonths:    10,
		RecentTenureMonths: 8,
		RecentGapMonths:    3,
		Email:              "det@example.com",
		Source:             types.SourceReferral,
		UpdatedAt:          "2025-02-25",
		QuitReason:         "looking for growth",
	}
	engine := NewEngine()

	first := engine.Score(candidate, backendRole(), fixedNow)
	for i := 0; i < 5; i++ {
		again := engine.Score(candidate, backendRole(), fixedNow)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("breakdown changed between calls (-first +again):\n%s", diff)
		}
	}
}

func TestEngine_Score_ClampsAdversarialInputs(t *testing.T) {
	inputs := []types.CandidateProfile{
		{},
		{YearsExperience: 1000, JobChanges: 500, AvgTenureMonths: 1, RecentGapMonths: 999},
		{
			Skills:             []string{"open to work", "available immediately", "Go", "Kubernetes", "Docker", "AWS"},
			YearsExperience:    5,
			JobChanges:         9,
			RecentTenureMonths: 2,
			RecentGapMonths:    1,
			Email:              "a@b.c",
			Phone:              "0912",
			LinkedInURL:        "https://linkedin.com/in/a",
			GitHubURL:          "https://github.com/a",
			Source:             types.SourceReferral,
			UpdatedAt:          fixedNow.Format(time.RFC3339),
			QuitReason:         "career growth",
			Company:            "Google",
			Location:           "Taipei",
		},
		{YearsExperience: -20, RecentGapMonths: -3, UpdatedAt: "not-a-date"},
	}
	roles := []types.RoleRequirement{
		backendRole(),
		{Title: "Empty"},
		{Title: "Huge", MinYears: 60, NiceToHaveSkills: []string{"Go"}},
	}

	engine := NewEngine()
	for _, p := range inputs {
		for _, r := range roles {
			b := engine.Score(p, r, fixedNow)
			for name, v := range map[string]float64{
				"skill":      b.Scores.SkillMatch,
				"experience": b.Scores.ExperienceFit,
				"location":   b.Scores.LocationFit,
				"hiring":     b.Scores.HiringSignal,
				"company":    b.Scores.CompanyLevel,
				"industry":   b.Scores.IndustryExperience,
				"overall":    b.Overall,
			} {
				assert.GreaterOrEqual(t, v, 0.0, name)
				assert.LessOrEqual(t, v, 100.0, name)
			}
			assert.GreaterOrEqual(t, b.MigrationAbility, 0.0)
			assert.LessOrEqual(t, b.MigrationAbility, 1.0)
		}
	}
}

func TestEngine_Score_HiringSignalSaturates(t *testing.T) {
	p := types.CandidateProfile{
		Skills:             []string{"open to work", "available immediately"},
		JobChanges:         5,
		RecentTenureMonths: 3,
		RecentGapMonths:    2,
		Email:              "a@b.c",
		Phone:              "0912",
		Source:             types.SourceReferral,
		UpdatedAt:          "2025-02-28T10:00:00Z",
		QuitReason:         "career growth",
	}
	b := NewEngine().Score(p, backendRole(), fixedNow)
	assert.Equal(t, 100.0, b.Scores.HiringSignal)
}

func TestEngine_Score_EmptyRequirementIsNeutral(t *testing.T) {
	b := NewEngine().Score(types.CandidateProfile{Skills: []string{"Go"}}, types.RoleRequirement{Title: "Any"}, fixedNow)
	assert.Equal(t, 75.0, b.Scores.SkillMatch)
	assert.Empty(t, b.MissingSkills)
}

func TestEngine_Score_MissingOptionalFields(t *testing.T) {
	b := NewEngine().Score(types.CandidateProfile{}, backendRole(), time.Time{})

	assert.Equal(t, 0.0, b.Scores.SkillMatch)
	assert.Equal(t, 50.0, b.Scores.LocationFit)
	assert.Equal(t, hiringSignalBase, b.Scores.HiringSignal)
	assert.Equal(t, "unknown", b.CandidateName)

	recency, ok := b.Signal(SignalRecency)
	require.True(t, ok)
	assert.False(t, recency.Triggered)
}

func TestEngine_Score_SeniorAndIndustryStrengths(t *testing.T) {
	p := types.CandidateProfile{
		Skills:          []string{"Go", "Kubernetes", "Docker", "AWS"},
		YearsExperience: 9,
		Employers:       []string{"Google Taiwan"},
		Location:        "New Taipei",
	}
	b := NewEngine().Score(p, backendRole(), fixedNow)

	assert.Equal(t, 80.0, b.Scores.SkillMatch)
	assert.Equal(t, 90.0, b.Scores.LocationFit)
	assert.Equal(t, 100.0, b.Scores.CompanyLevel)
	assert.Equal(t, 100.0, b.Scores.IndustryExperience)
	assert.Equal(t, 1.0, b.MigrationAbility)
	assert.Contains(t, b.Strengths, "Strong skill match (80%)")
	assert.Contains(t, b.Strengths, "Deep relevant industry background")
	assert.Contains(t, b.Strengths, "Senior engineer (9 years)")
}

func TestEngine_Score_Weaknesses(t *testing.T) {
	p := types.CandidateProfile{
		Skills:          []string{"PHP"},
		YearsExperience: 15,
		JobChanges:      6,
		AvgTenureMonths: 4,
	}
	b := NewEngine().Score(p, backendRole(), fixedNow)

	assert.Contains(t, b.Weaknesses, "Missing key skills: Go, Kubernetes")
	assert.Contains(t, b.Weaknesses, "Experience or stability below target")
	assert.Contains(t, b.Weaknesses, "Frequent job changes (6)")
	assert.Contains(t, b.Weaknesses, "No related industry background; ramp-up needed")
}

func TestEngine_Score_NiceToHaveBonus(t *testing.T) {
	role := backendRole()
	role.NiceToHaveSkills = []string{"Terraform", "Rust"}
	p := types.CandidateProfile{Skills: []string{"Go", "Kubernetes", "Docker", "AWS", "terraform"}}

	b := NewEngine().Score(p, role, fixedNow)
	assert.InDelta(t, 85.0, b.Scores.SkillMatch, 1e-9)
}
