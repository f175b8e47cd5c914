package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateProfile_WithEnrichment_FirstNonEmptyWins(t *testing.T) {
	base := CandidateProfile{
		Username: "octocat",
		Company:  "GitHub",
		Skills:   []string{"Go"},
	}
	extra := CandidateProfile{
		Company:     "LinkedIn Corp",
		Headline:    "Staff Engineer",
		LinkedInURL: "https://linkedin.com/in/octocat",
		Skills:      []string{"Java"},
		Employers:   []string{"Google"},
	}

	merged := base.WithEnrichment(extra)

	assert.Equal(t, "GitHub", merged.Company)
	assert.Equal(t, "Staff Engineer", merged.Headline)
	assert.Equal(t, "https://linkedin.com/in/octocat", merged.LinkedInURL)
	assert.Equal(t, []string{"Go"}, merged.Skills)
	assert.Equal(t, []string{"Google"}, merged.Employers)
}

func TestCandidateProfile_WithEnrichment_DoesNotMutateInputs(t *testing.T) {
	base := CandidateProfile{Username: "octocat", Skills: []string{"Go"}}
	extra := CandidateProfile{Employers: []string{"Google"}}

	merged := base.WithEnrichment(extra)
	merged.Skills[0] = "Rust"
	merged.Employers[0] = "Meta"

	assert.Equal(t, "Go", base.Skills[0])
	assert.Equal(t, "Google", extra.Employers[0])
	assert.Empty(t, base.Headline)
}

func TestCandidateProfile_Eligible(t *testing.T) {
	assert.False(t, CandidateProfile{Name: "No Key"}.Eligible())
	assert.True(t, CandidateProfile{Username: "x"}.Eligible())
	assert.True(t, CandidateProfile{Source: SourceReferral}.Eligible())
}

func TestCandidateProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", CandidateProfile{Name: " Ada "}.DisplayName())
	assert.Equal(t, "ada", CandidateProfile{Username: "ada"}.DisplayName())
	assert.Equal(t, "unknown", CandidateProfile{}.DisplayName())
}

func TestRoleRequirement_PrimarySecondary(t *testing.T) {
	req := RoleRequirement{Title: "Backend", RequiredSkills: []string{"Go", "Kubernetes", "Docker", "AWS"}}

	primary := req.Primary()
	assert.Equal(t, []string{"Go", "Kubernetes"}, primary)
	assert.Equal(t, []string{"Docker", "AWS"}, req.Secondary())

	primary[0] = "Rust"
	assert.Equal(t, "Go", req.RequiredSkills[0])

	short := RoleRequirement{RequiredSkills: []string{"Go"}}
	assert.Equal(t, []string{"Go"}, short.Primary())
	assert.Nil(t, short.Secondary())
}

func TestRoleRequirement_Validate(t *testing.T) {
	valid := RoleRequirement{Title: "Backend", MinYears: 3}
	require.NoError(t, valid.Validate())

	missingTitle := RoleRequirement{MinYears: 3}
	assert.Error(t, missingTitle.Validate())

	negative := RoleRequirement{Title: "Backend", MinYears: -1}
	assert.Error(t, negative.Validate())
}

func TestParseIndustry(t *testing.T) {
	assert.Equal(t, IndustryFintech, ParseIndustry("fintech"))
	assert.Equal(t, IndustryUnknown, ParseIndustry("aerospace"))
	assert.Equal(t, IndustryUnknown, ParseIndustry(""))
}

func TestScoreBreakdown_Artifact(t *testing.T) {
	b := ScoreBreakdown{
		RoleTitle: "Backend",
		Scores:    SubScores{SkillMatch: 40, ExperienceFit: 96.54},
		Overall:   72.456,
		Grade:     GradeB,
		HiringSignals: []SignalEntry{
			{Key: "gap", Label: "recent gap", Delta: 30, Triggered: true},
			{Key: "open_to_work", Label: "open to work", Delta: 0, Triggered: false},
		},
		MigrationAbility: 0.856,
	}

	a := b.Artifact()
	assert.Equal(t, 72.5, a.OverallScore)
	assert.Equal(t, 72, a.Score)
	assert.Equal(t, 96.5, a.Scores.ExperienceFit)
	assert.Equal(t, 0.86, a.MigrationAbility)
	assert.Len(t, a.HiringSignalBreakdown, 2)
	assert.True(t, a.HiringSignalBreakdown["gap"].Triggered)
	assert.NotNil(t, a.Strengths)
	assert.NotNil(t, a.TransferableSkills)
	assert.Equal(t, "Backend", a.JobTitle)
}

func TestRunStats_Add(t *testing.T) {
	total := RunStats{Found: 1}
	total.Add(RunStats{Found: 2, Scored: 3, Recommended: 1})
	assert.Equal(t, 3, total.Found)
	assert.Equal(t, 3, total.Scored)
	assert.Equal(t, 1, total.Recommended)
}
