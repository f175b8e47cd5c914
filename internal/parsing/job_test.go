package parsing

import (
	"testing"

	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "Kubernetes", "Docker", "AWS"}, ParseSkills("Go, Kubernetes、Docker；AWS"))
	assert.Equal(t, []string{"Python", "SQL"}, ParseSkills("Python\n\nSQL\n"))
	assert.Nil(t, ParseSkills("   "))

	many := "a,b,c,d,e,f,g,h,i,j,k,l"
	assert.Len(t, ParseSkills(many), MaxParsedSkills)
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"3年以上", 3},
		{"5-8 years", 5},
		{"at least 10+ yrs", 10},
		{"不限", DefaultYears},
		{"", DefaultYears},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseYears(tt.input))
		})
	}
}

func TestEstimateYears(t *testing.T) {
	tests := []struct {
		title    string
		expected int
	}{
		{"Staff Software Engineer", 10},
		{"Senior Backend Engineer", 6},
		{"資深工程師", 6},
		{"Engineering Manager", 8},
		{"Junior Developer", 1},
		{"Software Engineer", DefaultYears},
		{"", DefaultYears},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimateYears(tt.title))
		})
	}
}

func TestBuildRole(t *testing.T) {
	role, err := BuildRole(JobRecord{
		ID:                 "7",
		Title:              " Backend Engineer ",
		Company:            "Acme",
		Industry:           "Fintech",
		KeySkills:          "golang, k8s, Docker, AWS",
		ExperienceRequired: "5年以上",
		Location:           "Taipei",
	})
	require.NoError(t, err)

	assert.Equal(t, "7", role.JobID)
	assert.Equal(t, "Backend Engineer", role.Title)
	assert.Equal(t, types.IndustryFintech, role.Industry)
	assert.Equal(t, []string{"Go", "Kubernetes", "Docker", "AWS"}, role.RequiredSkills)
	assert.Equal(t, 5, role.MinYears)
	assert.Equal(t, "Taipei", role.Location)
}

func TestBuildRole_Defaults(t *testing.T) {
	role, err := BuildRole(JobRecord{Title: "SRE"})
	require.NoError(t, err)
	assert.Equal(t, "台灣", role.Location)
	assert.Equal(t, DefaultYears, role.MinYears)
	assert.Equal(t, types.IndustryInternet, role.Industry)
	assert.Empty(t, role.RequiredSkills)
}

func TestBuildRole_MissingTitle(t *testing.T) {
	_, err := BuildRole(JobRecord{KeySkills: "Go"})
	require.Error(t, err)

	var jobErr *JobError
	assert.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "title", jobErr.Field)
	assert.EqualError(t, err, "job  field title: job has no title")
}
