package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, _ ModelTier) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no reply")
}

func (s *stubClient) Close() error { return nil }

func sampleAssessment() Assessment {
	return Assessment{
		Profile: types.CandidateProfile{
			Name:            "Jane Chen",
			Headline:        "Senior Backend Engineer",
			Company:         "Acme",
			Skills:          []string{"Go", "Kubernetes"},
			YearsExperience: 6,
			Location:        "台北",
		},
		Role: types.RoleRequirement{
			Title:          "Backend Engineer",
			Company:        "Globex",
			RequiredSkills: []string{"Go", "Kubernetes", "AWS"},
			MinYears:       3,
			Location:       "台北",
		},
		Breakdown: types.ScoreBreakdown{
			Overall: 86.4,
			Grade:   types.GradeAPlus,
			Scores: types.SubScores{
				SkillMatch: 90, ExperienceFit: 100, LocationFit: 100,
				HiringSignal: 60, CompanyLevel: 70, IndustryExperience: 80,
			},
			Strengths:     []string{"技能高度符合", "年資充足", "同城", "活躍"},
			Weaknesses:    []string{"缺少 AWS"},
			MatchedSkills: []string{"Go", "Kubernetes"},
			MissingSkills: []string{"AWS"},
			HiringSignals: []types.SignalEntry{
				{Key: "open_to_work", Label: "開放機會", Delta: 10, Triggered: true},
				{Key: "gap", Label: "空窗期", Delta: 0},
				{Key: "recency", Label: "近期更新", Delta: 5, Triggered: true},
			},
		},
		Recommendation: "強力推薦",
	}
}

func fastConfig() *Config {
	config := DefaultConfig()
	config.Retries = 0
	return config
}

func TestNarrator_UsesModelText(t *testing.T) {
	client := &stubClient{replies: []string{"結語：Jane 在 Go 與 Kubernetes 上經驗扎實，與職缺高度契合，建議盡快聯繫。"}}
	n := NewNarrator(client, fastConfig(), nil)

	text, narrated := n.Conclude(context.Background(), sampleAssessment())

	assert.True(t, narrated)
	assert.Equal(t, "Jane 在 Go 與 Kubernetes 上經驗扎實，與職缺高度契合，建議盡快聯繫。", text)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Backend Engineer")
}

func TestNarrator_FallsBackOnError(t *testing.T) {
	client := &stubClient{errs: []error{errors.New("quota exceeded")}}
	n := NewNarrator(client, fastConfig(), nil)
	a := sampleAssessment()

	text, narrated := n.Conclude(context.Background(), a)

	assert.False(t, narrated)
	assert.Equal(t, TemplateConclusion(a), text)
}

func TestNarrator_RejectsShortReply(t *testing.T) {
	client := &stubClient{replies: []string{"OK"}}
	n := NewNarrator(client, fastConfig(), nil)

	_, narrated := n.Conclude(context.Background(), sampleAssessment())
	assert.False(t, narrated)
}

func TestNarrator_RetriesOnce(t *testing.T) {
	config := DefaultConfig()
	config.Retries = 1
	client := &stubClient{
		errs:    []error{errors.New("503")},
		replies: []string{"", "此候選人整體條件良好，技能與年資皆符合職缺需求，建議安排電話訪談。"},
	}
	n := NewNarrator(client, config, nil)

	text, narrated := n.Conclude(context.Background(), sampleAssessment())
	assert.True(t, narrated)
	assert.Len(t, client.prompts, 2)
	assert.Contains(t, text, "電話訪談")
}

func TestNarrator_DisabledWithoutClient(t *testing.T) {
	n := NewNarrator(nil, nil, nil)
	assert.False(t, n.Enabled())

	text, narrated := n.Conclude(context.Background(), sampleAssessment())
	assert.False(t, narrated)
	assert.True(t, strings.HasPrefix(text, "此候選人與職缺高度契合"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleAssessment())

	assert.Contains(t, prompt, "職稱：Backend Engineer")
	assert.Contains(t, prompt, "必備技能：Go、Kubernetes、AWS")
	assert.Contains(t, prompt, "綜合評分：86/100（A+ 級）")
	assert.Contains(t, prompt, "缺少技能：AWS")
	assert.Contains(t, prompt, "求職訊號：開放機會、近期更新")
	assert.NotContains(t, prompt, "空窗期")
	assert.Contains(t, prompt, "系統建議：強力推薦")
}

func TestTemplateConclusion(t *testing.T) {
	a := sampleAssessment()
	text := TemplateConclusion(a)

	assert.Equal(t,
		"此候選人與職缺高度契合，綜合評分 86/100，等級 A+。主要優勢：技能高度符合；年資充足；同城。待確認：缺少 AWS。職缺：Backend Engineer。建議：強力推薦。",
		text)

	tests := []struct {
		overall float64
		opener  string
	}{
		{72, "此候選人與職缺整體契合度良好"},
		{55, "此候選人具備部分職缺所需條件"},
		{40, "此候選人與職缺契合度有限"},
	}
	for _, tt := range tests {
		a.Breakdown.Overall = tt.overall
		assert.True(t, strings.HasPrefix(TemplateConclusion(a), tt.opener), "overall %.0f", tt.overall)
	}
}

func TestProbingQuestions(t *testing.T) {
	qs := ProbingQuestions()
	require.Len(t, qs, 4)
	qs[0] = "mutated"
	assert.NotEqual(t, "mutated", ProbingQuestions()[0])
}
