package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

const (
	// maxConclusionRunes caps model output stored on the record.
	maxConclusionRunes = 400
	// minConclusionRunes rejects empty or truncated generations.
	minConclusionRunes = 20
	maxPromptSignals   = 4
	maxPromptStrengths = 3
)

// Assessment is everything the narrator needs to describe one scored candidate.
type Assessment struct {
	Profile        types.CandidateProfile
	Role           types.RoleRequirement
	Breakdown      types.ScoreBreakdown
	Recommendation string
}

// Narrator writes the consultant-facing conclusion for a scored candidate.
// A Narrator without a client always uses the template.
type Narrator struct {
	client Client
	config *Config
	logger *zap.Logger
}

// NewNarrator creates a narrator. client may be nil.
func NewNarrator(client Client, config *Config, logger *zap.Logger) *Narrator {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{client: client, config: config, logger: logger}
}

// Enabled reports whether a model backs this narrator.
func (n *Narrator) Enabled() bool {
	return n != nil && n.client != nil
}

// Conclude returns the conclusion text and whether it came from the model.
// Model failures fall back to TemplateConclusion and are never returned as errors.
func (n *Narrator) Conclude(ctx context.Context, a Assessment) (string, bool) {
	if !n.Enabled() {
		return TemplateConclusion(a), false
	}

	prompt := BuildPrompt(a)
	text, err := retry.DoWithData(
		func() (string, error) {
			callCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
			defer cancel()
			out, err := n.client.GenerateContent(callCtx, prompt, TierStandard)
			if err != nil {
				return "", err
			}
			out = CleanNarration(out)
			if len([]rune(out)) < minConclusionRunes {
				return "", fmt.Errorf("conclusion too short (%d runes)", len([]rune(out)))
			}
			return out, nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(n.config.Retries+1)),
		retry.Delay(time.Second),
	)
	if err != nil {
		n.logger.Warn("narration failed, using template",
			zap.String("candidate", a.Profile.DisplayName()),
			zap.Error(err))
		return TemplateConclusion(a), false
	}
	return truncateRunes(text, maxConclusionRunes), true
}

// BuildPrompt renders the narration request for one assessment.
func BuildPrompt(a Assessment) string {
	b := a.Breakdown
	var sb strings.Builder

	sb.WriteString("你是一位資深獵頭顧問，請根據以下資料撰寫一段給招募顧問參考的候選人評估結語。\n\n")

	sb.WriteString("【職缺】\n")
	fmt.Fprintf(&sb, "職稱：%s\n", a.Role.Title)
	if a.Role.Company != "" {
		fmt.Fprintf(&sb, "公司：%s\n", a.Role.Company)
	}
	fmt.Fprintf(&sb, "必備技能：%s\n", orNone(strings.Join(a.Role.RequiredSkills, "、")))
	fmt.Fprintf(&sb, "年資要求：%d 年以上\n", a.Role.MinYears)
	if a.Role.Location != "" {
		fmt.Fprintf(&sb, "地點：%s\n", a.Role.Location)
	}

	sb.WriteString("\n【候選人】\n")
	fmt.Fprintf(&sb, "姓名：%s\n", a.Profile.DisplayName())
	if a.Profile.Headline != "" {
		fmt.Fprintf(&sb, "職稱：%s\n", a.Profile.Headline)
	}
	if a.Profile.Company != "" {
		fmt.Fprintf(&sb, "現職公司：%s\n", a.Profile.Company)
	}
	fmt.Fprintf(&sb, "技能：%s\n", orNone(strings.Join(a.Profile.Skills, "、")))
	if a.Profile.YearsExperience > 0 {
		fmt.Fprintf(&sb, "年資：約 %d 年\n", a.Profile.YearsExperience)
	}
	if a.Profile.Location != "" {
		fmt.Fprintf(&sb, "地點：%s\n", a.Profile.Location)
	}

	sb.WriteString("\n【評分】\n")
	fmt.Fprintf(&sb, "綜合評分：%d/100（%s 級）\n", int(math.Floor(b.Overall)), b.Grade)
	fmt.Fprintf(&sb, "技能匹配 %.0f、年資 %.0f、地點 %.0f、求職訊號 %.0f、公司等級 %.0f、產業經驗 %.0f\n",
		b.Scores.SkillMatch, b.Scores.ExperienceFit, b.Scores.LocationFit,
		b.Scores.HiringSignal, b.Scores.CompanyLevel, b.Scores.IndustryExperience)
	fmt.Fprintf(&sb, "符合技能：%s\n", orNone(strings.Join(b.MatchedSkills, "、")))
	fmt.Fprintf(&sb, "缺少技能：%s\n", orNone(strings.Join(b.MissingSkills, "、")))
	fmt.Fprintf(&sb, "優勢：%s\n", orNone(strings.Join(b.Strengths, "；")))
	fmt.Fprintf(&sb, "待確認：%s\n", orNone(strings.Join(b.Weaknesses, "；")))
	if signals := triggeredLabels(b, maxPromptSignals); len(signals) > 0 {
		fmt.Fprintf(&sb, "求職訊號：%s\n", strings.Join(signals, "、"))
	}
	if a.Recommendation != "" {
		fmt.Fprintf(&sb, "系統建議：%s\n", a.Recommendation)
	}

	sb.WriteString("\n請用繁體中文撰寫 150 到 250 字的結語，說明此人與職缺的契合程度、主要優勢、需要顧問進一步確認的風險，")
	sb.WriteString("最後給出是否值得聯繫的建議。只輸出結語本文，不要標題、條列或 Markdown。")
	return sb.String()
}

// TemplateConclusion is the deterministic conclusion used when no model is available.
func TemplateConclusion(a Assessment) string {
	b := a.Breakdown
	var sb strings.Builder

	switch {
	case b.Overall >= 85:
		sb.WriteString("此候選人與職缺高度契合")
	case b.Overall >= 70:
		sb.WriteString("此候選人與職缺整體契合度良好")
	case b.Overall >= 55:
		sb.WriteString("此候選人具備部分職缺所需條件")
	default:
		sb.WriteString("此候選人與職缺契合度有限")
	}
	fmt.Fprintf(&sb, "，綜合評分 %d/100，等級 %s。", int(math.Floor(b.Overall)), b.Grade)

	if len(b.Strengths) > 0 {
		fmt.Fprintf(&sb, "主要優勢：%s。", strings.Join(head(b.Strengths, maxPromptStrengths), "；"))
	}
	if len(b.Weaknesses) > 0 {
		fmt.Fprintf(&sb, "待確認：%s。", strings.Join(head(b.Weaknesses, 2), "；"))
	}
	if a.Role.Title != "" {
		fmt.Fprintf(&sb, "職缺：%s。", a.Role.Title)
	}
	if a.Recommendation != "" {
		fmt.Fprintf(&sb, "建議：%s。", a.Recommendation)
	}
	return sb.String()
}

// ProbingQuestions are the fixed interview prompts attached to every artifact.
func ProbingQuestions() []string {
	return []string{
		"目前主力技術棧為何？近期專案中負責哪些部分？",
		"期望薪資與可到職時間？",
		"離開現職的主要考量為何？",
		"是否同時面試其他機會？",
	}
}

func triggeredLabels(b types.ScoreBreakdown, limit int) []string {
	var out []string
	for _, e := range b.HiringSignals {
		if !e.Triggered {
			continue
		}
		out = append(out, e.Label)
		if len(out) == limit {
			break
		}
	}
	return out
}

func head(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "無"
	}
	return s
}
