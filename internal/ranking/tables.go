package ranking

import (
	"regexp"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// Dimension weights. They sum to 1.
const (
	skillMatchWeight         = 0.25
	experienceFitWeight      = 0.20
	locationFitWeight        = 0.15
	hiringSignalWeight       = 0.15
	companyLevelWeight       = 0.15
	industryExperienceWeight = 0.10
)

// Employer tiers, matched against every employer in the candidate's history.
var (
	tier1Employers = []string{"Google", "Meta", "Apple", "Amazon", "Microsoft", "Goldman Sachs", "騰訊", "阿里", "字節跳動"}
	tier2Employers = []string{"LINE", "Shopee", "Netflix", "Spotify", "網易", "摩根士丹利"}
)

const (
	tier1Score       = 100.0
	tier2Score       = 85.0
	defaultTierScore = 50.0
)

// metroRegions groups locations that count as the same commuting area.
var metroRegions = [][]string{
	{"台北", "臺北", "新北", "基隆", "taipei", "new taipei", "keelung"},
	{"台中", "臺中", "taichung"},
	{"高雄", "屏東", "kaohsiung", "pingtung"},
	{"新竹", "hsinchu"},
	{"台南", "臺南", "tainan"},
}

// transferability maps (from, to) industry pairs to a [0,1] coefficient.
var transferability = map[[2]types.Industry]float64{
	{types.IndustryFintech, types.IndustryInternet}:      0.9,
	{types.IndustryFintech, types.IndustryDevOps}:        0.85,
	{types.IndustryFintech, types.IndustryManufacturing}: 0.4,
	{types.IndustryInternet, types.IndustryGaming}:       0.9,
	{types.IndustryInternet, types.IndustryDevOps}:       0.95,
	{types.IndustryInternet, types.IndustryFintech}:      0.85,
	{types.IndustryGaming, types.IndustryInternet}:       0.9,
	{types.IndustryGaming, types.IndustryDevOps}:         0.85,
}

// defaultTransferability applies to pairs missing from the matrix.
const defaultTransferability = 0.3

// companyIndustries infers industries from employer names.
var companyIndustries = []struct {
	keyword  string
	industry types.Industry
}{
	{"google", types.IndustryInternet},
	{"meta", types.IndustryInternet},
	{"amazon", types.IndustryInternet},
	{"microsoft", types.IndustryInternet},
	{"shopee", types.IndustryInternet},
	{"line", types.IndustryInternet},
	{"騰訊", types.IndustryGaming},
	{"遊戲橘子", types.IndustryGaming},
	{"gamania", types.IndustryGaming},
	{"遊戲", types.IndustryGaming},
	{"高盛", types.IndustryFintech},
	{"goldman sachs", types.IndustryFintech},
	{"銀行", types.IndustryFintech},
	{"bank", types.IndustryFintech},
	{"金控", types.IndustryFintech},
	{"證券", types.IndustryFintech},
	{"醫療", types.IndustryHealthcare},
	{"醫院", types.IndustryHealthcare},
	{"hospital", types.IndustryHealthcare},
	{"製造", types.IndustryManufacturing},
	{"半導體", types.IndustryManufacturing},
	{"台積電", types.IndustryManufacturing},
	{"tsmc", types.IndustryManufacturing},
	{"法律", types.IndustryLegalTech},
}

// sourceBonus rewards warmer acquisition paths. Referral is highest, cold outreach lowest.
var sourceBonus = map[types.Source]float64{
	types.SourceReferral:     10,
	types.SourceInbound:      8,
	types.SourceJobBoard:     5,
	types.SourceLinkedIn:     4,
	types.SourceGitHub:       3,
	types.SourceWebSearch:    2,
	types.SourceColdOutreach: 0,
}

// openToWorkKeywords mark explicit availability.
var openToWorkKeywords = []string{
	"open to work", "opentowork", "seeking", "looking for", "求職", "尋找機會",
	"available for", "job hunting",
}

// positiveQuitKeywords describe growth-oriented reasons for leaving.
var positiveQuitKeywords = []string{
	"growth", "grow", "challenge", "career", "learn", "opportunit", "promotion",
	"成長", "挑戰", "發展", "學習", "轉型", "升遷", "新機會",
}

// passiveQuitKeywords describe circumstantial reasons for leaving.
var passiveQuitKeywords = []string{
	"layoff", "laid off", "restructur", "reorg", "relocat", "contract", "family", "closed",
	"裁員", "組織調整", "搬家", "約滿", "家庭", "結束營運", "解散", "倒閉",
}

// jobSeekingSkillKeywords are availability notes that candidates put into skill fields.
var jobSeekingSkillKeywords = []string{
	"available immediately", "immediate start", "可立即上班", "可立即到職", "隨時可到職", "待業",
}

// transferableBases are cross-industry skills surfaced in the breakdown.
var transferableBases = []string{"python", "java", "c++", "sql", "git", "docker", "kubernetes"}

const maxTransferableSkills = 5

// nameMatcher matches a company or keyword inside free text. ASCII names
// match on word boundaries so "Meta" does not match "Metadata".
type nameMatcher struct {
	re   *regexp.Regexp
	text string
}

func newNameMatcher(name string) nameMatcher {
	if isASCII(name) {
		return nameMatcher{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)}
	}
	return nameMatcher{text: name}
}

func (m nameMatcher) in(s string) bool {
	if m.re != nil {
		return m.re.MatchString(s)
	}
	return strings.Contains(s, m.text)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func compileMatchers(names []string) []nameMatcher {
	out := make([]nameMatcher, len(names))
	for i, n := range names {
		out[i] = newNameMatcher(n)
	}
	return out
}

var (
	tier1Matchers = compileMatchers(tier1Employers)
	tier2Matchers = compileMatchers(tier2Employers)
)

type industryMatcher struct {
	match    nameMatcher
	industry types.Industry
}

var industryMatchers = func() []industryMatcher {
	out := make([]industryMatcher, len(companyIndustries))
	for i, ci := range companyIndustries {
		out[i] = industryMatcher{match: newNameMatcher(ci.keyword), industry: ci.industry}
	}
	return out
}()

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
