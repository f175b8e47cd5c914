package types

import "math"

// Grade is the discrete talent level derived from an overall score.
type Grade string

const (
	GradeS     Grade = "S"
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
)

// SubScores holds the six weighted dimensions, each in [0,100].
type SubScores struct {
	SkillMatch         float64 `json:"skill_match"`
	ExperienceFit      float64 `json:"experience_fit"`
	LocationFit        float64 `json:"location_fit"`
	HiringSignal       float64 `json:"hiring_signal"`
	CompanyLevel       float64 `json:"company_level"`
	IndustryExperience float64 `json:"industry_experience"`
}

// SignalEntry is one line of the hiring-intent ledger.
type SignalEntry struct {
	Key       string  `json:"-"`
	Label     string  `json:"label"`
	Delta     float64 `json:"delta"`
	Triggered bool    `json:"triggered"`
}

// ScoreBreakdown is the explainable result of scoring one profile against one role.
type ScoreBreakdown struct {
	CandidateName      string        `json:"candidate_name"`
	RoleTitle          string        `json:"role_title"`
	Scores             SubScores     `json:"scores"`
	Overall            float64       `json:"overall_score"`
	Grade              Grade         `json:"talent_level"`
	HiringSignals      []SignalEntry `json:"hiring_signals"`
	Strengths          []string      `json:"strengths"`
	Weaknesses         []string      `json:"weaknesses"`
	MigrationAbility   float64       `json:"migration_ability"`
	TransferableSkills []string      `json:"transferable_skills"`
	MatchedSkills      []string      `json:"matched_skills"`
	MissingSkills      []string      `json:"missing_skills"`
}

// Signal returns the ledger entry with the given key.
func (b ScoreBreakdown) Signal(key string) (SignalEntry, bool) {
	for _, e := range b.HiringSignals {
		if e.Key == key {
			return e, true
		}
	}
	return SignalEntry{}, false
}

// Artifact is the per-profile, per-role document handed back to the record store.
type Artifact struct {
	OverallScore          float64                `json:"overall_score"`
	TalentLevel           Grade                  `json:"talent_level"`
	Scores                SubScores              `json:"scores"`
	Strengths             []string               `json:"strengths"`
	Weaknesses            []string               `json:"weaknesses"`
	MigrationAbility      float64                `json:"migration_ability"`
	TransferableSkills    []string               `json:"transferable_skills"`
	HiringSignalBreakdown map[string]SignalEntry `json:"hiring_signal_breakdown"`

	// Routing and narration fields added by the pipeline.
	Score          int      `json:"score"`
	Recommendation string   `json:"recommendation,omitempty"`
	JobID          string   `json:"job_id,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`

	// ProbingQuestions are interview prompts for the consultant.
	ProbingQuestions []string `json:"probing_questions,omitempty"`
	Conclusion       string   `json:"conclusion,omitempty"`
	EvaluatedAt      string   `json:"evaluated_at,omitempty"`
	EvaluatedBy      string   `json:"evaluated_by,omitempty"`
}

// Artifact renders the breakdown in the record-store artifact shape, rounding
// scores to one decimal and migration ability to two.
func (b ScoreBreakdown) Artifact() Artifact {
	ledger := make(map[string]SignalEntry, len(b.HiringSignals))
	for _, e := range b.HiringSignals {
		e.Delta = round(e.Delta, 1)
		ledger[e.Key] = e
	}
	return Artifact{
		OverallScore: round(b.Overall, 1),
		TalentLevel:  b.Grade,
		Scores: SubScores{
			SkillMatch:         round(b.Scores.SkillMatch, 1),
			ExperienceFit:      round(b.Scores.ExperienceFit, 1),
			LocationFit:        round(b.Scores.LocationFit, 1),
			HiringSignal:       round(b.Scores.HiringSignal, 1),
			CompanyLevel:       round(b.Scores.CompanyLevel, 1),
			IndustryExperience: round(b.Scores.IndustryExperience, 1),
		},
		Strengths:             nonNil(b.Strengths),
		Weaknesses:            nonNil(b.Weaknesses),
		MigrationAbility:      round(b.MigrationAbility, 2),
		TransferableSkills:    nonNil(b.TransferableSkills),
		HiringSignalBreakdown: ledger,
		Score:                 int(math.Floor(round(b.Overall, 1))),
		JobTitle:              b.RoleTitle,
		MatchedSkills:         nonNil(b.MatchedSkills),
		MissingSkills:         nonNil(b.MissingSkills),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
