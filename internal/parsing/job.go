package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// MaxParsedSkills caps the number of skills taken from a free-text skill field.
const MaxParsedSkills = 10

// DefaultYears is used when no integer can be found in an experience requirement.
const DefaultYears = 3

var (
	skillDelimiters = regexp.MustCompile(`[,，、\n;；]`)
	firstInteger    = regexp.MustCompile(`\d+`)
)

// JobRecord is the loosely-typed job shape returned by the record store.
type JobRecord struct {
	ID                 string
	Title              string
	Company            string
	Industry           string
	KeySkills          string
	NiceToHave         string
	ExperienceRequired string
	Location           string
}

// ParseSkills splits a free-text skill field on common ASCII and CJK delimiters.
func ParseSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var skills []string
	for _, part := range skillDelimiters.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		skills = append(skills, part)
		if len(skills) == MaxParsedSkills {
			break
		}
	}
	return skills
}

// ParseYears returns the first integer found in an experience requirement such as "3-5年" or "5+ years".
func ParseYears(text string) int {
	m := firstInteger.FindString(text)
	if m == "" {
		return DefaultYears
	}
	years, err := strconv.Atoi(m)
	if err != nil {
		return DefaultYears
	}
	return years
}

var seniorityRules = []struct {
	keywords []string
	years    int
}{
	{[]string{"principal", "staff", "distinguished", "fellow"}, 10},
	{[]string{"senior", "sr.", "lead", "資深", "高級"}, 6},
	{[]string{"junior", "jr.", "associate", "初級"}, 1},
	{[]string{"manager", "director", "head", "vp"}, 8},
}

// EstimateYears guesses years of experience from a job title when nothing better is known.
func EstimateYears(title string) int {
	lower := strings.ToLower(title)
	for _, rule := range seniorityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.years
			}
		}
	}
	return DefaultYears
}

// BuildRole maps a record-store job into a RoleRequirement.
func BuildRole(job JobRecord) (types.RoleRequirement, error) {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		return types.RoleRequirement{}, &JobError{JobID: job.ID, Field: "title", Message: "job has no title"}
	}

	location := strings.TrimSpace(job.Location)
	if location == "" {
		location = "台灣"
	}

	role := types.RoleRequirement{
		JobID:            job.ID,
		Title:            title,
		Company:          strings.TrimSpace(job.Company),
		Industry:         types.ParseIndustry(strings.ToLower(strings.TrimSpace(job.Industry))),
		RequiredSkills:   NormalizeSkills(ParseSkills(job.KeySkills)),
		NiceToHaveSkills: NormalizeSkills(ParseSkills(job.NiceToHave)),
		MinYears:         ParseYears(job.ExperienceRequired),
		Location:         location,
	}
	if role.Industry == types.IndustryUnknown {
		role.Industry = types.IndustryInternet
	}
	if err := role.Validate(); err != nil {
		return types.RoleRequirement{}, &JobError{JobID: job.ID, Message: "invalid role", Cause: err}
	}
	return role, nil
}
