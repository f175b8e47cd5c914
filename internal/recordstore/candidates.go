package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/identity"
	"github.com/jonathan/talent-sourcing/internal/parsing"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// MaxImportedSkills caps the skill list sent when importing a candidate.
const MaxImportedSkills = 8

// Record is one candidate as stored in the record store.
type Record struct {
	ID          string
	Status      string
	TargetJobID string
	// Scored reports whether an ai_match_result is already attached.
	Scored  bool
	Profile types.CandidateProfile
}

// Filter narrows a candidate listing.
type Filter struct {
	Status string
	JobID  string
	Limit  int
}

// Update is a status transition plus the scoring artifact.
type Update struct {
	Status string
	Result any
}

// field returns the first present key, so camelCase and snake_case payloads decode alike.
func field(v gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := v.Get(k); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func stringField(v gjson.Result, keys ...string) string {
	return strings.TrimSpace(field(v, keys...).String())
}

// skillsField accepts a JSON array or a delimited string.
func skillsField(v gjson.Result, keys ...string) []string {
	r := field(v, keys...)
	if r.IsArray() {
		var out []string
		for _, s := range r.Array() {
			if t := strings.TrimSpace(s.String()); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return parsing.ParseSkills(r.String())
}

// ParseSource maps the record store's free-form source label onto a Source.
func ParseSource(s string) types.Source {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case lower == "":
		return ""
	case strings.Contains(lower, "github"):
		return types.SourceGitHub
	case strings.Contains(lower, "linkedin"):
		return types.SourceLinkedIn
	case strings.Contains(lower, "referral") || strings.Contains(lower, "內推") || strings.Contains(lower, "推薦"):
		return types.SourceReferral
	case strings.Contains(lower, "inbound") || strings.Contains(lower, "主動"):
		return types.SourceInbound
	case strings.Contains(lower, "job_board") || strings.Contains(lower, "104") || strings.Contains(lower, "人力銀行"):
		return types.SourceJobBoard
	case strings.Contains(lower, "search") || strings.Contains(lower, "web"):
		return types.SourceWebSearch
	default:
		return types.SourceColdOutreach
	}
}

// sourceLabel is the display form written back to the record store.
func sourceLabel(s types.Source) string {
	switch s {
	case types.SourceGitHub:
		return "GitHub"
	case types.SourceLinkedIn, types.SourceWebSearch, "":
		return "LinkedIn"
	default:
		return string(s)
	}
}

// DecodeRecord converts one listed candidate into a Record.
func DecodeRecord(v gjson.Result) Record {
	p := types.CandidateProfile{
		Name:               stringField(v, "name"),
		Headline:           stringField(v, "position", "title", "headline"),
		Company:            stringField(v, "company", "currentCompany", "current_company"),
		Location:           stringField(v, "location"),
		Skills:             skillsField(v, "skills"),
		LinkedInURL:        stringField(v, "linkedinUrl", "linkedin_url"),
		GitHubURL:          stringField(v, "githubUrl", "github_url"),
		Email:              stringField(v, "email"),
		Phone:              stringField(v, "phone"),
		Notes:              stringField(v, "notes"),
		QuitReason:         stringField(v, "quitReason", "quit_reason"),
		Source:             ParseSource(stringField(v, "source")),
		UpdatedAt:          stringField(v, "updatedAt", "updated_at"),
		YearsExperience:    int(field(v, "yearsExperience", "years_experience").Int()),
		JobChanges:         int(field(v, "jobChanges", "job_changes").Int()),
		AvgTenureMonths:    int(field(v, "avgTenureMonths", "avg_tenure_months").Int()),
		RecentTenureMonths: int(field(v, "recentTenureMonths", "recent_tenure_months").Int()),
		RecentGapMonths:    int(field(v, "recentGapMonths", "recent_gap_months").Int()),
		RecordID:           stringField(v, "id"),
	}
	if company := p.Company; company != "" {
		p.Employers = []string{company}
	}
	if bg := field(v, "companyBackground", "company_background"); bg.IsArray() {
		p.Employers = nil
		for _, c := range bg.Array() {
			if t := strings.TrimSpace(c.String()); t != "" {
				p.Employers = append(p.Employers, t)
			}
		}
	}
	if login, ok := identity.GitHubLogin(p.GitHubURL); ok {
		p.Username = login
	}
	if p.LinkedInURL != "" {
		p.ProfileURL = identity.Normalize(p.LinkedInURL)
	}

	return Record{
		ID:          p.RecordID,
		Status:      stringField(v, "status"),
		TargetJobID: stringField(v, "targetJobId", "target_job_id"),
		Scored:      field(v, "aiMatchResult", "ai_match_result").IsObject(),
		Profile:     p,
	}
}

// ListCandidates returns candidates matching the filter. A record carrying a
// target job only matches a filter for that job.
func (c *Client) ListCandidates(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	query := map[string]string{"limit": strconv.Itoa(f.Limit)}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.JobID != "" {
		query["job_id"] = f.JobID
	}

	body, err := c.get(ctx, "/api/candidates", query)
	if err != nil {
		return nil, err
	}

	var out []Record
	body.Get("data").ForEach(func(_, v gjson.Result) bool {
		r := DecodeRecord(v)
		if f.Status != "" && r.Status != "" && r.Status != f.Status {
			return true
		}
		if f.JobID != "" && r.TargetJobID != "" && r.TargetJobID != f.JobID {
			return true
		}
		out = append(out, r)
		return true
	})
	c.logger.Debug("listed candidates", zap.Int("count", len(out)), zap.String("status", f.Status))
	return out, nil
}

// Profiles returns the profile of every record.
func Profiles(records []Record) []types.CandidateProfile {
	out := make([]types.CandidateProfile, len(records))
	for i, r := range records {
		out[i] = r.Profile
	}
	return out
}

// ImportPayload builds the creation payload for a sourced profile.
func (c *Client) ImportPayload(p types.CandidateProfile, role types.RoleRequirement, status string) map[string]any {
	name := strings.TrimSpace(p.Name)
	if name == "" || strings.EqualFold(name, "unknown") {
		login := p.Username
		if login == "" {
			login = "unknown"
		}
		name = "候選人_" + login
	}

	position := p.Headline
	if position == "" {
		position = role.Title
	}

	skills := p.Skills
	if len(skills) == 0 {
		skills = role.RequiredSkills
	}
	if len(skills) > MaxImportedSkills {
		skills = skills[:MaxImportedSkills]
	}

	linkedin := p.LinkedInURL
	if linkedin == "" {
		if _, ok := identity.LinkedInSlug(p.ProfileURL); ok {
			linkedin = p.ProfileURL
		}
	}

	notes := fmt.Sprintf("Bot auto import | target job: %s | %s", role.Title, c.now().Format("2006-01-02"))
	if strings.TrimSpace(p.Notes) != "" {
		notes += " | " + strings.TrimSpace(p.Notes)
	}

	return map[string]any{
		"name":          name,
		"position":      position,
		"company":       p.Company,
		"location":      p.Location,
		"skills":        strings.Join(skills, ", "),
		"linkedin_url":  linkedin,
		"github_url":    p.GitHubURL,
		"email":         p.Email,
		"phone":         p.Phone,
		"source":        sourceLabel(p.Source),
		"status":        status,
		"target_job_id": role.JobID,
		"consultant":    c.actor,
		"notes":         notes,
		"by":            c.actor,
		"actor":         c.actor,
	}
}

// CreateCandidate imports a profile and returns the new record id.
func (c *Client) CreateCandidate(ctx context.Context, p types.CandidateProfile, role types.RoleRequirement, status string) (string, error) {
	body, err := c.write(ctx, http.MethodPost, "/api/candidates", c.ImportPayload(p, role, status))
	if err != nil {
		return "", err
	}
	id := field(body, "data.id", "id").String()
	if id == "" {
		return "", errors.New("record store returned no candidate id")
	}
	return id, nil
}

// UpdateCandidate moves a candidate to a new status and attaches the scoring result.
func (c *Client) UpdateCandidate(ctx context.Context, id string, u Update) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("candidate id is required")
	}
	payload := map[string]any{
		"status": u.Status,
		"actor":  c.actor,
		"by":     c.actor,
	}
	if u.Result != nil {
		payload["ai_match_result"] = u.Result
	}
	_, err := c.write(ctx, http.MethodPatch, "/api/candidates/"+id, payload)
	return err
}
