package types

import "strings"

// Source identifies the acquisition path that produced a profile.
type Source string

const (
	SourceGitHub       Source = "github"
	SourceLinkedIn     Source = "linkedin"
	SourceWebSearch    Source = "web_search"
	SourceReferral     Source = "referral"
	SourceInbound      Source = "inbound"
	SourceJobBoard     Source = "job_board"
	SourceColdOutreach Source = "cold_outreach"
)

// CandidateProfile is the union of fields collected about one person from a
// code-hosting platform, a web search result, or the record store.
// Zero values mean "unknown", never "negative".
type CandidateProfile struct {
	// Identity
	ProfileURL  string `json:"profile_url,omitempty"`
	Username    string `json:"username,omitempty"`
	GitHubURL   string `json:"github_url,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	Name     string   `json:"name,omitempty"`
	Headline string   `json:"headline,omitempty"`
	Company  string   `json:"company,omitempty"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills,omitempty"`

	// Activity signals (code host)
	Followers   int `json:"followers,omitempty"`
	PublicRepos int `json:"public_repos,omitempty"`

	// Contact channels
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	Notes      string `json:"notes,omitempty"`
	QuitReason string `json:"quit_reason,omitempty"`
	Source     Source `json:"source,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`

	// Employment history
	YearsExperience    int      `json:"years_experience,omitempty"`
	JobChanges         int      `json:"job_changes,omitempty"`
	AvgTenureMonths    int      `json:"avg_tenure_months,omitempty"`
	RecentTenureMonths int      `json:"recent_tenure_months,omitempty"`
	RecentGapMonths    int      `json:"recent_gap_months,omitempty"`
	Employers          []string `json:"employers,omitempty"`

	// RecordID is the record store identifier, empty until the profile has been created there.
	RecordID string `json:"record_id,omitempty"`
	// NeedsIdentityReview marks profiles without a usable identity key.
	NeedsIdentityReview bool `json:"needs_identity_review,omitempty"`
}

// Eligible reports whether the profile carries at least one identity key or a source tag.
func (p CandidateProfile) Eligible() bool {
	return p.ProfileURL != "" || p.Username != "" || p.GitHubURL != "" ||
		p.LinkedInURL != "" || p.Source != ""
}

// DisplayName returns the best available human-readable name.
func (p CandidateProfile) DisplayName() string {
	switch {
	case strings.TrimSpace(p.Name) != "":
		return strings.TrimSpace(p.Name)
	case p.Username != "":
		return p.Username
	default:
		return "unknown"
	}
}

// WithEnrichment returns a new profile where every empty field of p is
// filled from other. Fields already set on p win. Neither input is modified.
func (p CandidateProfile) WithEnrichment(other CandidateProfile) CandidateProfile {
	merged := p
	merged.Skills = cloneStrings(p.Skills)
	merged.Employers = cloneStrings(p.Employers)

	fillString(&merged.ProfileURL, other.ProfileURL)
	fillString(&merged.Username, other.Username)
	fillString(&merged.GitHubURL, other.GitHubURL)
	fillString(&merged.LinkedInURL, other.LinkedInURL)
	fillString(&merged.Name, other.Name)
	fillString(&merged.Headline, other.Headline)
	fillString(&merged.Company, other.Company)
	fillString(&merged.Location, other.Location)
	fillString(&merged.Email, other.Email)
	fillString(&merged.Phone, other.Phone)
	fillString(&merged.Notes, other.Notes)
	fillString(&merged.QuitReason, other.QuitReason)
	fillString(&merged.UpdatedAt, other.UpdatedAt)
	fillString(&merged.RecordID, other.RecordID)
	if merged.Source == "" {
		merged.Source = other.Source
	}

	fillInt(&merged.Followers, other.Followers)
	fillInt(&merged.PublicRepos, other.PublicRepos)
	fillInt(&merged.YearsExperience, other.YearsExperience)
	fillInt(&merged.JobChanges, other.JobChanges)
	fillInt(&merged.AvgTenureMonths, other.AvgTenureMonths)
	fillInt(&merged.RecentTenureMonths, other.RecentTenureMonths)
	fillInt(&merged.RecentGapMonths, other.RecentGapMonths)

	if len(merged.Skills) == 0 {
		merged.Skills = cloneStrings(other.Skills)
	}
	if len(merged.Employers) == 0 {
		merged.Employers = cloneStrings(other.Employers)
	}
	return merged
}

func fillString(dst *string, src string) {
	if strings.TrimSpace(*dst) == "" && strings.TrimSpace(src) != "" {
		*dst = strings.TrimSpace(src)
	}
}

func fillInt(dst *int, src int) {
	if *dst == 0 {
		*dst = src
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
