package profilereader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/talent-sourcing/internal/identity"
	"github.com/jonathan/talent-sourcing/internal/types"
)

// Notes written onto enriched profiles. The open-to-work phrasing is picked up by the scoring engine.
const (
	NoteOpenToWork     = "Open to Work"
	NoteRecentlyActive = "GitHub recently active"
	NoteFollowers      = "GitHub %d followers"
)

const (
	// activeDaysThreshold is the number of contribution days above which a GitHub user counts as active.
	activeDaysThreshold = 15
	// followerNoteThreshold is the follower count above which the count is noted.
	followerNoteThreshold = 100
	maxPinnedRepos        = 6
	maxSummaryRunes       = 1000
	maxNameRunes          = 80
	maxLocationRunes      = 60
)

var (
	githubOpenToWork   = []string{"open to work", "opentowork", "seeking", "looking for", "求職", "尋找機會", "available for", "job hunting"}
	linkedinOpenToWork = []string{"#opentowork", "open to work", "seeking", "looking for", "求職", "積極尋找", "開放工作機會"}

	contributionCount = regexp.MustCompile(`data-count="([1-9]\d*)"`)
)

// GitHubPage is what a public GitHub profile page exposes.
type GitHubPage struct {
	Name       string
	Login      string
	Bio        string
	Company    string
	Location   string
	Followers  int
	Languages  []string
	Pinned     []PinnedRepo
	Readme     string
	ActiveDays int
}

// PinnedRepo is one pinned repository card.
type PinnedRepo struct {
	Name        string
	Description string
	Language    string
}

// LinkedInPage is what a public LinkedIn profile page exposes to anonymous visitors.
type LinkedInPage struct {
	Name            string
	Headline        string
	Location        string
	Summary         string
	CurrentPosition string
	CurrentCompany  string
}

// firstText returns the trimmed text of the first selector that matches with acceptable text.
func firstText(doc *goquery.Document, selectors []string, maxRunes int) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text == "" {
			continue
		}
		if maxRunes > 0 && len([]rune(text)) >= maxRunes {
			continue
		}
		return text
	}
	return ""
}

// ParseGitHub reads a GitHub profile page.
func ParseGitHub(html string) (GitHubPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return GitHubPage{}, fmt.Errorf("failed to parse GitHub page: %w", err)
	}

	page := GitHubPage{
		Name:     firstText(doc, []string{`[itemprop="name"]`, ".p-name"}, 0),
		Login:    firstText(doc, []string{`[itemprop="additionalName"]`, ".p-nickname"}, 0),
		Bio:      firstText(doc, []string{"[data-bio-text]", ".p-note"}, 0),
		Company:  strings.TrimPrefix(firstText(doc, []string{`[itemprop="worksFor"]`, ".p-org"}, 0), "@"),
		Location: firstText(doc, []string{`[itemprop="homeLocation"]`, ".p-label"}, 0),
	}
	page.Followers = parseCount(doc.Find(`a[href$="?tab=followers"] .text-bold`).First().Text())

	langs := make(map[string]bool)
	doc.Find(".pinned-item-list-item").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= maxPinnedRepos {
			return false
		}
		name := strings.TrimSpace(item.Find(".repo").First().Text())
		if name == "" {
			return true
		}
		repo := PinnedRepo{
			Name:        name,
			Description: strings.TrimSpace(item.Find("p.pinned-item-desc").First().Text()),
			Language:    strings.TrimSpace(item.Find(`[itemprop="programmingLanguage"]`).First().Text()),
		}
		page.Pinned = append(page.Pinned, repo)
		if repo.Language != "" && !langs[repo.Language] {
			langs[repo.Language] = true
			page.Languages = append(page.Languages, repo.Language)
		}
		return true
	})

	page.Readme = truncateRunes(strings.TrimSpace(doc.Find(".markdown-body").First().Text()), 3000)

	if svg, err := doc.Find(".js-calendar-graph-svg, .js-calendar-graph").First().Html(); err == nil {
		page.ActiveDays = len(contributionCount.FindAllString(svg, -1))
	}
	return page, nil
}

// ParseLinkedIn reads the public top card of a LinkedIn profile.
func ParseLinkedIn(html string) (LinkedInPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return LinkedInPage{}, fmt.Errorf("failed to parse LinkedIn page: %w", err)
	}

	page := LinkedInPage{
		Name: firstText(doc, []string{
			"h1.top-card-layout__title", `h1[class*="name"]`, ".top-card__title", "h1",
		}, maxNameRunes),
		Headline: firstText(doc, []string{
			".top-card-layout__headline", ".top-card-layout__second-subline", `[class*="headline"]`,
		}, 0),
		Location: firstText(doc, []string{
			".top-card__subline-item", `[class*="location"]`, ".profile-info-subheader .not-first-middot",
		}, maxLocationRunes),
		Summary: truncateRunes(firstText(doc, []string{
			".core-section-container__content .show-more-less-html__markup", ".about-section p", `[class*="about"] p`, ".summary",
		}, 0), maxSummaryRunes),
	}

	for _, pair := range [][2]string{
		{".experience-item h3", ".experience-item h4"},
		{".experience__list-item h3", ".experience__list-item h4"},
	} {
		pos := doc.Find(pair[0]).First()
		if pos.Length() == 0 {
			continue
		}
		page.CurrentPosition = strings.TrimSpace(pos.Text())
		page.CurrentCompany = strings.TrimSpace(doc.Find(pair[1]).First().Text())
		break
	}
	return page, nil
}

// Read reports whether anything identifying was found.
func (p LinkedInPage) Read() bool {
	return p.Name != "" || p.Headline != ""
}

// Profile converts the page into a partial candidate profile.
func (p GitHubPage) Profile(url string) types.CandidateProfile {
	out := types.CandidateProfile{
		GitHubURL: identity.Normalize(url),
		Name:      p.Name,
		Headline:  p.Bio,
		Company:   p.Company,
		Location:  p.Location,
		Followers: p.Followers,
		Skills:    append([]string(nil), p.Languages...),
	}
	if login, ok := identity.GitHubLogin(url); ok {
		out.Username = login
	}
	if p.Company != "" {
		out.Employers = []string{p.Company}
	}

	var notes []string
	if p.ActiveDays > activeDaysThreshold {
		notes = append(notes, NoteRecentlyActive)
	}
	if p.Followers > followerNoteThreshold {
		notes = append(notes, fmt.Sprintf(NoteFollowers, p.Followers))
	}
	if mentionsAny(p.Bio+" "+p.Readme, githubOpenToWork) {
		notes = append(notes, NoteOpenToWork)
	}
	out.Notes = strings.Join(notes, " | ")
	return out
}

// PinnedSummary describes up to three pinned repositories that have descriptions.
func (p GitHubPage) PinnedSummary() string {
	var parts []string
	for _, r := range p.Pinned {
		if len(parts) == 3 {
			break
		}
		if r.Description == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", r.Name, truncateRunes(r.Description, 40)))
	}
	return strings.Join(parts, "; ")
}

// Profile converts the page into a partial candidate profile.
func (p LinkedInPage) Profile(url string) types.CandidateProfile {
	out := types.CandidateProfile{
		LinkedInURL: identity.Normalize(url),
		Name:        p.Name,
		Headline:    p.Headline,
		Company:     p.CurrentCompany,
		Location:    p.Location,
	}
	if p.CurrentCompany != "" {
		out.Employers = []string{p.CurrentCompany}
	}
	if mentionsAny(p.Summary+" "+p.Headline, linkedinOpenToWork) {
		out.Notes = NoteOpenToWork
	}
	return out
}

func mentionsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// parseCount reads GitHub's abbreviated counters ("1,204", "2.3k").
func parseCount(s string) int {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if s == "" {
		return 0
	}
	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = strings.TrimSuffix(s, "k")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(v * mult))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// mergeSkills appends extra skills not already present (case-insensitive), keeping at most limit.
func mergeSkills(base, extra []string, limit int) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, s := range append(append([]string(nil), base...), extra...) {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(s))
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// joinNotes appends note fragments not already present.
func joinNotes(existing string, extra ...string) string {
	parts := []string{}
	if strings.TrimSpace(existing) != "" {
		parts = append(parts, strings.TrimSpace(existing))
	}
	for _, e := range extra {
		for _, frag := range strings.Split(e, " | ") {
			frag = strings.TrimSpace(frag)
			if frag == "" || strings.Contains(strings.Join(parts, " | "), frag) {
				continue
			}
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, " | ")
}
