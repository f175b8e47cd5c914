package websearch

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/talent-sourcing/internal/identity"
	"github.com/jonathan/talent-sourcing/internal/types"
)

// Result is one professional-network profile found on a results page.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Name     string `json:"name,omitempty"`
	Headline string `json:"headline,omitempty"`
	Company  string `json:"company,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
	Stage    string `json:"stage,omitempty"`
}

// citationPattern matches the breadcrumb form engines print under a result,
// e.g. "tw.linkedin.com › in › jane-chen".
var citationPattern = regexp.MustCompile(`(?i)(?:[a-z]{2,3}\.|www\.)?linkedin\.com\s*(?:›|>|/)\s*in\s*(?:›|>|/)\s*([\p{L}\p{N}\-_%.]+)`)

// Extract pulls profile results from a search-results page. It understands
// direct anchors, redirect wrappers (/url?q=, uddg=, Bing /ck/a?u=a1...) and
// plain-text citations. Results are canonicalized and de-duplicated in page order.
func Extract(html string) []Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []Result
	seen := make(map[string]bool)
	add := func(r Result) {
		if seen[r.URL] {
			return
		}
		seen[r.URL] = true
		out = append(out, r)
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		slug, ok := identity.LinkedInSlug(unwrapRedirect(href))
		if !ok {
			return
		}
		title := anchorTitle(a)
		r := Result{URL: identity.ProfileURL(slug), Title: title, Snippet: resultSnippet(a)}
		r.Name, r.Headline, r.Company = ParseTitle(title)
		add(r)
	})

	doc.Find("script, style").Remove()
	var text strings.Builder
	visibleText(&text, doc.Selection)
	for _, m := range citationPattern.FindAllStringSubmatch(text.String(), -1) {
		slug := strings.TrimRight(m[1], ".")
		if slug == "" {
			continue
		}
		if decoded, err := url.PathUnescape(slug); err == nil {
			slug = decoded
		}
		add(Result{URL: identity.ProfileURL(slug)})
	}

	return out
}

// inlineTags do not break a run of text; engines wrap breadcrumb parts and
// highlighted query terms in them.
var inlineTags = map[string]bool{
	"a": true, "b": true, "strong": true, "em": true, "i": true, "u": true, "span": true, "mark": true,
}

// visibleText writes the text of sel, putting a line break around every
// non-inline element so adjacent blocks never run together.
func visibleText(sb *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); {
		case name == "#text":
			sb.WriteString(c.Text())
		case inlineTags[name]:
			visibleText(sb, c)
		default:
			sb.WriteByte('\n')
			visibleText(sb, c)
			sb.WriteByte('\n')
		}
	})
}

// unwrapRedirect returns the destination of a search-engine redirect link,
// or href unchanged.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()

	switch {
	case strings.HasPrefix(u.Path, "/url"):
		if v := q.Get("q"); v != "" {
			return v
		}
		if v := q.Get("url"); v != "" {
			return v
		}
	case q.Get("uddg") != "":
		return q.Get("uddg")
	case strings.HasPrefix(u.Path, "/ck/a"):
		if v := decodeBingTarget(q.Get("u")); v != "" {
			return v
		}
	}
	return href
}

// decodeBingTarget decodes Bing's "a1" + base64url wrapped destination.
func decodeBingTarget(u string) string {
	if !strings.HasPrefix(u, "a1") {
		return ""
	}
	payload := strings.TrimRight(u[2:], "=")
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		if b, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return ""
		}
	}
	return string(b)
}

func anchorTitle(a *goquery.Selection) string {
	if h := a.Find("h3"); h.Length() > 0 {
		return strings.TrimSpace(h.First().Text())
	}
	if h := a.Closest("h2, h3"); h.Length() > 0 {
		return strings.TrimSpace(h.Text())
	}
	return strings.TrimSpace(a.Text())
}

func resultSnippet(a *goquery.Selection) string {
	container := a.Closest("li, div.g, div.result, .b_algo")
	if container.Length() == 0 {
		return ""
	}
	for _, sel := range []string{".b_caption p", ".result__snippet", ".VwiC3b", "p"} {
		if s := container.Find(sel); s.Length() > 0 {
			return strings.Join(strings.Fields(s.First().Text()), " ")
		}
	}
	return ""
}

// ParseTitle splits a result title of the form "Name - Headline - Company | LinkedIn".
func ParseTitle(title string) (name, headline, company string) {
	t := strings.TrimSpace(title)
	if i := strings.LastIndex(t, "|"); i >= 0 && strings.Contains(strings.ToLower(t[i:]), "linkedin") {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, "...")
	t = strings.ReplaceAll(t, " – ", " - ")
	t = strings.ReplaceAll(t, " — ", " - ")

	parts := strings.Split(t, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], " - "), parts[len(parts)-1]
	}
}

// maxSnippetNotes caps the snippet text carried into profile notes.
const maxSnippetNotes = 200

// Profile converts the result into a candidate stub. The snippet is kept as
// notes so keyword signals such as "open to work" can be scored.
func (r Result) Profile() types.CandidateProfile {
	p := types.CandidateProfile{
		ProfileURL:  r.URL,
		LinkedInURL: r.URL,
		Name:        r.Name,
		Headline:    r.Headline,
		Company:     r.Company,
		Source:      types.SourceLinkedIn,
	}
	if slug, ok := identity.LinkedInSlug(r.URL); ok {
		p.Username = slug
	}
	if snippet := []rune(strings.TrimSpace(r.Snippet)); len(snippet) > 0 {
		if len(snippet) > maxSnippetNotes {
			snippet = snippet[:maxSnippetNotes]
		}
		p.Notes = string(snippet)
	}
	return p
}
