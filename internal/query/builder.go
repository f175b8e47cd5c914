package query

import (
	"strings"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// ProfileSite restricts web queries to professional-network profile pages.
const ProfileSite = "site:linkedin.com/in"

// Queries holds one query per target engine.
type Queries struct {
	// Web is the general web-search query (supports AND/OR grouping).
	Web string
	// CodeHost holds AND-only user-search queries.
	CodeHost []string
}

// locationVariants widens a country-level location with its principal cities.
var locationVariants = map[string][]string{
	"taiwan":    {"Taiwan", "Taipei"},
	"台灣":        {"Taiwan", "Taipei"},
	"臺灣":        {"Taiwan", "Taipei"},
	"台北":        {"Taipei"},
	"japan":     {"Japan", "Tokyo"},
	"singapore": {"Singapore"},
	"hong kong": {"Hong Kong"},
	"korea":     {"Korea", "Seoul"},
	"china":     {"China", "Shanghai", "Beijing"},
}

// LocationVariants returns the location followed by any wider-coverage substitutes.
func LocationVariants(location string) []string {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}
	variants, ok := locationVariants[strings.ToLower(location)]
	if !ok {
		return []string{location}
	}
	out := []string{}
	seen := map[string]bool{}
	for _, v := range variants {
		if !seen[strings.ToLower(v)] {
			seen[strings.ToLower(v)] = true
			out = append(out, v)
		}
	}
	return out
}

// Build produces the web and code-host queries for a skill list and location.
// The first two skills are primary; the rest are secondary.
func Build(skills []string, location string) Queries {
	var cleaned []string
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return Queries{
		Web:      buildWeb(cleaned, location),
		CodeHost: buildCodeHost(cleaned, location),
	}
}

// ForRole is Build over a role's required skills and location.
func ForRole(role types.RoleRequirement) Queries {
	return Build(role.RequiredSkills, role.Location)
}

func buildWeb(skills []string, location string) string {
	parts := []string{ProfileSite}

	primary, secondary := split(skills)
	var andTerms []string
	for _, skill := range primary {
		andTerms = append(andTerms, orGroup(ExpandSynonyms(skill)))
	}
	if len(andTerms) > 0 {
		parts = append(parts, strings.Join(andTerms, " AND "))
	}
	if len(secondary) > 0 {
		parts = append(parts, orGroup(ExpandAll(secondary)))
	}
	if loc := strings.TrimSpace(location); loc != "" {
		parts = append(parts, quote(loc))
	}
	return strings.Join(parts, " ")
}

func buildCodeHost(skills []string, location string) []string {
	var termSets [][]string
	primary, secondary := split(skills)
	switch len(primary) {
	case 0:
		termSets = append(termSets, nil)
	case 1:
		termSets = append(termSets, []string{primary[0]})
	default:
		termSets = append(termSets, []string{primary[0], primary[1]})
	}
	for _, s := range secondary {
		termSets = append(termSets, []string{primary[0], s})
	}

	locations := LocationVariants(location)
	if len(locations) == 0 {
		locations = []string{""}
	}

	var out []string
	seen := make(map[string]bool)
	for _, terms := range termSets {
		for _, loc := range locations {
			q := codeHostQuery(terms, loc)
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		out = append(out, "type:user")
	}
	return out
}

func codeHostQuery(terms []string, location string) string {
	var parts []string
	for _, t := range terms {
		parts = append(parts, quoteIfSpaced(t))
	}
	if location != "" {
		parts = append(parts, "location:"+quoteIfSpaced(location))
	}
	return strings.Join(parts, " ")
}

func split(skills []string) (primary, secondary []string) {
	r := types.RoleRequirement{RequiredSkills: skills}
	return r.Primary(), r.Secondary()
}

func orGroup(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = quote(t)
	}
	if len(quoted) == 1 {
		return quoted[0]
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

func quoteIfSpaced(s string) string {
	if strings.ContainsAny(s, " \t") {
		return quote(s)
	}
	return s
}
