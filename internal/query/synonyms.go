// Package query builds engine-specific search queries from a role's skill list.
package query

import "strings"

// synonymGroups are closed equivalence classes: every member expands to the whole group.
var synonymGroups = [][]string{
	{"Go", "Golang"},
	{"Kubernetes", "K8s"},
	{"JavaScript", "JS"},
	{"TypeScript", "TS"},
	{"React", "ReactJS", "React.js"},
	{"Vue", "Vue.js", "VueJS"},
	{"Node.js", "NodeJS"},
	{"PostgreSQL", "Postgres"},
	{"AWS", "Amazon Web Services"},
	{"GCP", "Google Cloud"},
	{"C++", "CPP"},
	{"C#", "CSharp"},
	{"Machine Learning", "ML"},
	{"Spring Boot", "Spring"},
	{"Backend", "後端"},
	{"Frontend", "前端"},
	{"DevOps", "SRE"},
}

var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string][]string {
	idx := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, term := range group {
			idx[strings.ToLower(term)] = group
		}
	}
	return idx
}

// ExpandSynonyms returns the skill followed by its known synonyms.
// The result always contains the original term (trimmed) first.
func ExpandSynonyms(skill string) []string {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil
	}
	out := []string{skill}
	group, ok := synonymIndex[strings.ToLower(skill)]
	if !ok {
		return out
	}
	seen := map[string]bool{strings.ToLower(skill): true}
	for _, term := range group {
		key := strings.ToLower(term)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, term)
	}
	return out
}

// ExpandAll expands every skill and returns the de-duplicated union in first-seen order.
// ExpandAll(ExpandAll(x)) equals ExpandAll(x).
func ExpandAll(skills []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, skill := range skills {
		for _, term := range ExpandSynonyms(skill) {
			key := strings.ToLower(term)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, term)
		}
	}
	return out
}
