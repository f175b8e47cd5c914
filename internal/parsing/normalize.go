package parsing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxAcronymRunes is the longest all-caps word kept as an acronym (SRE, HTTP).
const maxAcronymRunes = 4

// skillAliases maps lower-cased spellings seen in job posts and profiles onto one canonical name.
var skillAliases = map[string]string{
	"go": "Go", "golang": "Go", "go lang": "Go",
	"js": "JavaScript", "javascript": "JavaScript",
	"ts": "TypeScript", "typescript": "TypeScript",
	"k8s": "Kubernetes", "kubernetes": "Kubernetes",
	"reactjs": "React", "react.js": "React",
	"vuejs": "Vue", "vue.js": "Vue",
	"nodejs": "Node.js", "node.js": "Node.js", "node": "Node.js",
	"postgres": "PostgreSQL", "postgresql": "PostgreSQL",
	"py":  "Python",
	"aws": "AWS", "gcp": "GCP", "sql": "SQL",
	"tf":  "Terraform",
	"cpp": "C++", "c++": "C++",
	"csharp": "C#", "c#": "C#",
	"ml": "Machine Learning",
}

// NormalizeSkillName returns the canonical spelling of a skill. Known aliases
// map through skillAliases; single lower-case words and all-caps words longer
// than maxAcronymRunes are title-cased; everything else is only trimmed.
func NormalizeSkillName(skillName string) string {
	s := strings.TrimSpace(skillName)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}
	upper := strings.ToUpper(s)
	if lower == upper || strings.Contains(s, " ") {
		return s
	}
	if s == lower || (s == upper && utf8.RuneCountInString(s) > maxAcronymRunes) {
		first, size := utf8.DecodeRuneInString(lower)
		return string(unicode.ToUpper(first)) + lower[size:]
	}
	return s
}

// NormalizeSkills canonicalizes skills, dropping empties and case-insensitive
// duplicates. First-seen order is kept.
func NormalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return skills
	}
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, raw := range skills {
		name := NormalizeSkillName(raw)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
