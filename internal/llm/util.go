package llm

import (
	"regexp"
	"strings"
)

var (
	headingLine   = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	emphasisMarks = regexp.MustCompile(`\*\*|__`)
	conclusionTag = regexp.MustCompile(`^(結語|評估結語|AI 評估結語|Conclusion)\s*[:：]\s*`)
)

// CleanNarration strips markdown wrappers and labels models add even when asked for plain text.
func CleanNarration(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	text = headingLine.ReplaceAllString(text, "")
	text = emphasisMarks.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = conclusionTag.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// truncateRunes shortens s to n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
