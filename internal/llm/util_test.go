package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanNarration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "  此候選人值得聯繫。 ",
			expected: "此候選人值得聯繫。",
		},
		{
			name:     "fenced block",
			input:    "```text\n此候選人值得聯繫。\n```",
			expected: "此候選人值得聯繫。",
		},
		{
			name:     "heading and bold",
			input:    "## 評估\n**此候選人**值得聯繫。",
			expected: "評估\n此候選人值得聯繫。",
		},
		{
			name:     "conclusion label",
			input:    "結語：此候選人值得聯繫。",
			expected: "此候選人值得聯繫。",
		},
		{
			name:     "english label",
			input:    "Conclusion: worth a call.",
			expected: "worth a call.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanNarration(tt.input))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "台北", truncateRunes("台北市", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
}
