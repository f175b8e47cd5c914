package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://www.linkedin.com/in/jane", PlatformLinkedIn},
		{"https://tw.linkedin.com/in/jane", PlatformLinkedIn},
		{"https://github.com/octocat", PlatformGitHub},
		{"https://api.github.com/users/octocat", PlatformGitHub},
		{"https://www.google.com/search?q=go", PlatformGoogle},
		{"https://www.google.com.tw/search?q=go", PlatformGoogle},
		{"https://www.bing.com/search?q=go", PlatformBing},
		{"https://html.duckduckgo.com/html/?q=go", PlatformDuckDuckGo},
		{"https://notlinkedin.com/in/jane", PlatformUnknown},
		{"https://example.com", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectPlatform(tt.url), tt.url)
	}
}

func TestPlatformSelectors(t *testing.T) {
	assert.Contains(t, PlatformContentSelectors(PlatformLinkedIn), ".pv-top-card")
	assert.Contains(t, PlatformContentSelectors(PlatformGitHub), ".js-profile-editable-area")
	assert.Equal(t, DefaultTextSelectors(), PlatformContentSelectors(PlatformUnknown))

	assert.Contains(t, PlatformNoiseSelectors(PlatformLinkedIn), ".global-nav")
	assert.Contains(t, PlatformNoiseSelectors(PlatformUnknown), ".cookie-consent")
}

func TestLoginWall(t *testing.T) {
	assert.True(t, LoginWall(PlatformLinkedIn, "https://www.linkedin.com/authwall?trk=x", "<html></html>"))
	assert.True(t, LoginWall(PlatformLinkedIn, "https://www.linkedin.com/in/jane", "<h1>Sign in to view Jane's full profile</h1>"))
	assert.False(t, LoginWall(PlatformLinkedIn, "https://www.linkedin.com/in/jane", "<h1>Jane Chen</h1>"))
	assert.False(t, LoginWall(PlatformGitHub, "https://github.com/login", "Sign in to GitHub"))
}
