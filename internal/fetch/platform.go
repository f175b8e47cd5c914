package fetch

import (
	"net/url"
	"strings"
)

// Platform is a site the sourcing pipeline knows how to read.
type Platform string

const (
	PlatformLinkedIn   Platform = "linkedin"
	PlatformGitHub     Platform = "github"
	PlatformGoogle     Platform = "google"
	PlatformBing       Platform = "bing"
	PlatformDuckDuckGo Platform = "duckduckgo"
	PlatformUnknown    Platform = "unknown"
)

// DetectPlatform identifies the site from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return PlatformLinkedIn
	case host == "github.com" || strings.HasSuffix(host, ".github.com"):
		return PlatformGitHub
	case strings.HasPrefix(host, "google.") || strings.Contains(host, ".google."):
		return PlatformGoogle
	case host == "bing.com" || strings.HasSuffix(host, ".bing.com"):
		return PlatformBing
	case strings.Contains(host, "duckduckgo.com"):
		return PlatformDuckDuckGo
	default:
		return PlatformUnknown
	}
}

// PlatformContentSelectors returns content selectors for profile pages on a platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformLinkedIn:
		return []string{
			"main.scaffold-layout__main",
			".pv-top-card",
			"section.top-card-layout",
			"main",
		}
	case PlatformGitHub:
		return []string{
			"[itemtype='http://schema.org/Person']",
			".js-profile-editable-area",
			"main",
		}
	default:
		return DefaultTextSelectors()
	}
}

// PlatformNoiseSelectors returns exclusion selectors for a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		".cookie-consent",
		".gdpr-notice",
		".social-share",
	}

	switch platform {
	case PlatformLinkedIn:
		return append(common,
			".msg-overlay-list-bubble",
			".global-nav",
			"aside.scaffold-layout__aside",
			".authwall-join-form",
		)
	case PlatformGitHub:
		return append(common,
			".js-yearly-contributions",
			".js-pinned-items-reorder-container",
			"footer",
		)
	default:
		return common
	}
}

// loginWallMarkers identify the sign-in interstitial a platform shows anonymous visitors.
var loginWallMarkers = map[Platform][]string{
	PlatformLinkedIn: {"/authwall", "/uas/login", "/checkpoint/", "join linkedin", "sign in to view", "authwall"},
}

// LoginWall reports whether a page (by final URL or body) is a sign-in wall.
func LoginWall(platform Platform, finalURL, html string) bool {
	markers := loginWallMarkers[platform]
	if len(markers) == 0 {
		return false
	}
	u := strings.ToLower(finalURL)
	body := strings.ToLower(html)
	for _, m := range markers {
		if strings.HasPrefix(m, "/") {
			if strings.Contains(u, m) {
				return true
			}
			continue
		}
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}
