// Package identity normalizes profile identity keys and de-duplicates profiles within a run.
package identity

import (
	"net/url"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// Key prefixes. A key is always "<kind>:<value>".
const (
	prefixGitHub   = "github:"
	prefixLinkedIn = "linkedin:"
	prefixURL      = "url:"
	prefixUser     = "user:"
)

// Normalize canonicalizes a profile URL: trimmed, https scheme, lower-case host
// without www or regional subdomains, no query or fragment, no trailing slash.
// Strings that are not URLs are trimmed and lower-cased. Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		first := strings.SplitN(s, "/", 2)[0]
		if !strings.Contains(first, ".") {
			return strings.ToLower(strings.Trim(s, "/"))
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
	}

	host := canonicalHost(u.Host)
	path := strings.TrimRight(u.Path, "/")
	if isLinkedIn(host) || isGitHub(host) {
		path = strings.ToLower(path)
	}
	escaped := (&url.URL{Path: path}).EscapedPath()
	return "https://" + host + escaped
}

func canonicalHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	if strings.HasSuffix(host, ".linkedin.com") {
		return "linkedin.com"
	}
	return host
}

func isLinkedIn(host string) bool { return host == "linkedin.com" }

func isGitHub(host string) bool { return host == "github.com" }

// reservedGitHubPaths are top-level github.com paths that are not user logins.
var reservedGitHubPaths = map[string]bool{
	"orgs": true, "search": true, "topics": true, "marketplace": true,
	"settings": true, "explore": true, "login": true, "about": true,
}

// LinkedInSlug returns the profile path segment of a professional-network URL ("/in/<slug>").
func LinkedInSlug(raw string) (string, bool) {
	n := Normalize(raw)
	u, err := url.Parse(n)
	if err != nil || !isLinkedIn(u.Host) {
		return "", false
	}
	segs := splitPath(u.Path)
	if len(segs) < 2 || (segs[0] != "in" && segs[0] != "pub") {
		return "", false
	}
	return segs[1], true
}

// GitHubLogin returns the login of a code-host profile URL.
func GitHubLogin(raw string) (string, bool) {
	n := Normalize(raw)
	u, err := url.Parse(n)
	if err != nil || !isGitHub(u.Host) {
		return "", false
	}
	segs := splitPath(u.Path)
	if len(segs) == 0 || reservedGitHubPaths[segs[0]] {
		return "", false
	}
	return segs[0], true
}

// ProfileURL returns the canonical professional-network profile URL for a slug.
func ProfileURL(slug string) string {
	return "https://linkedin.com/in/" + strings.ToLower(slug)
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// CanonicalKey converts a raw identity (URL, prefixed key or bare username) into a key.
// It is idempotent.
func CanonicalKey(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(lower, prefixGitHub), strings.HasPrefix(lower, prefixLinkedIn), strings.HasPrefix(lower, prefixUser):
		return lower
	case strings.HasPrefix(lower, prefixURL):
		return prefixURL + s[len(prefixURL):]
	}
	if slug, ok := LinkedInSlug(s); ok {
		return prefixLinkedIn + slug
	}
	if login, ok := GitHubLogin(s); ok {
		return prefixGitHub + login
	}
	n := Normalize(s)
	if strings.HasPrefix(n, "https://") {
		return prefixURL + n
	}
	return prefixUser + n
}

// Keys returns every usable identity key for a profile, most specific first.
func Keys(p types.CandidateProfile) []string {
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		for _, existing := range keys {
			if existing == k {
				return
			}
		}
		keys = append(keys, k)
	}

	for _, raw := range []string{p.LinkedInURL, p.ProfileURL, p.GitHubURL} {
		if strings.TrimSpace(raw) != "" {
			add(CanonicalKey(raw))
		}
	}
	if login := strings.TrimSpace(p.Username); login != "" {
		switch {
		case p.Source == types.SourceGitHub || p.GitHubURL != "":
			add(prefixGitHub + strings.ToLower(login))
		case !hasPrefixedKey(keys, prefixLinkedIn):
			// A linkedin key already identifies the profile; a bare user key
			// would only match unrelated usernames.
			add(prefixUser + strings.ToLower(login))
		}
	}
	return keys
}

func hasPrefixedKey(keys []string, prefix string) bool {
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Key returns the primary identity key for a profile.
func Key(p types.CandidateProfile) (string, bool) {
	keys := Keys(p)
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}
