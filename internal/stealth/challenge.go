package stealth

import "strings"

// challengeMarkers are lower-cased substrings that identify an anti-automation interstitial.
var challengeMarkers = []string{
	"g-recaptcha",
	"recaptcha/api",
	"h-captcha",
	"hcaptcha.com",
	"captcha-delivery",
	"cf-challenge",
	"cf-turnstile",
	"challenge-platform",
	"checking your browser",
	"attention required! | cloudflare",
	"unusual traffic",
	"our systems have detected",
	"/sorry/index",
	"verify you are human",
	"are you a robot",
	"please solve this puzzle",
	"anomaly-modal",
	"request blocked",
}

// ChallengeMarker returns the first challenge marker found in body, or "".
func ChallengeMarker(body string) string {
	lower := strings.ToLower(body)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return marker
		}
	}
	return ""
}
