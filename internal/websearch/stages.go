package websearch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jonathan/talent-sourcing/internal/fetch"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"go.uber.org/zap"
)

// MinUniqueResults is the number of results below which an HTML stage asks the chain to continue.
const MinUniqueResults = 3

// Stage names.
const (
	StageGoogleBrowser = "google_browser"
	StageBing          = "bing_html"
	StageDuckDuckGo    = "duckduckgo_html"
	StageBrave         = "brave_api"
	StageGoogleCSE     = "google_cse"
)

// Renderer renders a page in a browser.
type Renderer interface {
	Render(ctx context.Context, url string) (*fetch.Page, error)
}

// BrowserStage searches Google through a rendered browser session.
type BrowserStage struct {
	renderer Renderer
	pages    int
	policy   *stealth.Policy
	logger   *zap.Logger
}

// NewBrowserStage creates the rendered-browser stage.
func NewBrowserStage(renderer Renderer, pages int, policy *stealth.Policy, logger *zap.Logger) *BrowserStage {
	if policy == nil {
		policy = stealth.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserStage{renderer: renderer, pages: clampPages(pages), policy: policy, logger: logger}
}

func (s *BrowserStage) Name() string { return StageGoogleBrowser }

// GoogleURL builds a results-page URL. page is zero-based.
func GoogleURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("hl", "zh-TW")
	v.Set("num", "10")
	if page > 0 {
		v.Set("start", fmt.Sprint(page*10))
	}
	return "https://www.google.com/search?" + v.Encode()
}

// Attempt renders each results page; a challenge stops the stage but keeps what was found.
// The browser stage always lets the chain continue.
func (s *BrowserStage) Attempt(ctx context.Context, query string, _ int) ([]Result, bool) {
	var results []Result
	for page := 0; page < s.pages; page++ {
		if page > 0 {
			if err := s.policy.Sleep(ctx, stealth.DelayPage); err != nil {
				break
			}
		}
		p, err := s.renderer.Render(ctx, GoogleURL(query, page))
		if err != nil {
			s.logger.Warn("browser search failed", zap.Int("page", page+1), zap.Error(err))
			break
		}
		if p.Challenge != "" {
			s.logger.Warn("browser search challenged", zap.Int("page", page+1), zap.String("marker", p.Challenge))
			break
		}
		found := Extract(p.HTML)
		results = append(results, found...)
		if len(found) == 0 {
			break
		}
	}
	return results, true
}

// Getter fetches a page over HTTP.
type Getter interface {
	Get(ctx context.Context, urlStr string) (*fetch.Result, error)
}

// HTMLStage searches an engine's plain-HTML endpoint.
type HTMLStage struct {
	name   string
	urlFor func(query string, page int) string
	getter Getter
	pages  int
	policy *stealth.Policy
	logger *zap.Logger
}

// BingURL builds a Bing results-page URL. page is zero-based.
func BingURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("setlang", "zh-Hant")
	if page > 0 {
		v.Set("first", fmt.Sprint(page*10+1))
	}
	return "https://www.bing.com/search?" + v.Encode()
}

// DuckDuckGoURL builds a DuckDuckGo HTML results URL. page is zero-based.
func DuckDuckGoURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("kl", "tw-tzh")
	if page > 0 {
		v.Set("s", fmt.Sprint(page*30))
	}
	return "https://html.duckduckgo.com/html/?" + v.Encode()
}

// NewHTMLStage creates an HTML stage with a custom URL builder.
func NewHTMLStage(name string, urlFor func(string, int) string, getter Getter, pages int, policy *stealth.Policy, logger *zap.Logger) *HTMLStage {
	if policy == nil {
		policy = stealth.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLStage{name: name, urlFor: urlFor, getter: getter, pages: clampPages(pages), policy: policy, logger: logger}
}

// NewBingStage creates the primary HTML stage.
func NewBingStage(getter Getter, pages int, policy *stealth.Policy, logger *zap.Logger) *HTMLStage {
	return NewHTMLStage(StageBing, BingURL, getter, pages, policy, logger)
}

// NewDuckDuckGoStage creates the secondary HTML stage.
func NewDuckDuckGoStage(getter Getter, pages int, policy *stealth.Policy, logger *zap.Logger) *HTMLStage {
	return NewHTMLStage(StageDuckDuckGo, DuckDuckGoURL, getter, pages, policy, logger)
}

func (s *HTMLStage) Name() string { return s.name }

// Attempt fetches each results page. It asks the chain to continue when a
// challenge was seen or fewer than MinUniqueResults unique results were found.
func (s *HTMLStage) Attempt(ctx context.Context, query string, _ int) ([]Result, bool) {
	var results []Result
	challenged := false
	seen := make(map[string]bool)

	for page := 0; page < s.pages; page++ {
		if page > 0 {
			if err := s.policy.Sleep(ctx, stealth.DelayPage); err != nil {
				break
			}
		}
		res, err := s.getter.Get(ctx, s.urlFor(query, page))
		if res != nil && res.Challenge != "" {
			s.logger.Warn("search challenged", zap.String("stage", s.name), zap.Int("page", page+1), zap.String("marker", res.Challenge))
			challenged = true
			break
		}
		if err != nil {
			s.logger.Warn("search page failed", zap.String("stage", s.name), zap.Int("page", page+1), zap.Error(err))
			break
		}

		found := Extract(res.HTML)
		for _, r := range found {
			if !seen[r.URL] {
				seen[r.URL] = true
				results = append(results, r)
			}
		}
		if len(found) == 0 {
			break
		}
	}

	return results, challenged || len(results) < MinUniqueResults
}

func clampPages(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 3:
		return 3
	default:
		return n
	}
}
