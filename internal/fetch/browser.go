package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"go.uber.org/zap"
)

// BrowserOptions configures a BrowserSession.
type BrowserOptions struct {
	// Timeout bounds a single navigation.
	Timeout time.Duration
	// Settle is how long to wait after the body is ready for client-side rendering.
	Settle time.Duration
	// Headless runs Chrome without a window.
	Headless bool
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// DefaultBrowserOptions returns headless defaults.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Timeout:  45 * time.Second,
		Settle:   2 * time.Second,
		Headless: true,
	}
}

// Page is a rendered browser page.
type Page struct {
	URL       string
	FinalURL  string
	HTML      string
	Challenge string
}

// BrowserSession renders pages in one Chrome process. The tab context is
// discarded and recreated with a fresh identity every policy.RotateEvery
// navigations. Requires Chrome/Chromium to be installed on the system.
type BrowserSession struct {
	policy *stealth.Policy
	opts   BrowserOptions
	logger *zap.Logger

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	navigations int
	rotations   int
}

// NewBrowserSession creates a session. Chrome is not started until the first Render.
func NewBrowserSession(policy *stealth.Policy, opts BrowserOptions, logger *zap.Logger) *BrowserSession {
	if policy == nil {
		policy = stealth.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBrowserOptions().Timeout
	}
	return &BrowserSession{policy: policy, opts: opts, logger: logger}
}

// needsRotation reports whether the tab must be recycled before the next navigation.
func needsRotation(navigations, every int) bool {
	return every > 0 && navigations > 0 && navigations%every == 0
}

func (s *BrowserSession) ensureAllocator() {
	if s.allocCtx != nil {
		return
	}
	vp := s.policy.Viewport()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", s.policy.Locale()),
		chromedp.WindowSize(vp.Width, vp.Height),
	)
	if s.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.opts.ExecPath))
	}
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// closeTab cancels the current tab, if any, so the next Render opens a new one.
func (s *BrowserSession) closeTab() {
	if s.tabCancel != nil {
		s.tabCancel()
	}
	s.tabCtx, s.tabCancel = nil, nil
}

// newTab opens a fresh tab with a new identity and the anti-detection script installed.
func (s *BrowserSession) newTab() error {
	s.closeTab()
	s.tabCtx, s.tabCancel = chromedp.NewContext(s.allocCtx)

	ua := s.policy.UserAgent()
	vp := s.policy.Viewport()
	err := chromedp.Run(s.tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.Script).Do(ctx)
			return err
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(ua).
				WithAcceptLanguage(s.policy.AcceptLanguage()).
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetTimezoneOverride(s.policy.Timezone()).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetLocaleOverride().WithLocale(s.policy.Locale()).Do(ctx)
		}),
		chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height)),
	)
	if err != nil {
		s.closeTab()
		return fmt.Errorf("failed to prepare browser tab: %w", err)
	}
	s.logger.Debug("browser tab ready", zap.Int("width", vp.Width), zap.Int("height", vp.Height))
	return nil
}

// Render navigates to url and returns the rendered HTML.
func (s *BrowserSession) Render(ctx context.Context, url string) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureAllocator()
	if s.tabCtx == nil || needsRotation(s.navigations, s.policy.RotateEvery) {
		if s.tabCtx != nil {
			s.rotations++
			s.logger.Info("rotating browser context", zap.Int("navigations", s.navigations))
		}
		if err := s.newTab(); err != nil {
			return nil, err
		}
	}
	s.navigations++

	runCtx, cancel := context.WithTimeout(s.tabCtx, s.opts.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html, finalURL string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(s.opts.Settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	s.logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return &Page{
		URL:       url,
		FinalURL:  finalURL,
		HTML:      html,
		Challenge: stealth.ChallengeMarker(html),
	}, nil
}

// Navigations returns how many pages this session has rendered.
func (s *BrowserSession) Navigations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigations
}

// Rotations returns how many times the tab context was recycled.
func (s *BrowserSession) Rotations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotations
}

// Close shuts down the tab and the Chrome process.
func (s *BrowserSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeTab()
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
		s.allocCtx = nil
	}
}
