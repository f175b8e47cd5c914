package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jonathan/talent-sourcing/internal/codehost"
	"github.com/jonathan/talent-sourcing/internal/config"
	"github.com/jonathan/talent-sourcing/internal/db"
	"github.com/jonathan/talent-sourcing/internal/fetch"
	"github.com/jonathan/talent-sourcing/internal/llm"
	"github.com/jonathan/talent-sourcing/internal/logging"
	"github.com/jonathan/talent-sourcing/internal/pipeline"
	"github.com/jonathan/talent-sourcing/internal/profilereader"
	"github.com/jonathan/talent-sourcing/internal/ranking"
	"github.com/jonathan/talent-sourcing/internal/recordstore"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/websearch"
	"go.uber.org/zap"
)

// app holds the wired collaborators of one CLI invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	policy  *stealth.Policy
	store   *recordstore.Client
	http    *fetch.Client
	browser *fetch.BrowserSession
	closers []func()
}

// newApp builds the shared infrastructure: logger, stealth policy, HTTP client,
// record store client and, when enabled, the headless browser.
func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.LogFormat, cfg.Debug)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	a.policy = newPolicy(cfg.Seed)
	a.http = fetch.NewClient(a.policy, 0, cfg.FetchPacing)
	a.store = recordstore.New(recordstore.Options{BaseURL: cfg.APIBaseURL, Actor: cfg.Actor}, logger.Named("recordstore"))

	if cfg.UseBrowser || cfg.ReadProfiles {
		browserOpts := fetch.DefaultBrowserOptions()
		browserOpts.ExecPath = cfg.ChromePath
		a.browser = fetch.NewBrowserSession(a.policy, browserOpts, logger.Named("browser"))
		a.closers = append(a.closers, func() {
			logger.Debug("closing browser session",
				zap.Int("navigations", a.browser.Navigations()),
				zap.Int("rotations", a.browser.Rotations()))
			a.browser.Close()
		})
	}
	return a, nil
}

func newPolicy(seed int64) *stealth.Policy {
	if seed == 0 {
		return stealth.New(nil)
	}
	return stealth.New(rand.New(rand.NewSource(seed)))
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// webLinks builds the fallback chain: rendered Google (when a browser is
// available and enabled), Bing HTML, DuckDuckGo HTML, then the licensed API
// that tops up results whenever a key is configured.
func webLinks(ctx context.Context, cfg *config.Config, browser websearch.Renderer, getter websearch.Getter, policy *stealth.Policy, logger *zap.Logger) ([]websearch.Link, error) {
	pages := cfg.SearchPages()
	var links []websearch.Link

	if browser != nil && cfg.UseBrowser {
		links = append(links, websearch.Link{Stage: websearch.NewBrowserStage(browser, pages, policy, logger), Enabled: true})
	}
	links = append(links,
		websearch.Link{Stage: websearch.NewBingStage(getter, pages, policy, logger), Enabled: true},
		websearch.Link{Stage: websearch.NewDuckDuckGoStage(getter, pages, policy, logger), Enabled: true},
	)

	switch {
	case cfg.BraveKey != "":
		backend := websearch.NewBraveBackend(cfg.BraveKey, websearch.BraveEndpoint, 0)
		links = append(links, websearch.Link{Stage: websearch.NewAPIStage(backend, pages, cfg.APIRate, logger), Enabled: true, Always: true})
	case cfg.GoogleAPIKey != "" && cfg.GoogleCSEID != "":
		backend, err := websearch.NewCSEBackend(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID)
		if err != nil {
			return nil, fmt.Errorf("failed to create custom search backend: %w", err)
		}
		links = append(links, websearch.Link{Stage: websearch.NewAPIStage(backend, pages, cfg.APIRate, logger), Enabled: true, Always: true})
	default:
		logger.Info("no search API key configured, API stage disabled")
	}
	return links, nil
}

// narrator returns the conclusion writer. Without an API key, or with
// narration disabled, it only uses the template.
func (a *app) narrator(ctx context.Context) *llm.Narrator {
	llmCfg := llm.DefaultConfig()
	if a.cfg.GeminiModel != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, a.cfg.GeminiModel)
	}
	if a.cfg.NoNarration || a.cfg.GeminiAPIKey == "" {
		return llm.NewNarrator(nil, llmCfg, a.logger)
	}
	client, err := llm.NewClient(ctx, llmCfg, a.cfg.GeminiAPIKey)
	if err != nil {
		a.logger.Warn("narration disabled", zap.Error(err))
		return llm.NewNarrator(nil, llmCfg, a.logger)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return llm.NewNarrator(client, llmCfg, a.logger.Named("narrator"))
}

// ledger connects the optional run ledger. Connection failures are logged and the run continues without it.
func (a *app) ledger(ctx context.Context) pipeline.RunLedger {
	if a.cfg.DatabaseURL == "" {
		return nil
	}
	database, err := openLedger(ctx, a.cfg.DatabaseURL)
	if err != nil {
		a.logger.Warn("run ledger disabled", zap.Error(err))
		return nil
	}
	a.closers = append(a.closers, database.Close)
	return database
}

// openLedger connects to the run ledger database and makes sure its tables exist.
func openLedger(ctx context.Context, databaseURL string) (*db.DB, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// coordinator wires every pipeline collaborator.
func (a *app) coordinator(ctx context.Context) (*pipeline.Coordinator, error) {
	codeHost := codehost.New(codehost.Options{
		Token:      a.cfg.GitHubToken,
		Workers:    a.cfg.Workers,
		SampleSize: a.cfg.SampleSize,
	}, a.policy, a.logger.Named("codehost"))

	var renderer websearch.Renderer
	if a.browser != nil {
		renderer = a.browser
	}
	links, err := webLinks(ctx, a.cfg, renderer, a.http, a.policy, a.logger.Named("websearch"))
	if err != nil {
		return nil, err
	}
	chain := websearch.NewChain(links, a.policy, a.logger.Named("websearch"))
	a.logger.Info("web search chain ready", zap.Strings("stages", chain.Stages()))

	deps := pipeline.Dependencies{
		Searcher: pipeline.NewSources(codeHost, chain, a.logger.Named("sources")),
		Scorer:   ranking.NewEngine(),
		Store:    a.store,
		Narrator: a.narrator(ctx),
	}
	if a.cfg.ReadProfiles {
		deps.Enricher = a.reader()
	}
	if ledger := a.ledger(ctx); ledger != nil {
		deps.Ledger = ledger
	}

	return pipeline.New(deps, pipeline.Options{
		Pages:      a.cfg.SearchPages(),
		DryRun:     a.cfg.DryRun,
		Policy:     a.policy,
		OnProgress: progressLogger(a.logger),
	}, a.logger.Named("pipeline"))
}

// reader builds the profile-detail reader over the browser (if any) and a cached HTTP fetcher.
func (a *app) reader() *profilereader.Reader {
	var renderer profilereader.Renderer
	if a.browser != nil {
		renderer = a.browser
	}
	return profilereader.New(renderer, fetch.NewCachedFetcher(a.http, 0), a.policy, a.logger.Named("profilereader"))
}

func progressLogger(logger *zap.Logger) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		logger.Debug(e.Message,
			zap.String("phase", e.Step),
			zap.String("category", e.Category),
			zap.String("job_id", e.JobID))
	}
}
