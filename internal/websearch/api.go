package websearch

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonathan/talent-sourcing/internal/identity"
	"github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	// BraveEndpoint is the Brave web search endpoint.
	BraveEndpoint = "https://api.search.brave.com/res/v1/web/search"
	// knownResultsForSinglePage is the result count at which the API stage fetches only one page.
	knownResultsForSinglePage = 5
	apiCacheTTL               = time.Hour
)

// APIBackend is a licensed search API.
type APIBackend interface {
	Name() string
	// Search returns raw hits for the page starting at offset (zero-based).
	Search(ctx context.Context, query string, offset int) ([]Hit, error)
	// PageSize is the number of hits one page holds.
	PageSize() int
}

// Hit is one raw API search result.
type Hit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// APIStage queries a licensed search API through a rate limiter and a response cache.
type APIStage struct {
	backend APIBackend
	pages   int
	limiter *rate.Limiter
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewAPIStage creates an API stage allowing perSecond requests.
func NewAPIStage(backend APIBackend, pages int, perSecond float64, logger *zap.Logger) *APIStage {
	if perSecond <= 0 {
		perSecond = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIStage{
		backend: backend,
		pages:   clampPages(pages),
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		cache:   cache.New(apiCacheTTL, 2*apiCacheTTL),
		logger:  logger,
	}
}

func (s *APIStage) Name() string { return s.backend.Name() }

// Attempt fetches one page when the chain already holds enough results,
// otherwise the configured page count. It is the last stage and never asks to continue.
func (s *APIStage) Attempt(ctx context.Context, query string, prior int) ([]Result, bool) {
	pages := s.pages
	if prior >= knownResultsForSinglePage {
		pages = 1
	}

	var results []Result
	seen := make(map[string]bool)
	for page := 0; page < pages; page++ {
		hits, err := s.page(ctx, query, page*s.backend.PageSize())
		if err != nil {
			s.logger.Warn("search API failed", zap.String("stage", s.Name()), zap.Int("page", page+1), zap.Error(err))
			break
		}
		for _, h := range hits {
			slug, ok := identity.LinkedInSlug(h.URL)
			if !ok {
				continue
			}
			r := Result{URL: identity.ProfileURL(slug), Title: h.Title, Snippet: h.Snippet}
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			r.Name, r.Headline, r.Company = ParseTitle(h.Title)
			results = append(results, r)
		}
		if len(hits) < s.backend.PageSize() {
			break
		}
	}
	return results, false
}

func (s *APIStage) page(ctx context.Context, query string, offset int) ([]Hit, error) {
	key := query + "|" + strconv.Itoa(offset)
	if v, ok := s.cache.Get(key); ok {
		return v.([]Hit), nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	hits, err := s.backend.Search(ctx, query, offset)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, hits, cache.DefaultExpiration)
	return hits, nil
}

// BraveBackend calls the Brave Search API.
type BraveBackend struct {
	http     *resty.Client
	endpoint string
}

// NewBraveBackend creates a Brave backend. endpoint may be empty for the public API.
func NewBraveBackend(key, endpoint string, timeout time.Duration) *BraveBackend {
	if endpoint == "" {
		endpoint = BraveEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("X-Subscription-Token", key)
	return &BraveBackend{http: r, endpoint: endpoint}
}

func (b *BraveBackend) Name() string { return StageBrave }

func (b *BraveBackend) PageSize() int { return 20 }

func (b *BraveBackend) Search(ctx context.Context, query string, offset int) ([]Hit, error) {
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"count":  strconv.Itoa(b.PageSize()),
			"offset": strconv.Itoa(offset / b.PageSize()),
		}).
		Get(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("brave request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("brave returned HTTP %d", resp.StatusCode())
	}

	var hits []Hit
	gjson.GetBytes(resp.Body(), "web.results").ForEach(func(_, v gjson.Result) bool {
		hits = append(hits, Hit{
			URL:     v.Get("url").String(),
			Title:   v.Get("title").String(),
			Snippet: v.Get("description").String(),
		})
		return true
	})
	return hits, nil
}

// CSEBackend calls Google Custom Search.
type CSEBackend struct {
	svc *customsearch.Service
	cx  string
}

// NewCSEBackend creates a Custom Search backend for engine id cx.
func NewCSEBackend(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*CSEBackend, error) {
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CSEBackend{svc: svc, cx: cx}, nil
}

func (b *CSEBackend) Name() string { return StageGoogleCSE }

func (b *CSEBackend) PageSize() int { return 10 }

func (b *CSEBackend) Search(ctx context.Context, query string, offset int) ([]Hit, error) {
	resp, err := b.svc.Cse.List().Cx(b.cx).Q(query).Start(int64(offset + 1)).Num(int64(b.PageSize())).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("custom search failed: %w", err)
	}
	hits := make([]Hit, 0, len(resp.Items))
	for _, item := range resp.Items {
		hits = append(hits, Hit{URL: item.Link, Title: item.Title, Snippet: item.Snippet})
	}
	return hits, nil
}
