package fetch

import (
	"context"
	"time"

	"github.com/jonathan/talent-sourcing/internal/identity"
	"github.com/patrickmn/go-cache"
)

// DefaultPageCacheTTL is how long a fetched page is reused within a process.
const DefaultPageCacheTTL = 30 * time.Minute

// Getter fetches a single URL.
type Getter interface {
	Get(ctx context.Context, urlStr string) (*Result, error)
}

// CachedFetcher wraps a Getter with an in-memory page cache keyed by the
// canonical URL. Failed fetches and challenge pages are never cached.
type CachedFetcher struct {
	next  Getter
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(next Getter, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	return &CachedFetcher{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

// Fetch retrieves a URL, using the cache if a fresh copy exists.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	key := identity.Normalize(urlStr)
	if v, ok := f.cache.Get(key); ok {
		if r, ok := v.(*Result); ok {
			return &CachedResult{Result: r, FromCache: true}, nil
		}
	}

	result, err := f.next.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	if result.Text == "" {
		platform := DetectPlatform(urlStr)
		text, _ := ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
		result.Text = text
	}
	if result.Challenge == "" {
		f.cache.Set(key, result, f.ttl)
	}
	return &CachedResult{Result: result}, nil
}

// Len returns the number of cached pages.
func (f *CachedFetcher) Len() int {
	return f.cache.ItemCount()
}
