// Package codehost searches GitHub users and enriches them into candidate profiles.
package codehost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// QuotaFloor is the minimum remaining search quota required to start a search.
	QuotaFloor = 10
	// DefaultPerPage is the page size for user search.
	DefaultPerPage = 30
	// DefaultWorkers bounds concurrent profile enrichment.
	DefaultWorkers = 4
	// DefaultRepoLimit is how many recently updated repositories feed the language list.
	DefaultRepoLimit = 10
	// DefaultTimeout bounds every request.
	DefaultTimeout = 15 * time.Second
)

// ErrRateLimited is returned by calls that hit the API quota.
var ErrRateLimited = errors.New("code host rate limit reached")

// Remediation is shown to operators when the quota is exhausted.
const Remediation = "GitHub API quota exhausted. Set GITHUB_TOKEN to a personal access token " +
	"(no scopes needed) to raise the search limit, or wait for the quota window to reset."

// Options configures the client.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	PerPage   int
	Workers   int
	RepoLimit int
	// SampleSize down-samples each result page to at most this many users. Zero keeps all.
	SampleSize int
}

// DefaultOptions returns the public API defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		PerPage:   DefaultPerPage,
		Workers:   DefaultWorkers,
		RepoLimit: DefaultRepoLimit,
	}
}

// Quota is the search quota reported by the API.
type Quota struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Client talks to the code-host REST API.
type Client struct {
	http   *resty.Client
	policy *stealth.Policy
	logger *zap.Logger
	opts   Options
}

// New creates a Client. Zero-valued options fall back to DefaultOptions.
func New(opts Options, policy *stealth.Policy, logger *zap.Logger) *Client {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.PerPage <= 0 {
		opts.PerPage = def.PerPage
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.RepoLimit <= 0 {
		opts.RepoLimit = def.RepoLimit
	}
	if policy == nil {
		policy = stealth.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28")
	if opts.Token != "" {
		r.SetAuthToken(opts.Token)
	}

	return &Client{http: r, policy: policy, logger: logger, opts: opts}
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	return c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.policy.UserAgent()).
		SetQueryParams(params).
		Get(path)
}

// CheckQuota reads the remaining search quota.
func (c *Client) CheckQuota(ctx context.Context) (Quota, error) {
	resp, err := c.get(ctx, "/rate_limit", nil)
	if err != nil {
		return Quota{}, fmt.Errorf("failed to query rate limit: %w", err)
	}
	if resp.StatusCode() == http.StatusForbidden || resp.StatusCode() == http.StatusTooManyRequests {
		return Quota{}, ErrRateLimited
	}
	if resp.StatusCode() != http.StatusOK {
		return Quota{}, fmt.Errorf("rate limit endpoint returned HTTP %d", resp.StatusCode())
	}

	body := resp.Body()
	res := gjson.GetBytes(body, "resources.search")
	if !res.Exists() {
		res = gjson.GetBytes(body, "rate")
	}
	if !res.Exists() {
		return Quota{}, fmt.Errorf("rate limit response missing search resource")
	}
	return Quota{
		Limit:     int(res.Get("limit").Int()),
		Remaining: int(res.Get("remaining").Int()),
		Reset:     time.Unix(res.Get("reset").Int(), 0).UTC(),
	}, nil
}

// quotaFromHeaders parses X-RateLimit-* headers. ok is false when they are absent.
func quotaFromHeaders(h http.Header) (Quota, bool) {
	remaining := h.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return Quota{}, false
	}
	q := Quota{}
	q.Remaining, _ = strconv.Atoi(remaining)
	q.Limit, _ = strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		q.Reset = time.Unix(reset, 0).UTC()
	}
	return q, true
}
