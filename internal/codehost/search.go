package codehost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one Search call.
type Result struct {
	Profiles    []types.CandidateProfile
	RateLimited bool
	Message     string
	Quota       Quota
	Stats       types.EngineStats
}

var linkedInInBio = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.|www\.)?linkedin\.com/in/[^\s"'<>)]+`)

// Search runs every query over pages result pages, then enriches the unique
// logins concurrently. Profiles are sorted by login.
//
// A quota below QuotaFloor, or a 403 on any page, stops the search and returns
// RateLimited with no profiles. Other page failures are skipped.
func (c *Client) Search(ctx context.Context, queries []string, pages int) (Result, error) {
	if pages < 1 {
		pages = 1
	}

	quota, err := c.CheckQuota(ctx)
	if errors.Is(err, ErrRateLimited) {
		return c.rateLimited(Quota{}, types.EngineStats{}), nil
	}
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("code host quota",
		zap.Int("remaining", quota.Remaining),
		zap.Int("limit", quota.Limit),
		zap.Time("reset", quota.Reset))
	if quota.Remaining < QuotaFloor {
		return c.rateLimited(quota, types.EngineStats{}), nil
	}

	var (
		stats  types.EngineStats
		logins []string
		seen   = make(map[string]bool)
		first  = true
	)
	for _, q := range queries {
		for page := 1; page <= pages; page++ {
			if !first {
				if err := c.policy.Sleep(ctx, stealth.DelayPage); err != nil {
					return Result{}, err
				}
			}
			first = false
			stats.Attempted++

			found, status, err := c.searchPage(ctx, q, page)
			if status == http.StatusForbidden || status == http.StatusTooManyRequests {
				c.logger.Warn("code host search forbidden; aborting", zap.String("query", q), zap.Int("page", page))
				return c.rateLimited(quota, stats), nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return Result{}, ctx.Err()
				}
				stats.Failed++
				c.logger.Warn("code host search page failed", zap.String("query", q), zap.Int("page", page), zap.Error(err))
				continue
			}

			found = c.sample(found)
			for _, login := range found {
				key := strings.ToLower(strings.TrimSpace(login))
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				logins = append(logins, login)
			}
			if len(found) < c.opts.PerPage && c.opts.SampleSize == 0 {
				break
			}
		}
	}

	profiles := c.enrich(ctx, logins)
	stats.Returned = len(profiles)
	c.logger.Info("code host search finished",
		zap.Int("queries", len(queries)),
		zap.Int("logins", len(logins)),
		zap.Int("profiles", len(profiles)),
		zap.Int("failed_pages", stats.Failed))

	return Result{Profiles: profiles, Quota: quota, Stats: stats}, nil
}

func (c *Client) rateLimited(q Quota, stats types.EngineStats) Result {
	return Result{RateLimited: true, Message: Remediation, Quota: q, Stats: stats}
}

// searchPage returns the logins on one page and the HTTP status.
func (c *Client) searchPage(ctx context.Context, query string, page int) ([]string, int, error) {
	resp, err := c.get(ctx, "/search/users", map[string]string{
		"q":        query,
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(c.opts.PerPage),
	})
	if err != nil {
		return nil, 0, err
	}
	if q, ok := quotaFromHeaders(resp.Header()); ok {
		c.logger.Debug("code host quota after page", zap.Int("remaining", q.Remaining))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, resp.StatusCode(), fmt.Errorf("search returned HTTP %d", resp.StatusCode())
	}

	var logins []string
	gjson.GetBytes(resp.Body(), "items.#.login").ForEach(func(_, v gjson.Result) bool {
		logins = append(logins, v.String())
		return true
	})
	return logins, resp.StatusCode(), nil
}

func (c *Client) sample(logins []string) []string {
	if c.opts.SampleSize <= 0 || len(logins) <= c.opts.SampleSize {
		return logins
	}
	idx := c.policy.Sample(len(logins), c.opts.SampleSize)
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = logins[j]
	}
	return out
}

// enrich fetches profile details with at most opts.Workers requests in flight.
// Failed lookups are dropped.
func (c *Client) enrich(ctx context.Context, logins []string) []types.CandidateProfile {
	results := make([]*types.CandidateProfile, len(logins))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, login := range logins {
		g.Go(func() error {
			p, err := c.FetchProfile(gctx, login)
			if err != nil {
				c.logger.Debug("dropping code host profile", zap.String("login", login), zap.Error(err))
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	profiles := make([]types.CandidateProfile, 0, len(logins))
	for _, p := range results {
		if p != nil {
			profiles = append(profiles, *p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].Username) < strings.ToLower(profiles[j].Username)
	})
	return profiles
}

// FetchProfile loads one user and the languages of their recently updated repositories.
func (c *Client) FetchProfile(ctx context.Context, login string) (*types.CandidateProfile, error) {
	userResp, err := c.get(ctx, "/users/"+login, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", login, err)
	}
	if userResp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("user %s returned HTTP %d", login, userResp.StatusCode())
	}

	repoResp, err := c.get(ctx, "/users/"+login+"/repos", map[string]string{
		"sort":     "updated",
		"per_page": strconv.Itoa(c.opts.RepoLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repos for %s: %w", login, err)
	}
	if repoResp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("repos for %s returned HTTP %d", login, repoResp.StatusCode())
	}

	p := profileFromUser(userResp.Body())
	p.Skills = repoLanguages(repoResp.Body())
	return &p, nil
}

func profileFromUser(body []byte) types.CandidateProfile {
	u := gjson.ParseBytes(body)
	login := u.Get("login").String()
	htmlURL := u.Get("html_url").String()
	if htmlURL == "" && login != "" {
		htmlURL = "https://github.com/" + login
	}

	p := types.CandidateProfile{
		ProfileURL:  htmlURL,
		Username:    login,
		GitHubURL:   htmlURL,
		Name:        strings.TrimSpace(u.Get("name").String()),
		Headline:    strings.TrimSpace(u.Get("bio").String()),
		Company:     strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(u.Get("company").String()), "@")),
		Location:    strings.TrimSpace(u.Get("location").String()),
		Followers:   int(u.Get("followers").Int()),
		PublicRepos: int(u.Get("public_repos").Int()),
		Email:       strings.TrimSpace(u.Get("email").String()),
		Source:      types.SourceGitHub,
		UpdatedAt:   u.Get("updated_at").String(),
	}
	if p.Company != "" {
		p.Employers = []string{p.Company}
	}
	if u.Get("hireable").Bool() {
		p.Notes = "available for hire"
	}
	for _, field := range []string{"blog", "bio"} {
		if m := linkedInInBio.FindString(u.Get(field).String()); m != "" {
			p.LinkedInURL = m
			break
		}
	}
	return p
}

// repoLanguages returns the distinct primary languages, sorted.
func repoLanguages(body []byte) []string {
	set := make(map[string]bool)
	gjson.GetBytes(body, "#.language").ForEach(func(_, v gjson.Result) bool {
		if lang := strings.TrimSpace(v.String()); lang != "" {
			set[lang] = true
		}
		return true
	})
	langs := make([]string, 0, len(set))
	for l := range set {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
