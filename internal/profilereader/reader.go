// Package profilereader visits individual candidate pages and folds what it
// finds back into the candidate profile before scoring.
//
// LinkedIn pages go through a stealth browser session; GitHub pages are plain
// HTTP through a cached fetcher. Reads never fail the caller's batch: a login
// wall, challenge or network error leaves the profile as it was.
package profilereader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/fetch"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/jonathan/talent-sourcing/internal/types"
	"go.uber.org/zap"
)

// MaxMergedSkills caps the skill list after enrichment.
const MaxMergedSkills = 12

var (
	// ErrLoginWall is returned when the platform redirected to a sign-in page.
	ErrLoginWall = errors.New("profile requires sign-in")
	// ErrChallenged is returned when the page was a bot challenge.
	ErrChallenged = errors.New("profile page challenged")
	// ErrUnsupported is returned for URLs on platforms the reader cannot parse.
	ErrUnsupported = errors.New("unsupported profile platform")
	// ErrNothingRead is returned when the page parsed but held no identifying fields.
	ErrNothingRead = errors.New("no profile fields found")
)

// Renderer renders a page in a browser.
type Renderer interface {
	Render(ctx context.Context, url string) (*fetch.Page, error)
}

// Fetcher fetches a page over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.CachedResult, error)
}

// Stats counts reader outcomes over a batch.
type Stats struct {
	Read       int `json:"read"`
	LoginWalls int `json:"login_walls"`
	Failed     int `json:"failed"`
}

// Reader reads candidate profile pages.
type Reader struct {
	browser Renderer
	pages   Fetcher
	policy  *stealth.Policy
	logger  *zap.Logger
}

// New creates a Reader. browser may be nil, in which case LinkedIn pages are unsupported.
func New(browser Renderer, pages Fetcher, policy *stealth.Policy, logger *zap.Logger) *Reader {
	if policy == nil {
		policy = stealth.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{browser: browser, pages: pages, policy: policy, logger: logger}
}

// Read fetches one profile page and converts it into a partial profile.
func (r *Reader) Read(ctx context.Context, url string) (types.CandidateProfile, error) {
	switch platform := fetch.DetectPlatform(url); platform {
	case fetch.PlatformLinkedIn:
		return r.readLinkedIn(ctx, url)
	case fetch.PlatformGitHub:
		return r.readGitHub(ctx, url)
	default:
		return types.CandidateProfile{}, fmt.Errorf("%w: %s", ErrUnsupported, platform)
	}
}

func (r *Reader) readLinkedIn(ctx context.Context, url string) (types.CandidateProfile, error) {
	if r.browser == nil {
		return types.CandidateProfile{}, fmt.Errorf("%w: no browser session", ErrUnsupported)
	}
	page, err := r.browser.Render(ctx, url)
	if err != nil {
		return types.CandidateProfile{}, fmt.Errorf("failed to render %s: %w", url, err)
	}
	if fetch.LoginWall(fetch.PlatformLinkedIn, page.FinalURL, page.HTML) {
		return types.CandidateProfile{}, ErrLoginWall
	}
	if page.Challenge != "" {
		return types.CandidateProfile{}, fmt.Errorf("%w: %s", ErrChallenged, page.Challenge)
	}

	parsed, err := ParseLinkedIn(page.HTML)
	if err != nil {
		return types.CandidateProfile{}, err
	}
	if !parsed.Read() {
		return types.CandidateProfile{}, ErrNothingRead
	}
	return parsed.Profile(url), nil
}

func (r *Reader) readGitHub(ctx context.Context, url string) (types.CandidateProfile, error) {
	if r.pages == nil {
		return types.CandidateProfile{}, fmt.Errorf("%w: no page fetcher", ErrUnsupported)
	}
	res, err := r.pages.Fetch(ctx, url)
	if err != nil {
		return types.CandidateProfile{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if res.Challenge != "" {
		return types.CandidateProfile{}, fmt.Errorf("%w: %s", ErrChallenged, res.Challenge)
	}

	parsed, err := ParseGitHub(res.HTML)
	if err != nil {
		return types.CandidateProfile{}, err
	}
	p := parsed.Profile(url)
	if summary := parsed.PinnedSummary(); summary != "" {
		p.Notes = joinNotes(p.Notes, "Pinned: "+summary)
	}
	return p, nil
}

// targets lists the pages worth reading for a profile, GitHub first.
func targets(p types.CandidateProfile) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		switch fetch.DetectPlatform(u) {
		case fetch.PlatformGitHub, fetch.PlatformLinkedIn:
			seen[u] = true
			out = append(out, u)
		}
	}
	add(p.GitHubURL)
	add(p.LinkedInURL)
	add(p.ProfileURL)
	return out
}

// Enrich reads every known page of p and returns a new profile with the
// findings merged in. Fields already present on p win; skills are unioned and
// notes appended. The returned error joins every failed read; the profile is
// still usable when it is non-nil.
func (r *Reader) Enrich(ctx context.Context, p types.CandidateProfile) (types.CandidateProfile, error) {
	out := p.WithEnrichment(types.CandidateProfile{})
	var errs []error
	for _, u := range targets(p) {
		found, err := r.Read(ctx, u)
		if err != nil {
			r.logger.Debug("profile read failed", zap.String("url", u), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		out = merge(out, found)
	}
	return out, errors.Join(errs...)
}

func merge(base, found types.CandidateProfile) types.CandidateProfile {
	notes := found.Notes
	found.Notes = ""
	out := base.WithEnrichment(found)
	out.Skills = mergeSkills(base.Skills, found.Skills, MaxMergedSkills)
	out.Notes = joinNotes(base.Notes, notes)
	return out
}

// EnrichAll enriches profiles in order, pausing between candidates. A
// cancelled context stops the batch; profiles not yet visited are returned unchanged.
func (r *Reader) EnrichAll(ctx context.Context, profiles []types.CandidateProfile) ([]types.CandidateProfile, Stats) {
	out := make([]types.CandidateProfile, len(profiles))
	copy(out, profiles)

	var stats Stats
	visited := 0
	for i, p := range profiles {
		if len(targets(p)) == 0 {
			continue
		}
		if visited > 0 {
			if err := r.policy.Sleep(ctx, stealth.DelayProfile); err != nil {
				break
			}
		}
		visited++

		enriched, err := r.Enrich(ctx, p)
		out[i] = enriched
		switch {
		case err == nil:
			stats.Read++
		case errors.Is(err, ErrLoginWall):
			stats.LoginWalls++
		default:
			stats.Failed++
		}
	}

	r.logger.Info("profile enrichment finished",
		zap.Int("profiles", len(profiles)),
		zap.Int("read", stats.Read),
		zap.Int("login_walls", stats.LoginWalls),
		zap.Int("failed", stats.Failed))
	return out, stats
}
