// Package stealth supplies the anti-detection policy shared by the code-host
// client, the web-search stages and the profile reader: rotated client
// identities, randomized pacing and bot-challenge detection.
package stealth

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// DelayKind selects a stage-specific delay range.
type DelayKind string

const (
	// DelayPage separates result pages within one engine.
	DelayPage DelayKind = "page"
	// DelayEngine separates calls to different engines or stages.
	DelayEngine DelayKind = "engine"
	// DelayCandidate separates per-candidate record store writes.
	DelayCandidate DelayKind = "candidate"
	// DelayProfile separates browser visits to individual profiles.
	DelayProfile DelayKind = "profile"
	// DelayJob separates whole roles in a multi-role run.
	DelayJob DelayKind = "job"
)

// Range is an inclusive delay interval.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// DefaultRanges returns the standard pacing ranges.
func DefaultRanges() map[DelayKind]Range {
	return map[DelayKind]Range{
		DelayPage:      {Min: 1 * time.Second, Max: 3 * time.Second},
		DelayEngine:    {Min: 2 * time.Second, Max: 5 * time.Second},
		DelayCandidate: {Min: 1 * time.Second, Max: 3 * time.Second},
		DelayProfile:   {Min: 10 * time.Second, Max: 20 * time.Second},
		DelayJob:       {Min: 30 * time.Second, Max: 60 * time.Second},
	}
}

// DefaultRotateEvery is how many page visits a browser context serves before it is recreated.
const DefaultRotateEvery = 5

// Sleeper blocks for a duration or until the context ends.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper sleeps on the wall clock.
type RealSleeper struct{}

// Sleep implements Sleeper.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoopSleeper returns immediately. It records requested durations for tests.
type NoopSleeper struct {
	mu    sync.Mutex
	Calls []time.Duration
}

// Sleep implements Sleeper.
func (s *NoopSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Policy is the injected source of randomness and pacing. It is safe for concurrent use.
type Policy struct {
	mu      sync.Mutex
	rng     *rand.Rand
	sleeper Sleeper
	ranges  map[DelayKind]Range

	// RotateEvery is the browser context rotation period in page visits.
	RotateEvery int
}

// Option configures a Policy.
type Option func(*Policy)

// WithSleeper replaces the wall-clock sleeper.
func WithSleeper(s Sleeper) Option {
	return func(p *Policy) { p.sleeper = s }
}

// WithRange overrides one delay range.
func WithRange(kind DelayKind, r Range) Option {
	return func(p *Policy) { p.ranges[kind] = r }
}

// WithRotateEvery overrides the browser context rotation period.
func WithRotateEvery(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.RotateEvery = n
		}
	}
}

// New creates a Policy drawing from rng. Pass rand.New(rand.NewSource(seed)) for reproducible runs.
func New(rng *rand.Rand, opts ...Option) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p := &Policy{
		rng:         rng,
		sleeper:     RealSleeper{},
		ranges:      DefaultRanges(),
		RotateEvery: DefaultRotateEvery,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewSeeded is New with a fixed seed and a no-op sleeper.
func NewSeeded(seed int64) *Policy {
	return New(rand.New(rand.NewSource(seed)), WithSleeper(&NoopSleeper{}))
}

// Intn returns a pseudo-random int in [0,n).
func (p *Policy) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// Between returns a pseudo-random int in [lo,hi].
func (p *Policy) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.Intn(hi-lo+1)
}

// Delay draws a duration from the range for kind.
func (p *Policy) Delay(kind DelayKind) time.Duration {
	r, ok := p.ranges[kind]
	if !ok {
		return 0
	}
	return p.Jitter(r.Min, r.Max)
}

// Jitter returns a duration drawn uniformly from [lo,hi].
func (p *Policy) Jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo + time.Duration(p.rng.Int63n(int64(hi-lo)+1))
}

// Sleep waits for a randomized delay of the given kind.
func (p *Policy) Sleep(ctx context.Context, kind DelayKind) error {
	return p.sleeper.Sleep(ctx, p.Delay(kind))
}

// Sample returns k distinct indices from [0,n) in ascending order, or all of them when k <= 0 or k >= n.
func (p *Policy) Sample(n, k int) []int {
	if n <= 0 {
		return nil
	}
	if k <= 0 || k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	p.mu.Lock()
	perm := p.rng.Perm(n)
	p.mu.Unlock()

	picked := perm[:k]
	sort.Ints(picked)
	return picked
}
