package websearch

import (
	"context"
	"testing"

	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStage struct {
	name    string
	results []Result
	cont    bool
	calls   int
	priors  []int
}

func (s *scriptedStage) Name() string { return s.name }

func (s *scriptedStage) Attempt(_ context.Context, _ string, prior int) ([]Result, bool) {
	s.calls++
	s.priors = append(s.priors, prior)
	return s.results, s.cont
}

func profiles(slugs ...string) []Result {
	out := make([]Result, len(slugs))
	for i, s := range slugs {
		out[i] = Result{URL: "https://linkedin.com/in/" + s}
	}
	return out
}

func urls(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.URL
	}
	return out
}

func TestChain_ChallengedBrowserFallsThroughToHTML(t *testing.T) {
	browser := &scriptedStage{name: "browser", cont: true}
	bing := &scriptedStage{name: "bing", results: profiles("a", "b", "c", "d"), cont: false}
	ddg := &scriptedStage{name: "ddg", results: profiles("e")}
	api := &scriptedStage{name: "api", results: profiles("b", "f")}

	sleeper := &stealth.NoopSleeper{}
	policy := stealth.New(nil, stealth.WithSleeper(sleeper))
	chain := NewChain([]Link{
		{Stage: browser, Enabled: true},
		{Stage: bing, Enabled: true},
		{Stage: ddg, Enabled: true},
		{Stage: api, Enabled: true, Always: true},
	}, policy, nil)

	out := chain.Run(context.Background(), "q")

	assert.Equal(t, 1, browser.calls)
	assert.Equal(t, 1, bing.calls)
	assert.Equal(t, 0, ddg.calls, "bing found enough, ddg must not run")
	assert.Equal(t, 1, api.calls, "API stage runs whenever configured")
	assert.Equal(t, []int{4}, api.priors)

	assert.Equal(t, []string{
		"https://linkedin.com/in/a", "https://linkedin.com/in/b", "https://linkedin.com/in/c",
		"https://linkedin.com/in/d", "https://linkedin.com/in/f",
	}, urls(out.Results))
	assert.Equal(t, []string{"bing", "api"}, out.Contributors)
	assert.Equal(t, "bing", out.Results[0].Stage)
	assert.Equal(t, 1, out.Stats["browser"].Failed)
	assert.Equal(t, 1, out.Stats["api"].Returned)
	assert.Len(t, sleeper.Calls, 2, "sleeps between executed stages only")
}

func TestChain_ContinuesWhileStagesAskTo(t *testing.T) {
	bing := &scriptedStage{name: "bing", results: profiles("a"), cont: true}
	ddg := &scriptedStage{name: "ddg", results: profiles("a", "b"), cont: true}

	chain := NewChain([]Link{
		{Stage: bing, Enabled: true},
		{Stage: ddg, Enabled: true},
	}, stealth.NewSeeded(1), nil)

	out := chain.Run(context.Background(), "q")
	assert.Equal(t, []int{1}, ddg.priors)
	assert.Equal(t, []string{"bing", "ddg"}, out.Contributors)
	assert.Len(t, out.Results, 2)
}

func TestChain_DisabledStagesAreSkipped(t *testing.T) {
	browser := &scriptedStage{name: "browser", results: profiles("x"), cont: true}
	bing := &scriptedStage{name: "bing", results: profiles("a"), cont: true}
	api := &scriptedStage{name: "api", results: profiles("z")}

	chain := NewChain([]Link{
		{Stage: browser, Enabled: false},
		{Stage: bing, Enabled: true},
		{Stage: api, Enabled: false, Always: true},
	}, stealth.NewSeeded(1), nil)

	out := chain.Run(context.Background(), "q")
	assert.Zero(t, browser.calls)
	assert.Zero(t, api.calls)
	assert.Equal(t, []string{"bing"}, chain.Stages())
	require.Len(t, out.Results, 1)
}

func TestChain_EveryStageEmpty(t *testing.T) {
	a := &scriptedStage{name: "a", cont: true}
	b := &scriptedStage{name: "b", cont: true}

	out := NewChain([]Link{{Stage: a, Enabled: true}, {Stage: b, Enabled: true}}, stealth.NewSeeded(1), nil).
		Run(context.Background(), "q")
	assert.Empty(t, out.Results)
	assert.Empty(t, out.Contributors)
	assert.Equal(t, 1, out.Stats["a"].Failed)
	assert.Equal(t, 1, out.Stats["b"].Failed)
}

func TestChain_StopsOnCancelledContext(t *testing.T) {
	a := &scriptedStage{name: "a", cont: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewChain([]Link{{Stage: a, Enabled: true}}, stealth.NewSeeded(1), nil).Run(ctx, "q")
	assert.Zero(t, a.calls)
	assert.Empty(t, out.Results)
}
