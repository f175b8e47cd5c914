package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jonathan/talent-sourcing/internal/fetch"
	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultsPage(slugs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, s := range slugs {
		fmt.Fprintf(&b, `<li class="b_algo"><h2><a href="https://tw.linkedin.com/in/%s">%s - Engineer | LinkedIn</a></h2></li>`, s, s)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type pagedGetter struct {
	pages []*fetch.Result
	errs  []error
	urls  []string
}

func (g *pagedGetter) Get(_ context.Context, u string) (*fetch.Result, error) {
	i := len(g.urls)
	g.urls = append(g.urls, u)
	if i >= len(g.pages) {
		return &fetch.Result{HTML: "<html></html>"}, nil
	}
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	return g.pages[i], err
}

func TestHTMLStage_EnoughResultsStopsChain(t *testing.T) {
	g := &pagedGetter{pages: []*fetch.Result{
		{HTML: resultsPage("a", "b")},
		{HTML: resultsPage("b", "c", "d")},
	}}
	stage := NewBingStage(g, 2, stealth.NewSeeded(1), nil)

	results, cont := stage.Attempt(context.Background(), "Go Taiwan", 0)
	assert.False(t, cont)
	assert.Len(t, results, 4)
	require.Len(t, g.urls, 2)
	assert.Contains(t, g.urls[0], "bing.com/search")
	assert.Contains(t, g.urls[1], "first=11")
}

func TestHTMLStage_ChallengeKeepsResultsAndContinues(t *testing.T) {
	g := &pagedGetter{pages: []*fetch.Result{
		{HTML: resultsPage("a", "b", "c")},
		{HTML: "<div id='anomaly-modal'></div>", Challenge: "anomaly-modal"},
	}}
	stage := NewDuckDuckGoStage(g, 3, stealth.NewSeeded(1), nil)

	results, cont := stage.Attempt(context.Background(), "q", 0)
	assert.True(t, cont)
	assert.Len(t, results, 3)
	assert.Len(t, g.urls, 2)
}

func TestHTMLStage_FewResultsContinues(t *testing.T) {
	g := &pagedGetter{pages: []*fetch.Result{{HTML: resultsPage("a")}}}
	stage := NewBingStage(g, 1, stealth.NewSeeded(1), nil)

	results, cont := stage.Attempt(context.Background(), "q", 0)
	assert.True(t, cont)
	assert.Len(t, results, 1)
}

func TestHTMLStage_FetchErrorIsSoft(t *testing.T) {
	g := &pagedGetter{
		pages: []*fetch.Result{nil},
		errs:  []error{errors.New("connection reset")},
	}
	stage := NewBingStage(g, 2, stealth.NewSeeded(1), nil)

	results, cont := stage.Attempt(context.Background(), "q", 0)
	assert.True(t, cont)
	assert.Empty(t, results)
	assert.Len(t, g.urls, 1)
}

type stubRenderer struct {
	pages []*fetch.Page
	calls int
}

func (r *stubRenderer) Render(_ context.Context, u string) (*fetch.Page, error) {
	r.calls++
	if r.calls > len(r.pages) {
		return nil, errors.New("no more pages")
	}
	return r.pages[r.calls-1], nil
}

func TestBrowserStage_ChallengeStopsButAlwaysContinues(t *testing.T) {
	r := &stubRenderer{pages: []*fetch.Page{
		{HTML: resultsPage("a", "b")},
		{HTML: "unusual traffic", Challenge: "unusual traffic"},
		{HTML: resultsPage("c")},
	}}
	stage := NewBrowserStage(r, 3, stealth.NewSeeded(1), nil)

	results, cont := stage.Attempt(context.Background(), "q", 0)
	assert.True(t, cont)
	assert.Len(t, results, 2)
	assert.Equal(t, 2, r.calls)
}

func TestPagesAreClamped(t *testing.T) {
	assert.Equal(t, 1, clampPages(0))
	assert.Equal(t, 2, clampPages(2))
	assert.Equal(t, 3, clampPages(10))
}

func TestURLBuilders(t *testing.T) {
	assert.Equal(t, "https://www.google.com/search?hl=zh-TW&num=10&q=site%3Alinkedin.com%2Fin+Go", GoogleURL("site:linkedin.com/in Go", 0))
	assert.Contains(t, GoogleURL("q", 2), "start=20")
	assert.Contains(t, DuckDuckGoURL("q", 1), "s=30")
	assert.NotContains(t, BingURL("q", 0), "first=")
}

func braveServer(t *testing.T, hits *int32, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "brave-key", r.Header.Get("X-Subscription-Token"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = fmt.Fprint(w, `{"web":{"results":[
			{"url":"https://tw.linkedin.com/in/api-one","title":"API One - Backend - LINE | LinkedIn","description":"Taipei"},
			{"url":"https://example.com/blog","title":"Blog"},
			{"url":"https://www.linkedin.com/in/api-two/","title":"API Two | LinkedIn"}
		]}}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAPIStage_BraveResultsAndCache(t *testing.T) {
	var hits int32
	server := braveServer(t, &hits, http.StatusOK)
	stage := NewAPIStage(NewBraveBackend("brave-key", server.URL, 0), 3, 100, nil)

	results, cont := stage.Attempt(context.Background(), "q", 0)
	assert.False(t, cont)
	require.Len(t, results, 2)
	assert.Equal(t, "https://linkedin.com/in/api-one", results[0].URL)
	assert.Equal(t, "API One", results[0].Name)
	assert.Equal(t, "LINE", results[0].Company)
	assert.Equal(t, StageBrave, stage.Name())

	_, _ = stage.Attempt(context.Background(), "q", 10)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second attempt is served from cache")
}

func TestAPIStage_FailureIsSoft(t *testing.T) {
	var hits int32
	server := braveServer(t, &hits, http.StatusUnauthorized)
	stage := NewAPIStage(NewBraveBackend("brave-key", server.URL, 0), 2, 100, nil)

	results, cont := stage.Attempt(context.Background(), "q", 0)
	assert.False(t, cont)
	assert.Empty(t, results)
}

type countingBackend struct {
	offsets []int
}

func (b *countingBackend) Name() string  { return "fake_api" }
func (b *countingBackend) PageSize() int { return 2 }
func (b *countingBackend) Search(_ context.Context, _ string, offset int) ([]Hit, error) {
	b.offsets = append(b.offsets, offset)
	return []Hit{
		{URL: fmt.Sprintf("https://linkedin.com/in/p%d", offset)},
		{URL: fmt.Sprintf("https://linkedin.com/in/p%d", offset+1)},
	}, nil
}

func TestAPIStage_SinglePageWhenEnoughKnown(t *testing.T) {
	b := &countingBackend{}
	stage := NewAPIStage(b, 3, 1000, nil)
	results, _ := stage.Attempt(context.Background(), "q", 5)
	assert.Equal(t, []int{0}, b.offsets)
	assert.Len(t, results, 2)

	b2 := &countingBackend{}
	stage2 := NewAPIStage(b2, 3, 1000, nil)
	results, _ = stage2.Attempt(context.Background(), "q", 4)
	assert.Equal(t, []int{0, 2, 4}, b2.offsets)
	assert.Len(t, results, 6)
}
