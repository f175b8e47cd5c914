package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGetter struct {
	calls int
	pages map[string]*Result
}

func (s *stubGetter) Get(_ context.Context, urlStr string) (*Result, error) {
	s.calls++
	r, ok := s.pages[urlStr]
	if !ok {
		return nil, &Error{URL: urlStr, Status: 404, Message: "HTTP status 404"}
	}
	cp := *r
	return &cp, nil
}

func TestCachedFetcher_ReusesCanonicalURL(t *testing.T) {
	stub := &stubGetter{pages: map[string]*Result{
		"https://github.com/octocat": {URL: "https://github.com/octocat", HTML: `<main>The Octocat</main>`},
	}}
	f := NewCachedFetcher(stub, 0)

	first, err := f.Fetch(context.Background(), "https://github.com/octocat")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "The Octocat", first.Text)

	second, err := f.Fetch(context.Background(), "https://www.github.com/Octocat/?tab=repositories")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, f.Len())
}

func TestCachedFetcher_SkipsFailuresAndChallenges(t *testing.T) {
	stub := &stubGetter{pages: map[string]*Result{
		"https://example.com/blocked": {HTML: "captcha", Challenge: "g-recaptcha"},
	}}
	f := NewCachedFetcher(stub, 0)

	_, err := f.Fetch(context.Background(), "https://example.com/missing")
	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 404, fetchErr.Status)

	_, err = f.Fetch(context.Background(), "https://example.com/blocked")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "https://example.com/blocked")
	require.NoError(t, err)

	assert.Equal(t, 3, stub.calls)
	assert.Equal(t, 0, f.Len())
}

func TestNeedsRotation(t *testing.T) {
	assert.False(t, needsRotation(0, 5))
	assert.False(t, needsRotation(4, 5))
	assert.True(t, needsRotation(5, 5))
	assert.True(t, needsRotation(10, 5))
	assert.False(t, needsRotation(5, 0))
}
