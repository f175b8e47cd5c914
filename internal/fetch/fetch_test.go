package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/talent-sourcing/internal/stealth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := NewClient(stealth.NewSeeded(1), 0, 0).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Empty(t, result.Challenge)
}

func TestGet_InvalidURL(t *testing.T) {
	_, err := NewClient(stealth.NewSeeded(1), 0, 0).Get(context.Background(), "not-a-valid-url")
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	result, err := NewClient(stealth.NewSeeded(1), 0, 0).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusTooManyRequests, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.Status)
	assert.Contains(t, err.Error(), "429")
}

func TestGet_DetectsChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="g-recaptcha"></div>Our systems have detected unusual traffic</body></html>`))
	}))
	defer server.Close()

	result, err := NewClient(stealth.NewSeeded(1), 0, 0).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Challenge)
}

func TestClient_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	c := NewClient(stealth.NewSeeded(1), time.Second, 0)
	_, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, stealth.UserAgents(), gotUA)
	assert.Contains(t, gotLang, "zh-TW")
}

func TestClient_PacesPerHost(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(stealth.NewSeeded(1), time.Second, 50*time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), server.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClient_CancelledWhilePacing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(stealth.NewSeeded(1), time.Second, time.Hour)
	_, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, server.URL)
	require.Error(t, err)
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Jane Chen</h1>
				<p>Senior Backend Engineer at Shopee</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Chen")
	assert.Contains(t, text, "Senior Backend Engineer")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div>Some content here.</div></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", text)
}

func TestExtractMainText_PlatformSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="global-nav">Messaging</div>
			<section class="pv-top-card">
				<h1>Jane Chen</h1>
				<div>Open to work</div>
			</section>
			<main>Feed</main>
		</body>
	</html>`

	text, err := ExtractMainText(html, PlatformContentSelectors(PlatformLinkedIn), PlatformNoiseSelectors(PlatformLinkedIn)...)
	require.NoError(t, err)
	assert.Equal(t, "Jane Chen\nOpen to work", text)
}
