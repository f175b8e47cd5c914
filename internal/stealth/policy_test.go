package stealth

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_SeededIsReproducible(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.UserAgent(), b.UserAgent())
		assert.Equal(t, a.Delay(DelayPage), b.Delay(DelayPage))
		assert.Equal(t, a.Viewport(), b.Viewport())
	}
	assert.Equal(t, a.Sample(30, 10), b.Sample(30, 10))
}

func TestPolicy_DelayWithinRange(t *testing.T) {
	p := NewSeeded(7)
	for kind, r := range DefaultRanges() {
		for i := 0; i < 50; i++ {
			d := p.Delay(kind)
			assert.GreaterOrEqual(t, d, r.Min, kind)
			assert.LessOrEqual(t, d, r.Max, kind)
		}
	}
	assert.Equal(t, time.Duration(0), p.Delay("missing"))
}

func TestPolicy_DelayIsNotConstant(t *testing.T) {
	p := NewSeeded(3)
	seen := map[time.Duration]bool{}
	for i := 0; i < 10; i++ {
		seen[p.Delay(DelayEngine)] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestPolicy_WithRange(t *testing.T) {
	p := New(rand.New(rand.NewSource(1)), WithRange(DelayPage, Range{Min: time.Millisecond, Max: time.Millisecond}))
	assert.Equal(t, time.Millisecond, p.Delay(DelayPage))
}

func TestPolicy_ViewportBounds(t *testing.T) {
	p := NewSeeded(11)
	for i := 0; i < 50; i++ {
		v := p.Viewport()
		assert.GreaterOrEqual(t, v.Width, 1280)
		assert.LessOrEqual(t, v.Width, 1440)
		assert.GreaterOrEqual(t, v.Height, 700)
		assert.LessOrEqual(t, v.Height, 900)
	}
}

func TestPolicy_UserAgentFromPool(t *testing.T) {
	p := NewSeeded(5)
	pool := UserAgents()
	for i := 0; i < 20; i++ {
		assert.Contains(t, pool, p.UserAgent())
	}
	assert.Contains(t, pool, p.Headers()["User-Agent"])
}

func TestPolicy_Sample(t *testing.T) {
	p := NewSeeded(9)

	picked := p.Sample(30, 5)
	require.Len(t, picked, 5)
	seen := map[int]bool{}
	for i, idx := range picked {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 30)
		assert.False(t, seen[idx])
		seen[idx] = true
		if i > 0 {
			assert.Greater(t, idx, picked[i-1])
		}
	}

	assert.Equal(t, []int{0, 1, 2}, p.Sample(3, 0))
	assert.Equal(t, []int{0, 1, 2}, p.Sample(3, 10))
	assert.Nil(t, p.Sample(0, 3))
}

func TestPolicy_SleepUsesSleeper(t *testing.T) {
	sleeper := &NoopSleeper{}
	p := New(rand.New(rand.NewSource(1)), WithSleeper(sleeper))

	require.NoError(t, p.Sleep(context.Background(), DelayJob))
	require.Len(t, sleeper.Calls, 1)
	assert.GreaterOrEqual(t, sleeper.Calls[0], 30*time.Second)
}

func TestRealSleeper_HonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RealSleeper{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChallengeMarker(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"recaptcha widget", `<div class="g-recaptcha" data-sitekey="x"></div>`, true},
		{"google unusual traffic", `Our systems have detected unusual traffic from your computer network.`, true},
		{"cloudflare", `<title>Attention Required! | Cloudflare</title>`, true},
		{"ddg anomaly", `<div class="anomaly-modal__title">`, true},
		{"normal results", `<a href="https://www.linkedin.com/in/jane">Jane - Engineer</a>`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChallengeMarker(tt.body) != "")
		})
	}
}
