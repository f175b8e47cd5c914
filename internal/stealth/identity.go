package stealth

// userAgents is the pool of desktop browser identities rotated across request batches.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// UserAgents returns a copy of the identity pool.
func UserAgents() []string {
	return append([]string(nil), userAgents...)
}

// UserAgent picks a client identity string.
func (p *Policy) UserAgent() string {
	return userAgents[p.Intn(len(userAgents))]
}

// Viewport is a browser window size.
type Viewport struct {
	Width  int
	Height int
}

// Viewport picks a window size in 1280-1440 x 700-900.
func (p *Policy) Viewport() Viewport {
	return Viewport{Width: p.Between(1280, 1440), Height: p.Between(700, 900)}
}

// Locale is the browser locale presented to sites.
func (p *Policy) Locale() string { return "zh-TW" }

// Timezone is the browser timezone presented to sites.
func (p *Policy) Timezone() string { return "Asia/Taipei" }

// AcceptLanguage is the Accept-Language header matching Locale.
func (p *Policy) AcceptLanguage() string { return "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7" }

// Headers returns a browser-like header set for one request batch.
func (p *Policy) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      p.UserAgent(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": p.AcceptLanguage(),
	}
}

// Script hides automation-detectable runtime properties. It is evaluated before every navigation.
const Script = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['zh-TW', 'zh', 'en-US', 'en'] });
window.chrome = { runtime: {} };
const originalQuery = window.navigator.permissions && window.navigator.permissions.query;
if (originalQuery) {
  window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications'
      ? Promise.resolve({ state: Notification.permission })
      : originalQuery(parameters)
  );
}
`
