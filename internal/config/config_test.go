package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load consults so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(key)}, bareEnv[key]...)
		for _, name := range names {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	clearEnv(t)
	content := `
api_base_url: https://records.example.com
actor: sourcing-bot
pages: 2
sample_size: 5
fetch_pacing: 1500ms
job_ids: ["3", "11"]
use_browser: true
`
	tmpFile := filepath.Join(t.TempDir(), "sourcing.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://records.example.com", cfg.APIBaseURL)
	assert.Equal(t, "sourcing-bot", cfg.Actor)
	assert.Equal(t, 2, cfg.Pages)
	assert.Equal(t, 5, cfg.SampleSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchPacing)
	assert.Equal(t, []string{"3", "11"}, cfg.JobIDs)
	assert.True(t, cfg.UseBrowser)

	// Unset values come from Defaults
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "sourcing.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"pages": 1, "actor": "from-file"}`), 0644))

	t.Setenv("SOURCING_PAGES", "3")
	t.Setenv("SOURCING_DRY_RUN", "true")

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Pages)
	assert.Equal(t, "from-file", cfg.Actor)
	assert.True(t, cfg.DryRun)
}

func TestLoad_BareEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("BRAVE_API_KEY", "brave-test")
	t.Setenv("API_BASE_URL", "http://records:3001")
	t.Setenv("SOURCING_JOB_IDS", "7,9")
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, "brave-test", cfg.BraveKey)
	assert.Equal(t, "http://records:3001", cfg.APIBaseURL)
	assert.Equal(t, []string{"7", "9"}, cfg.JobIDs)
	assert.Equal(t, "/opt/chrome/chrome", cfg.ChromePath)
}

func TestLoad_PrefixedWinsOverBare(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "bare")
	t.Setenv("SOURCING_GITHUB_TOKEN", "prefixed")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.GitHubToken)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Defaults()},
		{name: "negative pages", cfg: Config{Pages: -1}, wantErr: "Pages"},
		{name: "too many workers", cfg: Config{Workers: 64}, wantErr: "Workers"},
		{name: "bad log format", cfg: Config{LogFormat: "xml"}, wantErr: "LogFormat"},
		{name: "bad base url", cfg: Config{APIBaseURL: "not a url"}, wantErr: "APIBaseURL"},
		{name: "cse without key", cfg: Config{GoogleCSEID: "cx"}, wantErr: "google_api_key"},
		{name: "cse with key", cfg: Config{GoogleCSEID: "cx", GoogleAPIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{Actor: "custom", Pages: 3}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, "custom", merged.Actor)
	assert.Equal(t, 3, merged.Pages)

	// Default values should fill in empty fields
	assert.Equal(t, "http://localhost:3001", merged.APIBaseURL)
	assert.Equal(t, 4, merged.Workers)
	assert.Equal(t, 1.0, merged.APIRate)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Actor: "test"}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, "test", merged.Actor)
	assert.Empty(t, merged.APIBaseURL)
}

func TestSearchPages(t *testing.T) {
	for pages, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 3, 9: 3} {
		cfg := Config{Pages: pages}
		assert.Equal(t, want, cfg.SearchPages(), "pages=%d", pages)
	}
}
