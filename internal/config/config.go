// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "SOURCING"

// Config represents the CLI configuration. Values come from an optional
// YAML/JSON file and the environment; CLI flags override both.
type Config struct {
	// Credentials
	GitHubToken  string `mapstructure:"github_token"`
	BraveKey     string `mapstructure:"brave_key"`
	GoogleAPIKey string `mapstructure:"google_api_key"`
	GoogleCSEID  string `mapstructure:"google_cse_id"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// Collaborators
	APIBaseURL  string `mapstructure:"api_base_url" validate:"omitempty,url"`
	DatabaseURL string `mapstructure:"database_url" validate:"omitempty,url"`
	Actor       string `mapstructure:"actor"`
	GeminiModel string `mapstructure:"gemini_model"`

	// Search
	// Pages is result pages per engine, clamped to 1-3 at use.
	Pages int `mapstructure:"pages" validate:"gte=0,lte=10"`
	// SampleSize down-samples each code-host page; 0 keeps all.
	SampleSize int `mapstructure:"sample_size" validate:"gte=0"`
	// Workers bounds concurrent code-host profile fetches.
	Workers int `mapstructure:"workers" validate:"gte=0,lte=16"`
	// APIRate is licensed search API requests per second.
	APIRate float64 `mapstructure:"api_rate" validate:"gte=0"`
	// FetchPacing is the minimum spacing between requests to one host.
	FetchPacing time.Duration `mapstructure:"fetch_pacing" validate:"gte=0"`
	// Seed seeds the stealth policy; 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`
	// JobIDs are processed when none are given on the command line.
	JobIDs    []string `mapstructure:"job_ids"`
	LogFormat string   `mapstructure:"log_format" validate:"omitempty,oneof=json console"`
	// ChromePath overrides the Chrome binary used by the browser stages.
	ChromePath string `mapstructure:"chrome_path"`

	// Behavior
	UseBrowser   bool `mapstructure:"use_browser"`   // Enable the rendered-browser search stage
	ReadProfiles bool `mapstructure:"read_profiles"` // Visit profile pages to enrich new candidates
	NoNarration  bool `mapstructure:"no_narration"`  // Always use the template conclusion
	DryRun       bool `mapstructure:"dry_run"`       // Never write to the record store
	Debug        bool `mapstructure:"debug"`
}

// keys lists every configuration key so the environment is consulted even
// when a key is absent from the config file.
var keys = []string{
	"github_token", "brave_key", "google_api_key", "google_cse_id", "gemini_api_key",
	"api_base_url", "database_url", "actor", "gemini_model",
	"pages", "sample_size", "workers", "api_rate", "fetch_pacing", "seed", "job_ids", "log_format",
	"chrome_path",
	"use_browser", "read_profiles", "no_narration", "dry_run", "debug",
}

// bareEnv maps keys onto the unprefixed variable names operators already use.
var bareEnv = map[string][]string{
	"github_token":   {"GITHUB_TOKEN"},
	"brave_key":      {"BRAVE_KEY", "BRAVE_API_KEY"},
	"google_api_key": {"GOOGLE_API_KEY"},
	"google_cse_id":  {"GOOGLE_CSE_ID"},
	"gemini_api_key": {"GEMINI_API_KEY"},
	"api_base_url":   {"API_BASE_URL"},
	"database_url":   {"DATABASE_URL"},
	"chrome_path":    {"CHROME_PATH"},
}

// Defaults returns the built-in defaults.
func Defaults() Config {
	return Config{
		APIBaseURL: "http://localhost:3001",
		Actor:      "AIBot-pipeline",
		Pages:      1,
		Workers:    4,
		APIRate:    1,
		LogFormat:  "console",
	}
}

// Load reads configuration from path (optional) and the environment, then
// fills unset values from Defaults. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(key)}, bareEnv[key]...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	merged := cfg.MergeWithDefaults(Defaults())
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.GoogleCSEID != "" && c.GoogleAPIKey == "" {
		return fmt.Errorf("config error: 'google_cse_id' requires 'google_api_key'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIBaseURL == "" {
		result.APIBaseURL = defaults.APIBaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Actor == "" {
		result.Actor = defaults.Actor
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if len(result.JobIDs) == 0 {
		result.JobIDs = append([]string(nil), defaults.JobIDs...)
	}

	// Numeric fields: use default if zero
	if result.Pages == 0 {
		result.Pages = defaults.Pages
	}
	if result.SampleSize == 0 {
		result.SampleSize = defaults.SampleSize
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.APIRate == 0 {
		result.APIRate = defaults.APIRate
	}
	if result.FetchPacing == 0 {
		result.FetchPacing = defaults.FetchPacing
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// SearchPages clamps the configured page count to the supported 1-3 range.
func (c *Config) SearchPages() int {
	switch {
	case c.Pages < 1:
		return 1
	case c.Pages > 3:
		return 3
	default:
		return c.Pages
	}
}
