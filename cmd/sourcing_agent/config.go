package main

import (
	"fmt"

	"github.com/jonathan/talent-sourcing/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadConfig reads the config file and environment, then applies the flags
// that were explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides copies every changed flag onto cfg. Flags left at their
// defaults never override file or environment values.
func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("debug") {
		cfg.Debug = rootDebug
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = rootLogFormat
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = rootDryRun
	}
	if flags.Changed("pages") {
		cfg.Pages = rootPages
	}
	if flags.Changed("no-narration") {
		cfg.NoNarration = rootNoNarration
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = rootUseBrowser
	}
	if flags.Changed("read-profiles") {
		cfg.ReadProfiles = rootReadProfiles
	}
	if flags.Changed("seed") {
		cfg.Seed = rootSeed
	}
	if flags.Changed("api-base-url") {
		cfg.APIBaseURL = rootAPIBaseURL
	}
}
