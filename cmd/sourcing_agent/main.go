// Package main provides the sourcing_agent CLI: scrape candidates for open
// roles, score and route them, and a few offline helpers.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sourcing_agent",
	Short: "Talent sourcing and scoring pipeline",
	Long: `sourcing_agent finds candidate profiles for open roles on a code host and through web search,
imports the new ones into the record store and scores them against the role requirements.`,
	SilenceUsage: true,
}

var (
	rootConfigPath   string
	rootDebug        bool
	rootLogFormat    string
	rootDryRun       bool
	rootPages        int
	rootNoNarration  bool
	rootUseBrowser   bool
	rootReadProfiles bool
	rootSeed         int64
	rootAPIBaseURL   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Path to a YAML or JSON config file (values can be overridden by other flags)")
	flags.BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	flags.StringVar(&rootLogFormat, "log-format", "", "Log encoding: console or json")
	flags.BoolVar(&rootDryRun, "dry-run", false, "Search and score without writing to the record store")
	flags.IntVar(&rootPages, "pages", 0, "Result pages per search engine (1-3)")
	flags.BoolVar(&rootNoNarration, "no-narration", false, "Always use the template conclusion instead of the language model")
	flags.BoolVar(&rootUseBrowser, "use-browser", false, "Enable the headless-browser search stage (requires Chrome)")
	flags.BoolVar(&rootReadProfiles, "read-profiles", false, "Visit profile pages to enrich new candidates before import")
	flags.Int64Var(&rootSeed, "seed", 0, "Seed for randomized delays and identities (0 uses the clock)")
	flags.StringVar(&rootAPIBaseURL, "api-base-url", "", "Record store base URL (defaults to API_BASE_URL)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
