package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <profile-url>...",
	Short: "Read profile pages and print the extracted profiles",
	Long: `Visits each profile URL with the profile reader and prints what it could extract as JSON.
Professional-network pages need --use-browser; code-host pages are read over HTTP.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	profiles := profilesFromURLs(args)
	enriched, stats := a.reader().EnrichAll(ctx, profiles)
	a.logger.Info("enrich finished",
		zap.Int("read", stats.Read),
		zap.Int("login_walls", stats.LoginWalls),
		zap.Int("failed", stats.Failed))

	return writeJSON(cmd, enriched)
}

// profilesFromURLs turns bare URLs into profile stubs the reader can visit.
func profilesFromURLs(urls []string) []types.CandidateProfile {
	out := make([]types.CandidateProfile, 0, len(urls))
	for _, u := range urls {
		out = append(out, types.CandidateProfile{ProfileURL: u})
	}
	return out
}
