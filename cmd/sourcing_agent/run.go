package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonathan/talent-sourcing/internal/observability"
	"github.com/jonathan/talent-sourcing/internal/pipeline"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/spf13/cobra"
)

var runJSON bool

var runCommand = &cobra.Command{
	Use:   "run [job-id...]",
	Short: "Scrape then score candidates for each role",
	Long: `Runs both phases per role: search the code host and the web-search chain, import new
candidates with the pending-score status, then score and route every pending candidate.

Without job ids the record store's target job list is used.`,
	RunE: modeRunner(pipeline.ModeRun),
}

var scrapeCommand = &cobra.Command{
	Use:   "scrape [job-id...]",
	Short: "Search and import new candidates without scoring",
	RunE:  modeRunner(pipeline.ModeScrape),
}

var scoreCommand = &cobra.Command{
	Use:   "score [job-id...]",
	Short: "Score and route candidates already imported for each role",
	RunE:  modeRunner(pipeline.ModeScore),
}

func init() {
	for _, c := range []*cobra.Command{runCommand, scrapeCommand, scoreCommand} {
		c.Flags().BoolVar(&runJSON, "json", false, "Print the run report as JSON")
		rootCmd.AddCommand(c)
	}
}

func modeRunner(mode pipeline.Mode) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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

		coordinator, err := a.coordinator(ctx)
		if err != nil {
			return err
		}

		jobIDs := args
		if len(jobIDs) == 0 {
			jobIDs = cfg.JobIDs
		}
		report, runErr := coordinator.Run(ctx, mode, jobIDs)
		if errors.Is(runErr, pipeline.ErrNoRoles) {
			return errors.New("no roles to process: pass job ids or set job_ids in the config")
		}

		if runJSON {
			if err := writeJSON(cmd, newReportView(report)); err != nil {
				return err
			}
		} else {
			printReport(observability.NewPrinter(cmd.OutOrStdout()), report)
		}
		if report.NoCandidates() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no candidates found; every search source came back empty")
		}
		return runErr
	}
}

func printReport(p *observability.Printer, report pipeline.RunReport) {
	var warnings []string
	for _, o := range report.Roles {
		if o.Scrape != nil {
			p.PrintEngines(o.Scrape.Engines)
			warnings = append(warnings, o.Scrape.Warnings...)
		}
	}
	if len(warnings) > 0 {
		p.PrintWarnings(warnings)
	}
	p.PrintRunReport(report)
}

// reportView is the JSON shape of a run report.
type reportView struct {
	RunID  string         `json:"run_id,omitempty"`
	Mode   pipeline.Mode  `json:"mode"`
	DryRun bool           `json:"dry_run"`
	Roles  []roleView     `json:"roles"`
	Totals types.RunStats `json:"totals"`
}

type roleView struct {
	JobID        string                       `json:"job_id"`
	Stats        types.RunStats               `json:"stats"`
	Error        string                       `json:"error,omitempty"`
	Engines      map[string]types.EngineStats `json:"engines,omitempty"`
	Contributors []string                     `json:"contributors,omitempty"`
	Warnings     []string                     `json:"warnings,omitempty"`
	NoCandidates bool                         `json:"no_candidates,omitempty"`
	Candidates   []candidateView              `json:"candidates,omitempty"`
}

type candidateView struct {
	RecordID string  `json:"record_id"`
	Name     string  `json:"name"`
	Overall  float64 `json:"overall_score"`
	Grade    string  `json:"talent_level"`
	Status   string  `json:"status"`
}

func newReportView(r pipeline.RunReport) reportView {
	v := reportView{Mode: r.Mode, DryRun: r.DryRun, Totals: r.Totals, Roles: []roleView{}}
	if r.RunID != uuid.Nil {
		v.RunID = r.RunID.String()
	}
	for _, o := range r.Roles {
		rv := roleView{JobID: o.JobID, Stats: o.Stats}
		if o.Err != nil {
			rv.Error = o.Err.Error()
		}
		if o.Scrape != nil {
			rv.Engines = o.Scrape.Engines
			rv.Contributors = o.Scrape.Contributors
			rv.Warnings = o.Scrape.Warnings
			rv.NoCandidates = o.Scrape.NoCandidates
		}
		if o.Score != nil {
			for _, c := range o.Score.Candidates {
				rv.Candidates = append(rv.Candidates, candidateView{
					RecordID: c.RecordID,
					Name:     c.Breakdown.CandidateName,
					Overall:  c.Artifact.OverallScore,
					Grade:    string(c.Breakdown.Grade),
					Status:   c.Status,
				})
			}
		}
		v.Roles = append(v.Roles, rv)
	}
	return v
}

func writeJSON(cmd *cobra.Command, v any) error {
	return writeJSONTo(cmd.OutOrStdout(), v)
}

func writeJSONTo(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
