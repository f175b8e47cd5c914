package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-sourcing/internal/db"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show recorded pipeline runs",
	Long: `Lists recent runs from the run ledger database, or the per-role statistics of one run when a run ID is given.
Requires DATABASE_URL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var (
	runsLimit int
	runsJSON  bool
)

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(runsCmd)
}

// runHistory reads the run ledger.
type runHistory interface {
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRoles(ctx context.Context, runID uuid.UUID) ([]db.RoleResult, error)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("runs requires DATABASE_URL to be set")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := openLedger(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open run ledger: %w", err)
	}
	defer database.Close()

	if len(args) == 0 {
		return listRuns(ctx, cmd.OutOrStdout(), database, runsLimit, runsJSON)
	}
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}
	return showRun(ctx, cmd.OutOrStdout(), database, runID, runsJSON)
}

func listRuns(ctx context.Context, w io.Writer, h runHistory, limit int, asJSON bool) error {
	runs, err := h.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSONTo(w, runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODE\tSTATUS\tSTARTED\tDURATION")
	for _, r := range runs {
		mode := r.Mode
		if r.DryRun {
			mode += " (dry)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, mode, r.Status, r.StartedAt.Format(time.DateTime), runDuration(r))
	}
	return tw.Flush()
}

func showRun(ctx context.Context, w io.Writer, h runHistory, runID uuid.UUID, asJSON bool) error {
	run, err := h.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	roles, err := h.ListRoles(ctx, runID)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSONTo(w, struct {
			Run   *db.Run         `json:"run"`
			Roles []db.RoleResult `json:"roles"`
		}{run, roles})
	}

	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  mode: %s  dry run: %t  status: %s  duration: %s\n", run.Mode, run.DryRun, run.Status, runDuration(*run))
	if run.ErrorMessage != nil {
		fmt.Fprintf(w, "  error: %s\n", *run.ErrorMessage)
	}
	if len(roles) == 0 {
		_, err := fmt.Fprintln(w, "  no roles recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tROLE\tFOUND\tIMPORTED\tSCORED\tRECOMMENDED\tBACKUP\tERRORS\tENGINES")
	for _, r := range roles {
		s := r.Stats
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.JobID, s.Role, s.Found, s.Imported, s.Scored, s.Recommended, s.Backup, s.Errors, engineNames(r))
	}
	return tw.Flush()
}

func runDuration(r db.Run) string {
	if r.CompletedAt == nil {
		return "-"
	}
	return r.CompletedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func engineNames(r db.RoleResult) string {
	if len(r.EngineStats) == 0 {
		return "-"
	}
	names := make([]string, 0, len(r.EngineStats))
	for name := range r.EngineStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
