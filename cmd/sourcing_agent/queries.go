package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/talent-sourcing/internal/observability"
	"github.com/jonathan/talent-sourcing/internal/query"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/spf13/cobra"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the search queries built for a role",
	Long: `Builds the web-search and code-host queries for a role without running them.
The role comes from --skills/--location, or from the record store with --job.`,
	RunE: runQueries,
}

var (
	queriesSkills   []string
	queriesLocation string
	queriesJob      string
	queriesJSON     bool
)

func init() {
	queriesCmd.Flags().StringSliceVarP(&queriesSkills, "skills", "s", nil, "Required skills in priority order (comma separated)")
	queriesCmd.Flags().StringVarP(&queriesLocation, "location", "l", "", "Role location")
	queriesCmd.Flags().StringVarP(&queriesJob, "job", "j", "", "Load the role from the record store by job id")
	queriesCmd.Flags().BoolVar(&queriesJSON, "json", false, "Print the queries as JSON")

	rootCmd.AddCommand(queriesCmd)
}

// queriesView is the JSON shape of the built queries.
type queriesView struct {
	Web      string   `json:"web"`
	CodeHost []string `json:"code_host"`
}

func runQueries(cmd *cobra.Command, _ []string) error {
	role := types.RoleRequirement{RequiredSkills: queriesSkills, Location: queriesLocation}
	if queriesJob != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		role, err = a.store.GetRole(context.Background(), queriesJob)
		if err != nil {
			return fmt.Errorf("failed to load job %s: %w", queriesJob, err)
		}
	}
	if len(role.RequiredSkills) == 0 && role.Location == "" {
		return errors.New("either --skills, --location or --job must be provided")
	}

	q := query.ForRole(role)
	if queriesJSON {
		return writeJSON(cmd, queriesView{Web: q.Web, CodeHost: q.CodeHost})
	}
	p := observability.NewPrinter(cmd.OutOrStdout())
	if role.Title != "" {
		p.PrintRole(role)
	}
	p.PrintQueries(q)
	return nil
}
