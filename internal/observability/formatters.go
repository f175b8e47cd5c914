// Package observability provides formatted run summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/talent-sourcing/internal/pipeline"
	"github.com/jonathan/talent-sourcing/internal/query"
	"github.com/jonathan/talent-sourcing/internal/ranking"
	"github.com/jonathan/talent-sourcing/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for run summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// shorten truncates s to n runes, marking the cut with "...".
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintRole outputs the requirements of one role.
func (p *Printer) PrintRole(role types.RoleRequirement) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Job:      %s\n", role.JobID)
	fmt.Fprintf(&sb, "Title:    %s\n", role.Title)
	if role.Company != "" {
		fmt.Fprintf(&sb, "Company:  %s\n", role.Company)
	}
	if role.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", role.Location)
	}
	fmt.Fprintf(&sb, "Min years: %d\n", role.MinYears)
	if len(role.RequiredSkills) > 0 {
		sb.WriteString("\nRequired:\n")
		for _, s := range role.RequiredSkills {
			fmt.Fprintf(&sb, "  • %s\n", s)
		}
	}
	p.printBox("ROLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQueries outputs the generated search queries.
func (p *Printer) PrintQueries(q query.Queries) {
	var sb strings.Builder
	sb.WriteString("Web:\n")
	fmt.Fprintf(&sb, "  %s\n", q.Web)
	if len(q.CodeHost) > 0 {
		sb.WriteString("\nCode host:\n")
		for _, s := range q.CodeHost {
			fmt.Fprintf(&sb, "  • %s\n", s)
		}
	}
	p.printBox("SEARCH QUERIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEngines outputs per-engine counters, sorted by engine name.
func (p *Printer) PrintEngines(engines map[string]types.EngineStats) {
	if len(engines) == 0 {
		return
	}
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %9s %9s %7s\n", "engine", "attempted", "returned", "failed")
	for _, name := range names {
		st := engines[name]
		fmt.Fprintf(&sb, "%-16s %9d %9d %7d\n", name, st.Attempted, st.Returned, st.Failed)
	}
	p.printBox("SEARCH ENGINES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanked outputs the top ranked candidates with grade and routing.
func (p *Printer) PrintRanked(ranked []ranking.RankedCandidate) {
	if len(ranked) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidates ranked: %d\n\n", len(ranked))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		b := ranked[i].Breakdown
		fmt.Fprintf(&sb, "#%d  %s\n", i+1, b.CandidateName)
		fmt.Fprintf(&sb, "    Score: %.1f (%s) → %s\n", b.Overall, b.Grade, ranking.Route(b.Overall))
		if len(b.MatchedSkills) > 0 {
			fmt.Fprintf(&sb, "    Skills: %s\n", strings.Join(b.MatchedSkills, ", "))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(ranked) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n... and %d more candidates", len(ranked)-maxItemsToShow)
	}
	p.printBox("TOP CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintArtifact outputs one scored artifact with its signal ledger.
func (p *Printer) PrintArtifact(name string, a types.Artifact) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate: %s\n", name)
	fmt.Fprintf(&sb, "Overall:   %.1f (%s)\n", a.OverallScore, a.TalentLevel)
	if a.Recommendation != "" {
		fmt.Fprintf(&sb, "Verdict:   %s\n", a.Recommendation)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "skill %.0f  exp %.0f  loc %.0f\n", a.Scores.SkillMatch, a.Scores.ExperienceFit, a.Scores.LocationFit)
	fmt.Fprintf(&sb, "signal %.0f  company %.0f  industry %.0f\n",
		a.Scores.HiringSignal, a.Scores.CompanyLevel, a.Scores.IndustryExperience)

	keys := make([]string, 0, len(a.HiringSignalBreakdown))
	for k, e := range a.HiringSignalBreakdown {
		if e.Triggered {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		sb.WriteString("\nSignals:\n")
		for _, k := range keys {
			e := a.HiringSignalBreakdown[k]
			fmt.Fprintf(&sb, "  %+.1f %s\n", e.Delta, e.Label)
		}
	}
	if a.Conclusion != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Conclusion)
	}
	p.printBox("MATCH RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunReport outputs per-role counts and totals for a finished run.
func (p *Printer) PrintRunReport(report pipeline.RunReport) {
	var sb strings.Builder
	if report.DryRun {
		sb.WriteString("DRY RUN: nothing was written\n\n")
	}
	for _, o := range report.Roles {
		title := o.Stats.Role
		if title == "" {
			title = o.JobID
		}
		fmt.Fprintf(&sb, "[%s] %s\n", o.JobID, title)
		if o.Err != nil {
			fmt.Fprintf(&sb, "  ⚠ %v\n", o.Err)
		}
		writeStats(&sb, o.Stats)
		if o.Scrape != nil && o.Scrape.NoCandidates {
			sb.WriteString("  no candidates found\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Total\n")
	writeStats(&sb, report.Totals)
	p.printBox(fmt.Sprintf("RUN SUMMARY (%s)", report.Mode), strings.TrimSuffix(sb.String(), "\n"))
}

func writeStats(sb *strings.Builder, s types.RunStats) {
	fmt.Fprintf(sb, "  found %d  skipped %d  imported %d  flagged %d\n", s.Found, s.Skipped, s.Imported, s.Flagged)
	fmt.Fprintf(sb, "  scored %d  recommended %d  backup %d  errors %d\n", s.Scored, s.Recommended, s.Backup, s.Errors)
}

// PrintWarnings outputs operator-facing warnings such as quota remediation.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO WARNINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, w := range warnings {
		fmt.Fprintf(&sb, "⚠ %s", w)
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("WARNINGS", sb.String())
}
