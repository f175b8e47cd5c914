package ranking

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// hiringSignalBase is the neutral starting point of the hiring-signal score.
const hiringSignalBase = 45.0

// Ledger keys.
const (
	SignalGap            = "gap"
	SignalOpenToWork     = "open_to_work"
	SignalQuitReason     = "quit_reason"
	SignalContact        = "contact"
	SignalSource         = "source"
	SignalShortTenure    = "short_tenure"
	SignalJobChanges     = "job_changes"
	SignalRecency        = "recency"
	SignalJobSeekingText = "job_seeking_skills"
)

const (
	openToWorkDelta     = 22.0
	positiveQuitDelta   = 14.0
	passiveQuitDelta    = 8.0
	shortTenureDelta    = 8.0
	jobSeekingTextDelta = 10.0
)

// updatedAtLayouts are the timestamp shapes accepted for profile recency.
var updatedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// gapDelta maps recent employment gap months onto a signal delta.
func gapDelta(months int) float64 {
	switch {
	case months <= 0:
		return 0
	case months <= 2:
		return 30
	case months <= 4:
		return 22
	case months <= 6:
		return 15
	case months <= 12:
		return -5
	default:
		return -12
	}
}

func entry(key, label string, delta float64) types.SignalEntry {
	return types.SignalEntry{Key: key, Label: label, Delta: delta, Triggered: delta != 0}
}

func gapSignal(p types.CandidateProfile) types.SignalEntry {
	if p.RecentGapMonths <= 0 {
		return types.SignalEntry{Key: SignalGap, Label: "no recent employment gap"}
	}
	return entry(SignalGap, fmt.Sprintf("recent employment gap of %d month(s)", p.RecentGapMonths), gapDelta(p.RecentGapMonths))
}

func openToWorkSignal(p types.CandidateProfile) types.SignalEntry {
	text := strings.Join([]string{p.Notes, p.QuitReason, strings.Join(p.Skills, " ")}, " ")
	if containsAny(text, openToWorkKeywords) {
		return entry(SignalOpenToWork, "open-to-work keywords present", openToWorkDelta)
	}
	return types.SignalEntry{Key: SignalOpenToWork, Label: "no open-to-work keywords"}
}

func quitReasonSignal(p types.CandidateProfile) types.SignalEntry {
	reason := strings.TrimSpace(p.QuitReason)
	switch {
	case reason == "":
		return types.SignalEntry{Key: SignalQuitReason, Label: "quit reason unknown"}
	case containsAny(reason, positiveQuitKeywords):
		return entry(SignalQuitReason, "growth-oriented quit reason", positiveQuitDelta)
	case containsAny(reason, passiveQuitKeywords):
		return entry(SignalQuitReason, "circumstantial quit reason", passiveQuitDelta)
	default:
		return types.SignalEntry{Key: SignalQuitReason, Label: "quit reason without signal"}
	}
}

func contactSignal(p types.CandidateProfile) types.SignalEntry {
	var channels []string
	delta := 0.0
	if strings.TrimSpace(p.Email) != "" {
		delta += 6
		channels = append(channels, "email")
	}
	if strings.TrimSpace(p.Phone) != "" {
		delta += 6
		channels = append(channels, "phone")
	}
	if strings.TrimSpace(p.LinkedInURL) != "" {
		delta += 3
		channels = append(channels, "linkedin")
	}
	if strings.TrimSpace(p.GitHubURL) != "" {
		delta += 2
		channels = append(channels, "github")
	}
	if len(channels) == 0 {
		return types.SignalEntry{Key: SignalContact, Label: "no contact channels"}
	}
	return entry(SignalContact, "contact channels: "+strings.Join(channels, ", "), delta)
}

func sourceSignal(p types.CandidateProfile) types.SignalEntry {
	bonus, ok := sourceBonus[p.Source]
	if !ok || bonus == 0 {
		label := "no source bonus"
		if p.Source != "" {
			label = fmt.Sprintf("source %s carries no bonus", p.Source)
		}
		return types.SignalEntry{Key: SignalSource, Label: label}
	}
	return entry(SignalSource, fmt.Sprintf("acquired via %s", p.Source), bonus)
}

func shortTenureSignal(p types.CandidateProfile) types.SignalEntry {
	if p.RecentTenureMonths > 0 && p.RecentTenureMonths < 12 {
		return entry(SignalShortTenure, fmt.Sprintf("short current tenure (%d months)", p.RecentTenureMonths), shortTenureDelta)
	}
	return types.SignalEntry{Key: SignalShortTenure, Label: "current tenure not short"}
}

func jobChangeSignal(p types.CandidateProfile) types.SignalEntry {
	switch {
	case p.JobChanges >= 4:
		return entry(SignalJobChanges, fmt.Sprintf("%d job changes", p.JobChanges), 7)
	case p.JobChanges >= 3:
		return entry(SignalJobChanges, fmt.Sprintf("%d job changes", p.JobChanges), 4)
	default:
		return types.SignalEntry{Key: SignalJobChanges, Label: "few job changes"}
	}
}

// parseUpdatedAt accepts the timestamp layouts seen in profile records.
func parseUpdatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range updatedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func recencySignal(p types.CandidateProfile, now time.Time) types.SignalEntry {
	updated, ok := parseUpdatedAt(p.UpdatedAt)
	if !ok || now.IsZero() {
		return types.SignalEntry{Key: SignalRecency, Label: "profile update time unknown"}
	}
	days := now.Sub(updated).Hours() / 24
	if days < 0 {
		days = 0
	}
	switch {
	case days <= 7:
		return entry(SignalRecency, "profile updated within 7 days", 12)
	case days <= 14:
		return entry(SignalRecency, "profile updated within 14 days", 8)
	case days <= 30:
		return entry(SignalRecency, "profile updated within 30 days", 5)
	default:
		return types.SignalEntry{Key: SignalRecency, Label: "profile not recently updated"}
	}
}

func jobSeekingTextSignal(p types.CandidateProfile) types.SignalEntry {
	if containsAny(strings.Join(p.Skills, " "), jobSeekingSkillKeywords) {
		return entry(SignalJobSeekingText, "job-seeking note in skills", jobSeekingTextDelta)
	}
	return types.SignalEntry{Key: SignalJobSeekingText, Label: "no job-seeking note in skills"}
}

// computeHiringSignal returns the hiring-signal score and its full ledger.
// Every signal appears in the ledger, triggered or not.
func computeHiringSignal(p types.CandidateProfile, now time.Time) (float64, []types.SignalEntry) {
	ledger := []types.SignalEntry{
		gapSignal(p),
		openToWorkSignal(p),
		quitReasonSignal(p),
		contactSignal(p),
		sourceSignal(p),
		shortTenureSignal(p),
		jobChangeSignal(p),
		recencySignal(p, now),
		jobSeekingTextSignal(p),
	}

	score := hiringSignalBase
	for _, e := range ledger {
		score += e.Delta
	}
	return clamp(score, 0, 100), ledger
}

// strongestIntentSignal returns the highest positive triggered entry among
// gap, open-to-work and a growth-oriented quit reason.
func strongestIntentSignal(ledger []types.SignalEntry) (types.SignalEntry, bool) {
	var best types.SignalEntry
	found := false
	for _, e := range ledger {
		if !e.Triggered || e.Delta <= 0 {
			continue
		}
		switch e.Key {
		case SignalGap, SignalOpenToWork:
		case SignalQuitReason:
			if e.Delta != positiveQuitDelta {
				continue
			}
		default:
			continue
		}
		if !found || e.Delta > best.Delta {
			best = e
			found = true
		}
	}
	return best, found
}
