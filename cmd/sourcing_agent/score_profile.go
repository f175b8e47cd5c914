package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/talent-sourcing/internal/observability"
	"github.com/jonathan/talent-sourcing/internal/pipeline"
	"github.com/jonathan/talent-sourcing/internal/ranking"
	"github.com/jonathan/talent-sourcing/internal/schemas"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var scoreProfileCmd = &cobra.Command{
	Use:   "score-profile",
	Short: "Score candidate profiles against a role offline",
	Long: `Deterministically scores a CandidateProfile JSON against a RoleRequirement JSON and writes the match result, without contacting the record store.

When the profile file holds a JSON array, every profile is scored, ranked by overall score and written as an array of match results.`,
	RunE: runScoreProfile,
}

var (
	scoreProfilePath string
	scoreRolePath    string
	scoreOutput      string
	scoreAt          string
	scoreTop         int
)

func init() {
	scoreProfileCmd.Flags().StringVarP(&scoreProfilePath, "profile", "p", "", "Path to input CandidateProfile JSON file, object or array (required)")
	scoreProfileCmd.Flags().StringVarP(&scoreRolePath, "role", "r", "", "Path to input RoleRequirement JSON file (required)")
	scoreProfileCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output match result JSON file (prints a summary when set, JSON to stdout otherwise)")
	scoreProfileCmd.Flags().StringVar(&scoreAt, "at", "", "Evaluation time in RFC3339 (defaults to now)")
	scoreProfileCmd.Flags().IntVar(&scoreTop, "top", 0, "Keep only the N best candidates of a batch (0 keeps all)")

	if err := scoreProfileCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}
	if err := scoreProfileCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreProfileCmd)
}

// scoreInputs is what score-profile reads from disk.
type scoreInputs struct {
	Profiles []types.CandidateProfile
	Role     types.RoleRequirement
	// Batch is set when the profile file was an array.
	Batch bool
}

func runScoreProfile(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	if scoreAt != "" {
		t, err := time.Parse(time.RFC3339, scoreAt)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
		now = t
	}

	in, err := loadScoreInputs(scoreProfilePath, scoreRolePath)
	if err != nil {
		return err
	}
	engine := ranking.NewEngine()
	if !in.Batch {
		return scoreSingle(cmd, engine, in.Profiles[0], in.Role, now)
	}

	top := scoreTop
	if top <= 0 {
		top = -1
	}
	ranked := ranking.TopN(ranking.Rank(engine, in.Profiles, in.Role, now), top)
	artifacts := make([]types.Artifact, 0, len(ranked))
	for _, rc := range ranked {
		artifacts = append(artifacts, scoreArtifact(cmd, engine, rc.Profile, in.Role, now))
	}

	if scoreOutput == "" {
		return writeJSON(cmd, artifacts)
	}
	if err := writeOutputFile(scoreOutput, artifacts); err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRanked(ranked)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully scored %d candidates to %s\n", len(artifacts), scoreOutput)
	return nil
}

func scoreSingle(cmd *cobra.Command, engine *ranking.Engine, profile types.CandidateProfile, role types.RoleRequirement, now time.Time) error {
	artifact := scoreArtifact(cmd, engine, profile, role, now)
	if scoreOutput == "" {
		return writeJSON(cmd, artifact)
	}
	if err := writeOutputFile(scoreOutput, artifact); err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintArtifact(profile.DisplayName(), artifact)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully scored %s to %s\n", profile.DisplayName(), scoreOutput)
	return nil
}

func scoreArtifact(cmd *cobra.Command, engine *ranking.Engine, profile types.CandidateProfile, role types.RoleRequirement, now time.Time) types.Artifact {
	artifact := pipeline.ScoreProfile(engine, profile, role, now)
	if err := schemas.Validate(schemas.AIMatchResult, artifact); err != nil {
		// Output validation is a safety check, not a requirement
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Output validation failed for %s: %v\n", profile.DisplayName(), err)
	}
	return artifact
}

func writeOutputFile(path string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match result to JSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write match result to %s: %w", path, err)
	}
	return nil
}

// loadScoreInputs reads the profile and role files and checks both against
// their schemas before decoding.
func loadScoreInputs(profilePath, rolePath string) (scoreInputs, error) {
	var in scoreInputs

	profiles, batch, err := readProfiles(profilePath)
	if err != nil {
		return in, fmt.Errorf("failed to load profile: %w", err)
	}
	in.Profiles, in.Batch = profiles, batch

	if err := readJSONFile(rolePath, &in.Role); err != nil {
		return in, fmt.Errorf("failed to load role: %w", err)
	}
	if err := schemas.ValidateFile(schemas.RoleRequirement, rolePath); err != nil {
		return in, fmt.Errorf("invalid role: %w", err)
	}
	if err := in.Role.Validate(); err != nil {
		return in, fmt.Errorf("invalid role: %w", err)
	}
	return in, nil
}

// readProfiles decodes a single profile object or an array of them.
func readProfiles(path string) ([]types.CandidateProfile, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(content) {
		return nil, false, fmt.Errorf("failed to unmarshal %s: malformed JSON", path)
	}

	doc := gjson.ParseBytes(content)
	if !doc.IsArray() {
		if err := schemas.ValidateFile(schemas.CandidateProfile, path); err != nil {
			return nil, false, err
		}
		var p types.CandidateProfile
		if err := json.Unmarshal(content, &p); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
		return []types.CandidateProfile{p}, false, nil
	}

	var errs []error
	doc.ForEach(func(key, value gjson.Result) bool {
		if err := schemas.ValidateBytes(schemas.CandidateProfile, []byte(value.Raw)); err != nil {
			errs = append(errs, fmt.Errorf("profile %d: %w", key.Int(), err))
		}
		return true
	})
	if err := errors.Join(errs...); err != nil {
		return nil, true, err
	}

	var profiles []types.CandidateProfile
	if err := json.Unmarshal(content, &profiles); err != nil {
		return nil, true, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	if len(profiles) == 0 {
		return nil, true, fmt.Errorf("%s holds no profiles", path)
	}
	return profiles, true, nil
}

func readJSONFile(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}
