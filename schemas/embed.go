// Package schemas holds the JSON Schemas for the documents the sourcing
// pipeline reads and writes.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	AIMatchResult    = "ai_match_result.schema.json"
	CandidateProfile = "candidate_profile.schema.json"
	RoleRequirement  = "role_requirement.schema.json"
)
