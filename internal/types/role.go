// Package types provides type definitions for structured data used throughout the talent-sourcing system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Industry is a coarse industry tag used for transferability scoring.
type Industry string

const (
	IndustryGaming        Industry = "gaming"
	IndustryFintech       Industry = "fintech"
	IndustryHealthcare    Industry = "healthcare"
	IndustryManufacturing Industry = "manufacturing"
	IndustryInternet      Industry = "internet"
	IndustryLegalTech     Industry = "legal_tech"
	IndustryDevOps        Industry = "devops"
	IndustryUnknown       Industry = "unknown"
)

// ParseIndustry maps a free-text industry tag onto a known Industry, falling back to IndustryUnknown.
func ParseIndustry(s string) Industry {
	switch Industry(s) {
	case IndustryGaming, IndustryFintech, IndustryHealthcare, IndustryManufacturing,
		IndustryInternet, IndustryLegalTech, IndustryDevOps:
		return Industry(s)
	}
	return IndustryUnknown
}

// PrimarySkillCount is the number of leading required skills treated as must-haves.
const PrimarySkillCount = 2

// RoleRequirement describes one open role. It is the immutable input to a search+score cycle.
type RoleRequirement struct {
	JobID            string   `json:"job_id,omitempty"`
	Title            string   `json:"title" validate:"required"`
	Company          string   `json:"company,omitempty"`
	Industry         Industry `json:"industry,omitempty"`
	RequiredSkills   []string `json:"required_skills"`
	NiceToHaveSkills []string `json:"nice_to_have_skills,omitempty"`
	MinYears         int      `json:"min_years" validate:"gte=0,lte=60"`
	Location         string   `json:"location,omitempty"`
}

// Validate validates the RoleRequirement using the validator.
func (r *RoleRequirement) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Primary returns a copy of the must-have skills (the first two required skills).
func (r RoleRequirement) Primary() []string {
	n := len(r.RequiredSkills)
	if n > PrimarySkillCount {
		n = PrimarySkillCount
	}
	return append([]string(nil), r.RequiredSkills[:n]...)
}

// Secondary returns a copy of the required skills after the primary ones.
func (r RoleRequirement) Secondary() []string {
	if len(r.RequiredSkills) <= PrimarySkillCount {
		return nil
	}
	return append([]string(nil), r.RequiredSkills[PrimarySkillCount:]...)
}
