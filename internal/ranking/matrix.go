package ranking

import (
	"sort"

	"github.com/jonathan/talent-sourcing/internal/types"
)

// Transferability returns the coefficient (0.0 to 1.0) for moving from one
// industry to another. Identical industries transfer fully.
func Transferability(from, to types.Industry) float64 {
	if from == to && from != types.IndustryUnknown && from != "" {
		return 1.0
	}
	if v, ok := transferability[[2]types.Industry{from, to}]; ok {
		return v
	}
	return defaultTransferability
}

// InferIndustries maps employer names onto the industries they belong to.
// The result is sorted and free of duplicates.
func InferIndustries(employers []string) []types.Industry {
	set := make(map[types.Industry]bool)
	for _, company := range employers {
		for _, m := range industryMatchers {
			if m.match.in(company) {
				set[m.industry] = true
			}
		}
	}

	out := make([]types.Industry, 0, len(set))
	for ind := range set {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// industryExperience scores the candidate's industry background against the
// role's target industry and returns the migration ability coefficient.
func industryExperience(employers []string, target types.Industry) (score, migration float64) {
	industries := InferIndustries(employers)
	for _, ind := range industries {
		if ind == target {
			return 100, 1.0
		}
	}

	migration = defaultTransferability
	for _, ind := range industries {
		if v := Transferability(ind, target); v > migration {
			migration = v
		}
	}
	return clamp(migration*100, 0, 100), migration
}
