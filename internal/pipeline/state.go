package pipeline

import (
	"github.com/jonathan/talent-sourcing/internal/identity"
	"github.com/jonathan/talent-sourcing/internal/types"
)

// SearchRunState is the transient state of one scrape: the identities already
// known, per-engine counters and the fallback stage that last produced results.
// It lives for a single Scrape call and is never persisted.
type SearchRunState struct {
	Seen            *identity.Deduplicator
	Engines         map[string]types.EngineStats
	ActiveStage     string
	ExhaustedStages []string
}

// NewSearchRunState seeds the deduplicator with every known profile.
func NewSearchRunState(known []types.CandidateProfile) *SearchRunState {
	seen := identity.NewDeduplicator()
	seen.SeedProfiles(known)
	return &SearchRunState{Seen: seen, Engines: make(map[string]types.EngineStats)}
}

// Record folds a search report into the counters.
func (s *SearchRunState) Record(r SearchReport) {
	for name, st := range r.Engines {
		cur := s.Engines[name]
		cur.Attempted += st.Attempted
		cur.Returned += st.Returned
		cur.Failed += st.Failed
		s.Engines[name] = cur
		if st.Attempted > 0 && st.Returned == 0 && st.Failed > 0 && !contains(s.ExhaustedStages, name) {
			s.ExhaustedStages = append(s.ExhaustedStages, name)
		}
	}
	if n := len(r.Contributors); n > 0 {
		s.ActiveStage = r.Contributors[n-1]
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
