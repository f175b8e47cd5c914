package types

// EngineStats counts attempts and outcomes for one search engine or stage.
type EngineStats struct {
	Attempted int `json:"attempted"`
	Returned  int `json:"returned"`
	Failed    int `json:"failed"`
}

// RunStats aggregates per-role pipeline counts.
type RunStats struct {
	Role        string `json:"role"`
	Found       int    `json:"found"`
	Skipped     int    `json:"skipped"`
	Imported    int    `json:"imported"`
	Flagged     int    `json:"flagged"`
	Scored      int    `json:"scored"`
	Recommended int    `json:"recommended"`
	Backup      int    `json:"backup"`
	Errors      int    `json:"errors"`
}

// Add accumulates other into s.
func (s *RunStats) Add(other RunStats) {
	s.Found += other.Found
	s.Skipped += other.Skipped
	s.Imported += other.Imported
	s.Flagged += other.Flagged
	s.Scored += other.Scored
	s.Recommended += other.Recommended
	s.Backup += other.Backup
	s.Errors += other.Errors
}

// Candidate statuses used by the record store.
const (
	StatusAIRecommended = "AI推薦"
	StatusBackupPool    = "備選人才"
	StatusPendingScore  = "待評分"
)
