package pipeline

// Steps reported through ProgressEvent.
const (
	StepLoadRole    = "load_role"
	StepSearch      = "search"
	StepDeduplicate = "deduplicate"
	StepEnrich      = "enrich"
	StepImport      = "import"
	StepScore       = "score"
	StepRoleDone    = "role_done"
)

// Step categories.
const (
	CategoryScrape = "scrape"
	CategoryScore  = "score"
	CategoryRun    = "run"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	JobID    string `json:"job_id,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// emit calls the progress callback if configured
func (c *Coordinator) emit(step, category, jobID, message string, content any) {
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			JobID:    jobID,
			Content:  content,
		})
	}
}
