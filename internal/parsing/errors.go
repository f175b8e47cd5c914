package parsing

import "fmt"

// JobError reports a record-store job that cannot become a RoleRequirement.
type JobError struct {
	JobID string
	// Field is the offending job field, empty when the whole record is unusable.
	Field   string
	Message string
	Cause   error
}

func (e *JobError) Error() string {
	msg := "job " + e.JobID
	if e.Field != "" {
		msg += " field " + e.Field
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *JobError) Unwrap() error { return e.Cause }
