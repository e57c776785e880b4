package history

import "time"

// Status represents the lifecycle of a recorded job run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

// Record is one journaled job run.
type Record struct {
	ID         int64
	RunID      string
	InputSpec  string
	OutputType string
	OutputPath string
	Status     Status
	Message    string
	Progress   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Duration reports how long the run has been (or was) active.
func (r *Record) Duration() time.Duration {
	if r.UpdatedAt.Before(r.CreatedAt) {
		return 0
	}
	return r.UpdatedAt.Sub(r.CreatedAt)
}

// Finished reports whether the run reached a terminal status.
func (r *Record) Finished() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusAborted:
		return true
	}
	return false
}
