package jobs

import "time"

// Status represents the lifecycle state of a queued task. Valid paths are
// queued -> processing -> {completed, canceled, failed}; a task that is
// canceled while still queued goes straight to canceled.
//
// Centralizing these here avoids scattering string literals like
// "queued" or "completed" across packages.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCanceled, StatusFailed:
		return true
	}
	return false
}

// Entry is the ledger record for a single task.
type Entry struct {
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}
