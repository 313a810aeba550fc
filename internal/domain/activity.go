package domain

import (
	"errors"
	"time"
)

// ActivityStatus represents the terminal outcome of a finished task.
type ActivityStatus string

// Possible activity statuses.
const (
	ActivityStatusSuccess  ActivityStatus = "SUCCESS"
	ActivityStatusFailed   ActivityStatus = "FAILED"
	ActivityStatusCanceled ActivityStatus = "CANCELED"
)

// Common validation errors for ActivityRecord.
var (
	ErrInvalidActivityStatus = errors.New("invalid activity status")
	ErrErrorOnNonFailedTask  = errors.New("error details are only valid for failed tasks")
)

// ActivityRecord is the append-only history row written when a task reaches
// a terminal state. Exactly one record exists per task ID and it is never
// updated after insertion.
//
// WorkerID is set when the task was claimed at least once. NodeName is the
// cluster node that performed the transition, empty when node information
// was unavailable.
type ActivityRecord struct {
	ID           string         `json:"id"`
	TaskType     string         `json:"task_type"`
	ComponentID  string         `json:"component_id,omitempty"`
	EntityID     string         `json:"entity_id,omitempty"`
	SubmitterID  string         `json:"submitter_id,omitempty"`
	Status       ActivityStatus `json:"status"`
	ErrorType    string         `json:"error_type,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	ExecutedAt   time.Time      `json:"executed_at"`
	WorkerID     string         `json:"worker_id,omitempty"`
	NodeName     string         `json:"node_name,omitempty"`
}

// Validate checks if the ActivityRecord has valid data.
// Returns an error if any field fails validation.
func (a *ActivityRecord) Validate() error {
	if a.ID == "" {
		return ErrEmptyTaskID
	}

	if a.TaskType == "" {
		return ErrEmptyTaskType
	}

	if !isValidActivityStatus(a.Status) {
		return ErrInvalidActivityStatus
	}

	if a.Status != ActivityStatusFailed && (a.ErrorType != "" || a.ErrorMessage != "") {
		return ErrErrorOnNonFailedTask
	}

	return nil
}

func isValidActivityStatus(status ActivityStatus) bool {
	switch status {
	case ActivityStatusSuccess, ActivityStatusFailed, ActivityStatusCanceled:
		return true
	default:
		return false
	}
}
