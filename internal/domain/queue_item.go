package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the state of a task while it sits in the queue.
type TaskStatus string

// Possible queue statuses. A task leaves the queue table entirely once it
// reaches a terminal outcome, so only the two non-terminal states exist here.
const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
)

// Common validation errors for QueueItem.
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskType      = errors.New("task type cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrPartialComponent   = errors.New("component ID and entity ID must be set together")
	ErrWorkerOnPendingRow = errors.New("pending task cannot have a worker ID")
)

// QueueItem is the persisted representation of a task that has not yet
// finished. A QueueItem exists if and only if the task has not reached a
// terminal outcome; completion, failure and cancellation all delete the row
// and append an ActivityRecord instead.
//
// ComponentID, EntityID, SubmitterID and WorkerID are optional; the empty
// string means absent (NULL in the store).
type QueueItem struct {
	ID          string     `json:"id"`
	TaskType    string     `json:"task_type"`
	ComponentID string     `json:"component_id,omitempty"`
	EntityID    string     `json:"entity_id,omitempty"`
	SubmitterID string     `json:"submitter_id,omitempty"`
	WorkerID    string     `json:"worker_id,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
}

// Validate checks if the QueueItem has valid data.
// Returns an error if any field fails validation.
func (q *QueueItem) Validate() error {
	if q.ID == "" {
		return ErrEmptyTaskID
	}

	if q.TaskType == "" {
		return ErrEmptyTaskType
	}

	if !isValidTaskStatus(q.Status) {
		return ErrInvalidTaskStatus
	}

	// A component always belongs to an entity, so the two identifiers are
	// either both present or both absent.
	if (q.ComponentID == "") != (q.EntityID == "") {
		return ErrPartialComponent
	}

	if q.Status == TaskStatusPending && q.WorkerID != "" {
		return ErrWorkerOnPendingRow
	}

	return nil
}

// HasComponent reports whether the task targets a specific component.
func (q *QueueItem) HasComponent() bool {
	return q.ComponentID != ""
}

func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress:
		return true
	default:
		return false
	}
}
