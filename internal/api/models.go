package api

import (
	"time"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

// Common request/response structures

// Submission option names accepted over the wire.
const (
	OptionUniquePerEntity   = "UNIQUE_PER_ENTITY"
	OptionUniquePerTaskType = "UNIQUE_PER_TASK_TYPE"
)

// SubmissionRequest defines one task submission. ComponentID and EntityID
// must be provided together or not at all.
type SubmissionRequest struct {
	ID              string            `json:"id,omitempty"`
	Type            string            `json:"type"                      validate:"required,min=1"`
	ComponentID     string            `json:"component_id,omitempty"`
	EntityID        string            `json:"entity_id,omitempty"`
	SubmitterID     string            `json:"submitter_id,omitempty"`
	Characteristics map[string]string `json:"characteristics,omitempty"`
}

// SubmitTaskRequest defines the payload for the single-task submit endpoint.
type SubmitTaskRequest struct {
	SubmissionRequest
	Options []string `json:"options,omitempty" validate:"dive,oneof=UNIQUE_PER_ENTITY UNIQUE_PER_TASK_TYPE"`
}

// MassSubmitRequest defines the payload for the batch submit endpoint. The
// options apply to every submission in the batch.
type MassSubmitRequest struct {
	Submissions []SubmissionRequest `json:"submissions"       validate:"required,min=1,dive"`
	Options     []string            `json:"options,omitempty" validate:"dive,oneof=UNIQUE_PER_ENTITY UNIQUE_PER_TASK_TYPE"`
}

// ClaimRequest identifies the worker claiming a task.
type ClaimRequest struct {
	WorkerID string `json:"worker_id" validate:"required,min=1"`
}

// FailTaskRequest defines the payload for marking a claimed task failed.
type FailTaskRequest struct {
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message"        validate:"required,min=1"`
}

// QueueItemResponse represents a queue row in API responses.
type QueueItemResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	ComponentID string     `json:"component_id,omitempty"`
	EntityID    string     `json:"entity_id,omitempty"`
	SubmitterID string     `json:"submitter_id,omitempty"`
	WorkerID    string     `json:"worker_id,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
}

// ActivityResponse represents a terminal activity record in API responses.
type ActivityResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ComponentID  string    `json:"component_id,omitempty"`
	EntityID     string    `json:"entity_id,omitempty"`
	SubmitterID  string    `json:"submitter_id,omitempty"`
	Status       string    `json:"status"`
	ErrorType    string    `json:"error_type,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
	ExecutedAt   time.Time `json:"executed_at"`
	WorkerID     string    `json:"worker_id,omitempty"`
	NodeName     string    `json:"node_name,omitempty"`
}

// CancelAllResponse reports how many pending tasks a cancel-all swept away.
type CancelAllResponse struct {
	Canceled int `json:"canceled"`
}

// PauseStatusResponse reports the cluster-wide worker pause status.
type PauseStatusResponse struct {
	Status string `json:"status"`
}

func queueItemToResponse(item *domain.QueueItem) QueueItemResponse {
	return QueueItemResponse{
		ID:          item.ID,
		Type:        item.TaskType,
		ComponentID: item.ComponentID,
		EntityID:    item.EntityID,
		SubmitterID: item.SubmitterID,
		WorkerID:    item.WorkerID,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		StartedAt:   item.StartedAt,
	}
}

func activityToResponse(record *domain.ActivityRecord) ActivityResponse {
	return ActivityResponse{
		ID:           record.ID,
		Type:         record.TaskType,
		ComponentID:  record.ComponentID,
		EntityID:     record.EntityID,
		SubmitterID:  record.SubmitterID,
		Status:       string(record.Status),
		ErrorType:    record.ErrorType,
		ErrorMessage: record.ErrorMessage,
		SubmittedAt:  record.SubmittedAt,
		ExecutedAt:   record.ExecutedAt,
		WorkerID:     record.WorkerID,
		NodeName:     record.NodeName,
	}
}
