package worker

import (
	"context"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

// Handler executes one claimed task. A nil return marks the task successful;
// a non-nil error marks it failed with the error's message.
type Handler interface {
	Execute(ctx context.Context, item *domain.QueueItem) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, item *domain.QueueItem) error

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, item *domain.QueueItem) error {
	return f(ctx, item)
}

// TypedError lets a handler classify its failure. When a handler returns an
// error implementing TypedError, the reported type is recorded on the
// activity record alongside the message.
type TypedError interface {
	error
	ErrorType() string
}

// Error types recorded by the pool itself, without handler involvement.
const (
	// ErrorTypeComponentDeleted marks tasks whose target component was
	// deleted after submission but before execution.
	ErrorTypeComponentDeleted = "COMPONENT_DELETED"

	// ErrorTypeUnknownTaskType marks tasks whose type has no registered
	// handler on this node.
	ErrorTypeUnknownTaskType = "UNKNOWN_TASK_TYPE"
)

type typedError struct {
	errorType string
	message   string
}

func (e *typedError) Error() string     { return e.message }
func (e *typedError) ErrorType() string { return e.errorType }

// NewTypedError creates an error carrying an explicit error type for the
// activity record.
func NewTypedError(errorType, message string) error {
	return &typedError{errorType: errorType, message: message}
}
