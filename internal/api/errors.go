package api

import (
	"errors"
	"net/http"

	"github.com/quarrylabs/taskqueue/internal/api/shared"
	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/queue"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, queue.ErrInvalidTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, queue.ErrEmptySubmissionType),
		errors.Is(err, domain.ErrPartialComponent),
		errors.Is(err, domain.ErrEmptyTaskType):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Transition errors carry messages written for end users, including the
	// offending task ID.
	case errors.Is(err, queue.ErrInvalidTransition):
		return err.Error()

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrActivityNotFound):
		return "Activity record not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "A task with this ID already exists"

	case errors.Is(err, queue.ErrEmptySubmissionType):
		return "Task type is required"

	case errors.Is(err, domain.ErrPartialComponent):
		return "Component and entity IDs must be provided together"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and safe message and writes the
// response. An explicit non-empty userMessage overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
