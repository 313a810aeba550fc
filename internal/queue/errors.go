package queue

import "errors"

// Common errors returned by the queue.
var (
	// ErrInvalidTransition is returned when an operation is attempted on a
	// task whose status does not allow it, such as canceling an in-progress
	// task or failing a pending one. The wrapped message names the offending
	// task ID. The operation performs no mutation.
	ErrInvalidTransition = errors.New("invalid task state transition")

	// ErrEmptySubmissionType is returned when a task submission carries no
	// type discriminator.
	ErrEmptySubmissionType = errors.New("submission type cannot be empty")

	// ErrComponentDeleted is returned when a claimed task references a
	// component that no longer exists. This indicates the component was
	// deleted out from under an in-flight task and is not recoverable.
	ErrComponentDeleted = errors.New("component has been deleted by end-user during analysis")
)
