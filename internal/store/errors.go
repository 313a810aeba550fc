package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity (e.g. two queue rows with the same task ID).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or a
	// database constraint before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors.

	// ErrTaskNotFound indicates that the requested queue row does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrActivityNotFound indicates that the requested activity record does
	// not exist.
	ErrActivityNotFound = fmt.Errorf("%w: activity", ErrNotFound)

	// ErrPropertyNotFound indicates that the requested property key does not
	// exist.
	ErrPropertyNotFound = fmt.Errorf("%w: property", ErrNotFound)

	// ErrProjectNotFound indicates that the requested project does not exist.
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// ErrBranchNotFound indicates that the requested branch does not exist.
	ErrBranchNotFound = fmt.Errorf("%w: branch", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
