package store

import (
	"context"
	"database/sql"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

// UserStore is the read-only lookup used to resolve the submitter login on
// returned task handles.
type UserStore interface {
	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
