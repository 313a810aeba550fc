package store

import (
	"context"
	"database/sql"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

// ActivityStore defines the persistence interface for the append-only
// history of terminal task outcomes.
type ActivityStore interface {
	// Insert appends an activity record. Records are never updated after
	// insertion; exactly one record may exist per task ID, so inserting a
	// second one returns ErrDuplicate.
	Insert(ctx context.Context, record *domain.ActivityRecord) error

	// GetByID retrieves an activity record by its task ID.
	// Returns ErrActivityNotFound if the record does not exist.
	GetByID(ctx context.Context, id string) (*domain.ActivityRecord, error)

	// WithTx returns an ActivityStore bound to the given transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
