package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

// QueueStore defines the persistence interface for queue rows.
// Version: 1.0
type QueueStore interface {
	// Insert saves a new queue row. Returns ErrDuplicate when a row with the
	// same ID already exists.
	Insert(ctx context.Context, item *domain.QueueItem) error

	// GetByID retrieves a queue row by its task ID.
	// Returns ErrTaskNotFound if the row does not exist.
	GetByID(ctx context.Context, id string) (*domain.QueueItem, error)

	// SelectPending retrieves all PENDING rows in creation order.
	SelectPending(ctx context.Context) ([]*domain.QueueItem, error)

	// SelectByEntityID retrieves all rows (pending or in-progress) whose
	// entity ID equals the given value. Rows without a component never match.
	SelectByEntityID(ctx context.Context, entityID string) ([]*domain.QueueItem, error)

	// SelectByTaskType retrieves all rows (pending or in-progress) with the
	// given task type.
	SelectByTaskType(ctx context.Context, taskType string) ([]*domain.QueueItem, error)

	// CountInProgress returns the number of IN_PROGRESS rows.
	CountInProgress(ctx context.Context) (int, error)

	// Delete removes a queue row by task ID.
	// Returns ErrTaskNotFound if the row does not exist.
	Delete(ctx context.Context, id string) error

	// TryClaim atomically transitions the row with the given ID from PENDING
	// to IN_PROGRESS, stamping the worker ID and start time. It returns the
	// updated row, or (nil, nil) when no pending row with that ID exists:
	// already claimed by a concurrent worker, already gone, or unknown ID.
	// At most one concurrent caller observes success for a given ID.
	TryClaim(ctx context.Context, id, workerID string, now time.Time) (*domain.QueueItem, error)

	// TryClaimOldestPending claims the oldest PENDING row the same way
	// TryClaim does, without the caller naming a task ID. Returns (nil, nil)
	// when no row is pending.
	TryClaimOldestPending(ctx context.Context, workerID string, now time.Time) (*domain.QueueItem, error)

	// WithTx returns a QueueStore bound to the given transaction so multiple
	// operations can share one transaction boundary. A nil tx is valid for
	// implementations that do not use SQL transactions.
	WithTx(tx *sql.Tx) QueueStore
}
