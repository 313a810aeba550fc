package store

import (
	"context"
	"database/sql"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

// ProjectStore is the read-only lookup used to enrich returned task handles
// with project and branch display metadata. It never gates admission: a
// missing project or branch simply leaves the handle without key/name.
type ProjectStore interface {
	// GetProject retrieves a project by ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// GetBranch retrieves a branch by ID.
	// Returns ErrBranchNotFound if the branch does not exist.
	GetBranch(ctx context.Context, id string) (*domain.Branch, error)

	// WithTx returns a ProjectStore bound to the given transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
