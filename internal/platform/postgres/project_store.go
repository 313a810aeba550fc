package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	db store.DBTX
}

// NewProjectStore creates a ProjectStore bound to the given connection or
// transaction.
func NewProjectStore(db store.DBTX) *ProjectStore {
	return &ProjectStore{db: db}
}

// WithTx returns a ProjectStore bound to the given transaction. A nil tx
// returns the receiver unchanged.
func (s *ProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	if tx == nil {
		return s
	}
	return NewProjectStore(tx)
}

// GetProject retrieves a project by ID.
func (s *ProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kee, name FROM projects WHERE id = $1`, id).
		Scan(&project.ID, &project.Key, &project.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", MapError(err))
	}
	return &project, nil
}

// GetBranch retrieves a branch by ID.
func (s *ProjectStore) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	var branch domain.Branch
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, kee, name FROM project_branches WHERE id = $1`, id).
		Scan(&branch.ID, &branch.ProjectID, &branch.Key, &branch.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", MapError(err))
	}
	return &branch, nil
}
