package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a UserStore bound to the given connection or
// transaction.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

// WithTx returns a UserStore bound to the given transaction. A nil tx
// returns the receiver unchanged.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	if tx == nil {
		return s
	}
	return NewUserStore(tx)
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", MapError(err))
	}
	return &user, nil
}
