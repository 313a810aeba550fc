package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quarrylabs/taskqueue/internal/store"
)

// PropertyStore implements store.PropertyStore using PostgreSQL. Rows in
// the properties table are shared by every node of the cluster.
type PropertyStore struct {
	db store.DBTX
}

// NewPropertyStore creates a PropertyStore bound to the given connection
// or transaction.
func NewPropertyStore(db store.DBTX) *PropertyStore {
	return &PropertyStore{db: db}
}

// WithTx returns a PropertyStore bound to the given transaction. A nil tx
// returns the receiver unchanged.
func (s *PropertyStore) WithTx(tx *sql.Tx) store.PropertyStore {
	if tx == nil {
		return s
	}
	return NewPropertyStore(tx)
}

// Get returns the value stored under key.
func (s *PropertyStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT prop_value FROM properties WHERE prop_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrPropertyNotFound
		}
		return "", fmt.Errorf("failed to get property: %w", MapError(err))
	}
	return value, nil
}

// Set stores the value under key, overwriting any previous value.
func (s *PropertyStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO properties (prop_key, prop_value)
		VALUES ($1, $2)
		ON CONFLICT (prop_key) DO UPDATE SET prop_value = EXCLUDED.prop_value
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set property: %w", MapError(err))
	}
	return nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (s *PropertyStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM properties WHERE prop_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete property: %w", MapError(err))
	}
	return nil
}
