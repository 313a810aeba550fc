package store

import (
	"context"
	"database/sql"
)

// PropertyStore persists cluster-shared key/value settings. The queue uses
// it for the worker pause status, which must be visible to every node.
type PropertyStore interface {
	// Get returns the value stored under key.
	// Returns ErrPropertyNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// WithTx returns a PropertyStore bound to the given transaction.
	WithTx(tx *sql.Tx) PropertyStore
}
