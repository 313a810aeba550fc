// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations work against store.DBTX so they can be
// bound either to the connection pool or to a transaction via WithTx.
package postgres
