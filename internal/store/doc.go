// Package store defines the persistence interfaces the task queue depends
// on, the DBTX abstraction shared by all SQL-backed implementations, and the
// transaction helpers used to scope multi-step queue operations.
package store
