// Package worker runs the background goroutines that execute queued tasks.
//
// Each worker polls the queue for the oldest pending task, claims it, runs
// the handler registered for its task type, and records the terminal outcome.
// Claiming goes through the queue's pause status, so pausing workers
// cluster-wide requires no coordination beyond the shared database.
package worker
