// Package queue implements the admission controller for background analysis
// tasks: validated single and batch submission with optional uniqueness
// constraints, the pending → in-progress → terminal state machine (claim,
// cancel, fail, complete), and the cluster-wide worker pause/resume control
// loop.
//
// All operations run against a transactional store; the package holds no
// shared mutable state of its own, so concurrency correctness is delegated
// to the store's transaction isolation.
package queue
