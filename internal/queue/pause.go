package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quarrylabs/taskqueue/internal/store"
)

// WorkersPauseStatus is the cluster-wide claim gate for workers.
type WorkersPauseStatus string

// Pause states. RESUMED is the initial state; PAUSING means a pause was
// requested while tasks were still in progress and workers must let them
// drain before the cluster reaches PAUSED.
const (
	WorkersResumed WorkersPauseStatus = "RESUMED"
	WorkersPausing WorkersPauseStatus = "PAUSING"
	WorkersPaused  WorkersPauseStatus = "PAUSED"
)

// workersPauseProperty is the shared property key holding the pause status.
// An absent key means RESUMED.
const workersPauseProperty = "queue.workersPauseStatus"

// PauseWorkers requests a cluster-wide pause of task claiming. When tasks
// are currently in progress the status becomes PAUSING and in-flight tasks
// are allowed to finish; with nothing in progress the cluster is PAUSED
// immediately.
func (q *Queue) PauseWorkers(ctx context.Context) error {
	return q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		inProgress, err := q.stores.Queue.WithTx(tx).CountInProgress(ctx)
		if err != nil {
			return fmt.Errorf("failed to count in-progress tasks: %w", err)
		}

		status := WorkersPaused
		if inProgress > 0 {
			status = WorkersPausing
		}
		if err := q.stores.Properties.WithTx(tx).Set(ctx, workersPauseProperty, string(status)); err != nil {
			return fmt.Errorf("failed to store pause status: %w", err)
		}

		q.logger.Info("workers pause requested",
			"status", status,
			"in_progress", inProgress)
		return nil
	})
}

// ResumeWorkers re-enables task claiming cluster-wide. It is a no-op when
// workers are already resumed.
func (q *Queue) ResumeWorkers(ctx context.Context) error {
	return q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := q.stores.Properties.WithTx(tx).Delete(ctx, workersPauseProperty); err != nil {
			return fmt.Errorf("failed to clear pause status: %w", err)
		}
		q.logger.Info("workers resumed")
		return nil
	})
}

// WorkersPauseStatus returns the current pause status. The status is
// recomputed against the queue table on every call: a PAUSING cluster whose
// last in-progress task has drained is promoted to PAUSED as a side effect
// of being queried.
func (q *Queue) WorkersPauseStatus(ctx context.Context) (WorkersPauseStatus, error) {
	var status WorkersPauseStatus
	err := q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		s, err := q.workersPauseStatusInTx(ctx, tx)
		if err != nil {
			return err
		}
		status = s
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

func (q *Queue) workersPauseStatusInTx(ctx context.Context, tx *sql.Tx) (WorkersPauseStatus, error) {
	props := q.stores.Properties.WithTx(tx)

	value, err := props.Get(ctx, workersPauseProperty)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return WorkersResumed, nil
		}
		return "", fmt.Errorf("failed to read pause status: %w", err)
	}

	status := WorkersPauseStatus(value)
	if status != WorkersPausing {
		return status, nil
	}

	inProgress, err := q.stores.Queue.WithTx(tx).CountInProgress(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count in-progress tasks: %w", err)
	}
	if inProgress > 0 {
		return WorkersPausing, nil
	}

	if err := props.Set(ctx, workersPauseProperty, string(WorkersPaused)); err != nil {
		return "", fmt.Errorf("failed to promote pause status: %w", err)
	}
	q.logger.Info("workers pause complete, no tasks in progress")
	return WorkersPaused, nil
}
