package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// Stores bundles the persistence interfaces the queue operates on.
type Stores struct {
	Queue      store.QueueStore
	Activity   store.ActivityStore
	Properties store.PropertyStore
	Projects   store.ProjectStore
	Users      store.UserStore
}

// Queue is the admission controller for background analysis tasks. It
// validates and enqueues submissions, enforces uniqueness policies, performs
// state transitions, and coordinates the cluster-wide worker pause status.
//
// Queue holds no mutable state; every operation runs inside a transaction
// obtained from the injected Transactor, so instances are safe for
// concurrent use from request-handling and worker goroutines alike.
type Queue struct {
	tx     store.Transactor
	stores Stores
	ids    IDGenerator
	clock  Clock
	node   NodeInfo
	logger *slog.Logger
}

// New creates a Queue with explicit dependencies. Production wiring passes
// UUIDGenerator, SystemClock and the configured node info; tests substitute
// deterministic fakes.
func New(
	tx store.Transactor,
	stores Stores,
	ids IDGenerator,
	clock Clock,
	node NodeInfo,
	logger *slog.Logger,
) *Queue {
	return &Queue{
		tx:     tx,
		stores: stores,
		ids:    ids,
		clock:  clock,
		node:   node,
		logger: logger,
	}
}

// Submit validates and enqueues one submission inside a single transaction.
//
// Without options it always admits and returns a populated task handle. With
// a uniqueness option it returns (nil, nil) when an existing queue row
// claims the submission's scope; rejection is a normal outcome, not an
// error. The uniqueness check and the insert share one transaction so two
// concurrent submissions cannot both pass a check that should block one.
func (q *Queue) Submit(ctx context.Context, sub TaskSubmission, opts ...SubmitOption) (*Task, error) {
	var task *Task
	err := q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		admitted, err := q.submitInTx(ctx, tx, sub, opts)
		if err != nil {
			return err
		}
		task = admitted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// MassSubmit enqueues a batch of submissions in input order. Each admission
// decision is evaluated against the current queue contents, which include
// rows inserted earlier in the same batch, so a later submission can be
// rejected by an earlier one that claimed the same scope. Admitted tasks are
// returned in the relative order of their originating submissions; rejected
// ones are simply omitted.
func (q *Queue) MassSubmit(ctx context.Context, subs []TaskSubmission, opts ...SubmitOption) ([]*Task, error) {
	var tasks []*Task
	err := q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks = tasks[:0]
		for _, sub := range subs {
			task, err := q.submitInTx(ctx, tx, sub, opts)
			if err != nil {
				return err
			}
			if task != nil {
				tasks = append(tasks, task)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// submitInTx performs one admission decision and, when admitted, the queue
// row insert and task handle resolution. Returns (nil, nil) on uniqueness
// rejection.
func (q *Queue) submitInTx(ctx context.Context, tx *sql.Tx, sub TaskSubmission, opts []SubmitOption) (*Task, error) {
	if sub.ID == "" {
		sub.ID = q.ids.NewID()
	}

	queueStore := q.stores.Queue.WithTx(tx)

	// Submissions without a component are exempt from the per-entity check.
	if hasOption(opts, UniquePerEntity) && sub.hasComponent() {
		existing, err := queueStore.SelectByEntityID(ctx, sub.EntityID)
		if err != nil {
			return nil, fmt.Errorf("failed to check entity uniqueness: %w", err)
		}
		if len(existing) > 0 {
			q.logger.Debug("submission rejected: entity already queued",
				"task_type", sub.Type,
				"entity_id", sub.EntityID)
			return nil, nil
		}
	}

	if hasOption(opts, UniquePerTaskType) {
		existing, err := queueStore.SelectByTaskType(ctx, sub.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to check task type uniqueness: %w", err)
		}
		if len(existing) > 0 {
			q.logger.Debug("submission rejected: task type already queued",
				"task_type", sub.Type)
			return nil, nil
		}
	}

	now := q.clock.Now()
	item := &domain.QueueItem{
		ID:          sub.ID,
		TaskType:    sub.Type,
		ComponentID: sub.ComponentID,
		EntityID:    sub.EntityID,
		SubmitterID: sub.SubmitterID,
		Status:      domain.TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := queueStore.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to insert queue row: %w", err)
	}

	task := q.resolveTask(ctx, tx, sub)
	q.logger.Info("task submitted",
		"task_id", task.ID,
		"task_type", task.Type)
	return task, nil
}

// resolveTask builds the returned task handle, enriching it with project,
// branch and submitter display metadata. Lookups that fail leave the handle
// with bare IDs; missing metadata never fails a submission.
func (q *Queue) resolveTask(ctx context.Context, tx *sql.Tx, sub TaskSubmission) *Task {
	task := &Task{
		ID:              sub.ID,
		Type:            sub.Type,
		Characteristics: sub.Characteristics,
	}

	if sub.hasComponent() {
		task.Component = &TaskComponent{ID: sub.ComponentID}
		task.Entity = &TaskComponent{ID: sub.EntityID}

		projects := q.stores.Projects.WithTx(tx)
		if branch, err := projects.GetBranch(ctx, sub.ComponentID); err == nil {
			task.Component.Key = branch.Key
			task.Component.Name = branch.Name
		}
		if project, err := projects.GetProject(ctx, sub.EntityID); err == nil {
			task.Entity.Key = project.Key
			task.Entity.Name = project.Name
		}
	}

	if sub.SubmitterID != "" {
		task.Submitter = &TaskSubmitter{ID: sub.SubmitterID}
		if user, err := q.stores.Users.WithTx(tx).GetByID(ctx, sub.SubmitterID); err == nil {
			task.Submitter.Login = user.Login
		}
	}

	return task
}

// Cancel moves a pending task directly to a canceled terminal outcome. It
// returns ErrInvalidTransition, without mutating anything, when the task is
// already in progress.
func (q *Queue) Cancel(ctx context.Context, item *domain.QueueItem) error {
	if item.Status == domain.TaskStatusInProgress {
		return fmt.Errorf("%w: task is in progress and can't be canceled [id=%s]",
			ErrInvalidTransition, item.ID)
	}

	return q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return q.cancelInTx(ctx, tx, item)
	})
}

// CancelAll cancels every task that is pending at call time. In-progress
// tasks are never touched. Returns the number of tasks canceled.
func (q *Queue) CancelAll(ctx context.Context) (int, error) {
	count := 0
	err := q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		count = 0
		pending, err := q.stores.Queue.WithTx(tx).SelectPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to select pending tasks: %w", err)
		}
		for _, item := range pending {
			if err := q.cancelInTx(ctx, tx, item); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	q.logger.Info("canceled all pending tasks", "count", count)
	return count, nil
}

func (q *Queue) cancelInTx(ctx context.Context, tx *sql.Tx, item *domain.QueueItem) error {
	record := q.newActivityRecord(item, domain.ActivityStatusCanceled)
	return q.removeInTx(ctx, tx, item, record)
}

// Fail moves an in-progress task to a failed terminal outcome, recording the
// error type and message reported by the worker. It returns
// ErrInvalidTransition, without mutating anything, when the task is not in
// progress.
func (q *Queue) Fail(ctx context.Context, item *domain.QueueItem, errorType, errorMessage string) error {
	if item.Status != domain.TaskStatusInProgress {
		return fmt.Errorf("%w: task is not in-progress and can't be marked as failed [id=%s]",
			ErrInvalidTransition, item.ID)
	}

	return q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		record := q.newActivityRecord(item, domain.ActivityStatusFailed)
		record.ErrorType = errorType
		record.ErrorMessage = errorMessage
		return q.removeInTx(ctx, tx, item, record)
	})
}

// Complete moves an in-progress task to a successful terminal outcome. Like
// Fail it requires the task to be in progress.
func (q *Queue) Complete(ctx context.Context, item *domain.QueueItem) error {
	if item.Status != domain.TaskStatusInProgress {
		return fmt.Errorf("%w: task is not in-progress and can't be marked as completed [id=%s]",
			ErrInvalidTransition, item.ID)
	}

	return q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		record := q.newActivityRecord(item, domain.ActivityStatusSuccess)
		return q.removeInTx(ctx, tx, item, record)
	})
}

// removeInTx performs the queue → activity transition: append the terminal
// record, then delete the queue row.
func (q *Queue) removeInTx(ctx context.Context, tx *sql.Tx, item *domain.QueueItem, record *domain.ActivityRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := q.stores.Activity.WithTx(tx).Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to insert activity record: %w", err)
	}
	if err := q.stores.Queue.WithTx(tx).Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to delete queue row: %w", err)
	}
	q.logger.Info("task finished",
		"task_id", item.ID,
		"task_type", item.TaskType,
		"status", record.Status)
	return nil
}

func (q *Queue) newActivityRecord(item *domain.QueueItem, status domain.ActivityStatus) *domain.ActivityRecord {
	record := &domain.ActivityRecord{
		ID:          item.ID,
		TaskType:    item.TaskType,
		ComponentID: item.ComponentID,
		EntityID:    item.EntityID,
		SubmitterID: item.SubmitterID,
		Status:      status,
		SubmittedAt: item.CreatedAt,
		ExecutedAt:  q.clock.Now(),
		WorkerID:    item.WorkerID,
	}
	if name, ok := q.node.NodeName(); ok {
		record.NodeName = name
	}
	return record
}

// Claim atomically transitions the pending task with the given ID to
// IN_PROGRESS on behalf of workerID and returns the updated row. It returns
// (nil, nil) when no pending row with that ID exists: already claimed by a
// concurrent worker, already canceled, or unknown ID. At most one concurrent
// caller observes success for a given ID.
func (q *Queue) Claim(ctx context.Context, taskID, workerID string) (*domain.QueueItem, error) {
	var claimed *domain.QueueItem
	err := q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		item, err := q.stores.Queue.WithTx(tx).TryClaim(ctx, taskID, workerID, q.clock.Now())
		if err != nil {
			return fmt.Errorf("failed to claim task: %w", err)
		}
		claimed = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ClaimOldestPending claims the oldest pending task for workerID. It returns
// (nil, nil) when the queue is empty or when workers are paused or pausing,
// so pollers observe the cluster pause status simply by claiming.
func (q *Queue) ClaimOldestPending(ctx context.Context, workerID string) (*domain.QueueItem, error) {
	var claimed *domain.QueueItem
	err := q.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		status, err := q.workersPauseStatusInTx(ctx, tx)
		if err != nil {
			return err
		}
		if status != WorkersResumed {
			return nil
		}

		item, err := q.stores.Queue.WithTx(tx).TryClaimOldestPending(ctx, workerID, q.clock.Now())
		if err != nil {
			return fmt.Errorf("failed to claim oldest pending task: %w", err)
		}
		claimed = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ResolveComponent loads the branch a claimed task targets. Unlike the
// best-effort enrichment at submit time, a missing branch here is a hard
// failure: the component was deleted while the task was in flight.
func (q *Queue) ResolveComponent(ctx context.Context, item *domain.QueueItem) (*domain.Branch, error) {
	if !item.HasComponent() {
		return nil, nil
	}
	branch, err := q.stores.Projects.GetBranch(ctx, item.ComponentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w [component=%s, task=%s]",
				ErrComponentDeleted, item.ComponentID, item.ID)
		}
		return nil, fmt.Errorf("failed to resolve component: %w", err)
	}
	return branch, nil
}
