package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/platform/logger"
	"github.com/quarrylabs/taskqueue/internal/store"
)

const queueColumns = `id, task_type, component_id, entity_id, submitter_id, worker_id, status, created_at, updated_at, started_at`

// QueueStore implements store.QueueStore using PostgreSQL.
type QueueStore struct {
	db store.DBTX
}

// NewQueueStore creates a QueueStore bound to the given connection or
// transaction.
func NewQueueStore(db store.DBTX) *QueueStore {
	return &QueueStore{db: db}
}

// WithTx returns a QueueStore bound to the given transaction. A nil tx
// returns the receiver unchanged.
func (s *QueueStore) WithTx(tx *sql.Tx) store.QueueStore {
	if tx == nil {
		return s
	}
	return NewQueueStore(tx)
}

// Insert saves a new queue row.
func (s *QueueStore) Insert(ctx context.Context, item *domain.QueueItem) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO task_queue (id, task_type, component_id, entity_id, submitter_id, status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.TaskType,
		item.ComponentID,
		item.EntityID,
		item.SubmitterID,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert queue row",
			"task_id", item.ID,
			"task_type", item.TaskType,
			"error", err)
		return fmt.Errorf("failed to insert queue row: %w", MapError(err))
	}

	return nil
}

// GetByID retrieves a queue row by task ID.
func (s *QueueStore) GetByID(ctx context.Context, id string) (*domain.QueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM task_queue WHERE id = $1`

	item, err := scanQueueItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get queue row: %w", MapError(err))
	}
	return item, nil
}

// SelectPending retrieves all PENDING rows in creation order.
func (s *QueueStore) SelectPending(ctx context.Context) ([]*domain.QueueItem, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM task_queue
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
	`
	return s.selectItems(ctx, query, domain.TaskStatusPending)
}

// SelectByEntityID retrieves all rows targeting the given entity. Rows
// without a component have a NULL entity_id and therefore never match.
func (s *QueueStore) SelectByEntityID(ctx context.Context, entityID string) ([]*domain.QueueItem, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM task_queue
		WHERE entity_id = $1
		ORDER BY created_at ASC, id ASC
	`
	return s.selectItems(ctx, query, entityID)
}

// SelectByTaskType retrieves all rows with the given task type.
func (s *QueueStore) SelectByTaskType(ctx context.Context, taskType string) ([]*domain.QueueItem, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM task_queue
		WHERE task_type = $1
		ORDER BY created_at ASC, id ASC
	`
	return s.selectItems(ctx, query, taskType)
}

// CountInProgress returns the number of IN_PROGRESS rows.
func (s *QueueStore) CountInProgress(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM task_queue WHERE status = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, domain.TaskStatusInProgress).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count in-progress rows: %w", MapError(err))
	}
	return count, nil
}

// Delete removes a queue row by task ID.
func (s *QueueStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM task_queue WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue row: %w", MapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// TryClaim atomically claims the pending row with the given ID. The
// status predicate in the UPDATE guarantees at most one concurrent caller
// observes success.
func (s *QueueStore) TryClaim(ctx context.Context, id, workerID string, now time.Time) (*domain.QueueItem, error) {
	query := `
		UPDATE task_queue
		SET status = $3, worker_id = $4, started_at = $5, updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING ` + queueColumns

	item, err := scanQueueItem(s.db.QueryRowContext(ctx, query,
		id,
		domain.TaskStatusPending,
		domain.TaskStatusInProgress,
		workerID,
		now,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim queue row: %w", MapError(err))
	}
	return item, nil
}

// TryClaimOldestPending claims the oldest pending row. SKIP LOCKED lets
// concurrent pollers each pick a different row instead of serializing on
// the head of the queue.
func (s *QueueStore) TryClaimOldestPending(ctx context.Context, workerID string, now time.Time) (*domain.QueueItem, error) {
	query := `
		UPDATE task_queue
		SET status = $2, worker_id = $3, started_at = $4, updated_at = $4
		WHERE id = (
			SELECT id FROM task_queue
			WHERE status = $1
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND status = $1
		RETURNING ` + queueColumns

	item, err := scanQueueItem(s.db.QueryRowContext(ctx, query,
		domain.TaskStatusPending,
		domain.TaskStatusInProgress,
		workerID,
		now,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim oldest pending row: %w", MapError(err))
	}
	return item, nil
}

func (s *QueueStore) selectItems(ctx context.Context, query string, args ...any) ([]*domain.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue rows: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue rows: %w", err)
	}
	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueueItem(row rowScanner) (*domain.QueueItem, error) {
	var (
		item        domain.QueueItem
		componentID sql.NullString
		entityID    sql.NullString
		submitterID sql.NullString
		workerID    sql.NullString
		startedAt   sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.TaskType,
		&componentID,
		&entityID,
		&submitterID,
		&workerID,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
		&startedAt,
	)
	if err != nil {
		return nil, err
	}

	item.ComponentID = componentID.String
	item.EntityID = entityID.String
	item.SubmitterID = submitterID.String
	item.WorkerID = workerID.String
	if startedAt.Valid {
		t := startedAt.Time
		item.StartedAt = &t
	}
	return &item, nil
}
