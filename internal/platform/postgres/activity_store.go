package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/platform/logger"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// ActivityStore implements store.ActivityStore using PostgreSQL.
type ActivityStore struct {
	db store.DBTX
}

// NewActivityStore creates an ActivityStore bound to the given connection
// or transaction.
func NewActivityStore(db store.DBTX) *ActivityStore {
	return &ActivityStore{db: db}
}

// WithTx returns an ActivityStore bound to the given transaction. A nil tx
// returns the receiver unchanged.
func (s *ActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	if tx == nil {
		return s
	}
	return NewActivityStore(tx)
}

// Insert appends a terminal activity record.
func (s *ActivityStore) Insert(ctx context.Context, record *domain.ActivityRecord) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO task_activity
			(id, task_type, component_id, entity_id, submitter_id, status,
			 error_type, error_message, submitted_at, executed_at, worker_id, node_name)
		VALUES
			($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6,
			 NULLIF($7, ''), NULLIF($8, ''), $9, $10, NULLIF($11, ''), NULLIF($12, ''))
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TaskType,
		record.ComponentID,
		record.EntityID,
		record.SubmitterID,
		record.Status,
		record.ErrorType,
		record.ErrorMessage,
		record.SubmittedAt,
		record.ExecutedAt,
		record.WorkerID,
		record.NodeName,
	)
	if err != nil {
		log.Error("failed to insert activity record",
			"task_id", record.ID,
			"status", record.Status,
			"error", err)
		return fmt.Errorf("failed to insert activity record: %w", MapError(err))
	}

	return nil
}

// GetByID retrieves an activity record by task ID.
func (s *ActivityStore) GetByID(ctx context.Context, id string) (*domain.ActivityRecord, error) {
	query := `
		SELECT id, task_type, component_id, entity_id, submitter_id, status,
		       error_type, error_message, submitted_at, executed_at, worker_id, node_name
		FROM task_activity
		WHERE id = $1
	`

	var (
		record       domain.ActivityRecord
		componentID  sql.NullString
		entityID     sql.NullString
		submitterID  sql.NullString
		errorType    sql.NullString
		errorMessage sql.NullString
		workerID     sql.NullString
		nodeName     sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.TaskType,
		&componentID,
		&entityID,
		&submitterID,
		&record.Status,
		&errorType,
		&errorMessage,
		&record.SubmittedAt,
		&record.ExecutedAt,
		&workerID,
		&nodeName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity record: %w", MapError(err))
	}

	record.ComponentID = componentID.String
	record.EntityID = entityID.String
	record.SubmitterID = submitterID.String
	record.ErrorType = errorType.String
	record.ErrorMessage = errorMessage.String
	record.WorkerID = workerID.String
	record.NodeName = nodeName.String
	return &record, nil
}
