package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validQueueItem() *QueueItem {
	return &QueueItem{
		ID:        "task-1",
		TaskType:  "REPORT",
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestQueueItemValidate(t *testing.T) {
	t.Run("valid pending item", func(t *testing.T) {
		assert.NoError(t, validQueueItem().Validate())
	})

	t.Run("valid item with component", func(t *testing.T) {
		item := validQueueItem()
		item.ComponentID = "branch-1"
		item.EntityID = "project-1"
		assert.NoError(t, item.Validate())
	})

	t.Run("empty ID", func(t *testing.T) {
		item := validQueueItem()
		item.ID = ""
		assert.ErrorIs(t, item.Validate(), ErrEmptyTaskID)
	})

	t.Run("empty task type", func(t *testing.T) {
		item := validQueueItem()
		item.TaskType = ""
		assert.ErrorIs(t, item.Validate(), ErrEmptyTaskType)
	})

	t.Run("unknown status", func(t *testing.T) {
		item := validQueueItem()
		item.Status = "DONE"
		assert.ErrorIs(t, item.Validate(), ErrInvalidTaskStatus)
	})

	t.Run("component without entity", func(t *testing.T) {
		item := validQueueItem()
		item.ComponentID = "branch-1"
		assert.ErrorIs(t, item.Validate(), ErrPartialComponent)
	})

	t.Run("entity without component", func(t *testing.T) {
		item := validQueueItem()
		item.EntityID = "project-1"
		assert.ErrorIs(t, item.Validate(), ErrPartialComponent)
	})

	t.Run("worker on pending row", func(t *testing.T) {
		item := validQueueItem()
		item.WorkerID = "worker-1"
		assert.ErrorIs(t, item.Validate(), ErrWorkerOnPendingRow)
	})

	t.Run("worker on in-progress row", func(t *testing.T) {
		item := validQueueItem()
		item.Status = TaskStatusInProgress
		item.WorkerID = "worker-1"
		assert.NoError(t, item.Validate())
	})
}

func TestQueueItemHasComponent(t *testing.T) {
	item := validQueueItem()
	assert.False(t, item.HasComponent())

	item.ComponentID = "branch-1"
	item.EntityID = "project-1"
	assert.True(t, item.HasComponent())
}
