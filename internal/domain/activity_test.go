package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validActivityRecord() *ActivityRecord {
	return &ActivityRecord{
		ID:          "task-1",
		TaskType:    "REPORT",
		Status:      ActivityStatusSuccess,
		SubmittedAt: time.Now().UTC(),
		ExecutedAt:  time.Now().UTC(),
	}
}

func TestActivityRecordValidate(t *testing.T) {
	t.Run("valid success record", func(t *testing.T) {
		assert.NoError(t, validActivityRecord().Validate())
	})

	t.Run("valid failed record with error details", func(t *testing.T) {
		rec := validActivityRecord()
		rec.Status = ActivityStatusFailed
		rec.ErrorType = "TIMEOUT"
		rec.ErrorMessage = "analysis timed out"
		assert.NoError(t, rec.Validate())
	})

	t.Run("empty ID", func(t *testing.T) {
		rec := validActivityRecord()
		rec.ID = ""
		assert.ErrorIs(t, rec.Validate(), ErrEmptyTaskID)
	})

	t.Run("empty task type", func(t *testing.T) {
		rec := validActivityRecord()
		rec.TaskType = ""
		assert.ErrorIs(t, rec.Validate(), ErrEmptyTaskType)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := validActivityRecord()
		rec.Status = "DONE"
		assert.ErrorIs(t, rec.Validate(), ErrInvalidActivityStatus)
	})

	t.Run("error details on canceled record", func(t *testing.T) {
		rec := validActivityRecord()
		rec.Status = ActivityStatusCanceled
		rec.ErrorMessage = "boom"
		assert.ErrorIs(t, rec.Validate(), ErrErrorOnNonFailedTask)
	})
}
