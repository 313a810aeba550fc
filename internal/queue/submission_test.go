package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/taskqueue/internal/domain"
)

func TestNewTaskSubmission(t *testing.T) {
	t.Run("defaults characteristics to empty map", func(t *testing.T) {
		sub, err := NewTaskSubmission(TaskSubmission{Type: "REPORT"})
		require.NoError(t, err)
		assert.NotNil(t, sub.Characteristics)
		assert.Empty(t, sub.Characteristics)
	})

	t.Run("copies characteristics", func(t *testing.T) {
		original := map[string]string{"branch": "main"}
		sub, err := NewTaskSubmission(TaskSubmission{Type: "REPORT", Characteristics: original})
		require.NoError(t, err)

		original["branch"] = "mutated"
		assert.Equal(t, "main", sub.Characteristics["branch"])
	})

	t.Run("rejects empty type", func(t *testing.T) {
		_, err := NewTaskSubmission(TaskSubmission{})
		assert.ErrorIs(t, err, ErrEmptySubmissionType)
	})

	t.Run("rejects component without entity", func(t *testing.T) {
		_, err := NewTaskSubmission(TaskSubmission{Type: "REPORT", ComponentID: "branch-1"})
		assert.ErrorIs(t, err, domain.ErrPartialComponent)
	})

	t.Run("rejects entity without component", func(t *testing.T) {
		_, err := NewTaskSubmission(TaskSubmission{Type: "REPORT", EntityID: "project-1"})
		assert.ErrorIs(t, err, domain.ErrPartialComponent)
	})

	t.Run("accepts full component pair", func(t *testing.T) {
		sub, err := NewTaskSubmission(TaskSubmission{
			Type:        "REPORT",
			ComponentID: "branch-1",
			EntityID:    "project-1",
		})
		require.NoError(t, err)
		assert.True(t, sub.hasComponent())
	})
}
