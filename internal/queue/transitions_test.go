package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/store"
	"github.com/quarrylabs/taskqueue/internal/store/storetest"
)

const testWorkerID = "worker-1"

func submitPending(t *testing.T, q *Queue, db *storetest.DB) *domain.QueueItem {
	t.Helper()
	ctx := context.Background()
	task, err := q.Submit(ctx, submission(t, "REPORT", "branch-1", "project-1", ""))
	require.NoError(t, err)
	item, err := db.QueueStore().GetByID(ctx, task.ID)
	require.NoError(t, err)
	return item
}

func claimTask(t *testing.T, q *Queue, id string) *domain.QueueItem {
	t.Helper()
	item, err := q.Claim(context.Background(), id, testWorkerID)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func TestCancelPending(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)

	require.NoError(t, q.Cancel(ctx, item))

	record, err := db.ActivityStore().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusCanceled, record.Status)
	assert.Equal(t, testNow, record.ExecutedAt)
	assert.Empty(t, record.NodeName)

	_, err = db.QueueStore().GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestCancelStampsNodeNameWhenProvided(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo("node-1"))
	item := submitPending(t, q, db)

	require.NoError(t, q.Cancel(ctx, item))

	record, err := db.ActivityStore().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "node-1", record.NodeName)
}

func TestCancelInProgressFails(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)
	claimed := claimTask(t, q, item.ID)

	err := q.Cancel(ctx, claimed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "task is in progress and can't be canceled")
	assert.Contains(t, err.Error(), claimed.ID)

	// No mutation happened: the row is still queued and no activity exists.
	_, err = db.QueueStore().GetByID(ctx, item.ID)
	assert.NoError(t, err)
	_, err = db.ActivityStore().GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrActivityNotFound)
}

func TestCancelAllCancelsPendingsButNotInProgress(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))

	inProgress := submitPending(t, q, db)
	pending1 := submitPending(t, q, db)
	pending2 := submitPending(t, q, db)
	claimTask(t, q, inProgress.ID)

	count, err := q.CancelAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, id := range []string{pending1.ID, pending2.ID} {
		record, err := db.ActivityStore().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ActivityStatusCanceled, record.Status)
	}

	_, err = db.ActivityStore().GetByID(ctx, inProgress.ID)
	assert.ErrorIs(t, err, store.ErrActivityNotFound)
	_, err = db.QueueStore().GetByID(ctx, inProgress.ID)
	assert.NoError(t, err)
}

func TestFailInProgressTask(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)
	claimed := claimTask(t, q, item.ID)

	require.NoError(t, q.Fail(ctx, claimed, "TIMEOUT", "failed on timeout"))

	record, err := db.ActivityStore().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusFailed, record.Status)
	assert.Equal(t, "TIMEOUT", record.ErrorType)
	assert.Equal(t, "failed on timeout", record.ErrorMessage)
	assert.Equal(t, testNow, record.ExecutedAt)
	assert.Equal(t, testWorkerID, record.WorkerID)
	assert.Empty(t, record.NodeName)

	_, err = db.QueueStore().GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestFailStampsNodeNameWhenProvided(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo("node-1"))
	item := submitPending(t, q, db)
	claimed := claimTask(t, q, item.ID)

	require.NoError(t, q.Fail(ctx, claimed, "TIMEOUT", "failed on timeout"))

	record, err := db.ActivityStore().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "node-1", record.NodeName)
}

func TestFailPendingTaskReturnsError(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)

	err := q.Fail(ctx, item, "TIMEOUT", "failed on timeout")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(),
		fmt.Sprintf("task is not in-progress and can't be marked as failed [id=%s]", item.ID))

	_, err = db.QueueStore().GetByID(ctx, item.ID)
	assert.NoError(t, err)
}

func TestCompleteInProgressTask(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo("node-1"))
	item := submitPending(t, q, db)
	claimed := claimTask(t, q, item.ID)

	require.NoError(t, q.Complete(ctx, claimed))

	record, err := db.ActivityStore().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusSuccess, record.Status)
	assert.Equal(t, testWorkerID, record.WorkerID)
	assert.Equal(t, "node-1", record.NodeName)
	assert.Empty(t, record.ErrorType)

	_, err = db.QueueStore().GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestCompletePendingTaskReturnsError(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)

	err := q.Complete(ctx, item)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestClaimTransitionsPendingToInProgress(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)

	claimed, err := q.Claim(ctx, item.ID, testWorkerID)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, domain.TaskStatusInProgress, claimed.Status)
	assert.Equal(t, testWorkerID, claimed.WorkerID)
	require.NotNil(t, claimed.StartedAt)
	assert.Equal(t, testNow, *claimed.StartedAt)
}

func TestClaimReturnsNilForUnknownOrAlreadyClaimedTask(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))

	claimed, err := q.Claim(ctx, "unknown", testWorkerID)
	require.NoError(t, err)
	assert.Nil(t, claimed)

	item := submitPending(t, q, db)
	claimTask(t, q, item.ID)

	claimed, err = q.Claim(ctx, item.ID, "worker-2")
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestClaimExclusivityUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)

	const workers = 16
	var wg sync.WaitGroup
	winners := make(chan string, workers)

	for i := 0; i < workers; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := q.Claim(ctx, item.ID, workerID)
			assert.NoError(t, err)
			if claimed != nil {
				winners <- claimed.WorkerID
			}
		}()
	}
	wg.Wait()
	close(winners)

	var claimedBy []string
	for w := range winners {
		claimedBy = append(claimedBy, w)
	}
	require.Len(t, claimedBy, 1, "exactly one worker must win the claim")

	stored, err := db.QueueStore().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, stored.Status)
	assert.Equal(t, claimedBy[0], stored.WorkerID)
}

func TestClaimOldestPendingClaimsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))

	first := submitPending(t, q, db)
	second := submitPending(t, q, db)

	claimed, err := q.ClaimOldestPending(ctx, testWorkerID)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, first.ID, claimed.ID)

	claimed, err = q.ClaimOldestPending(ctx, testWorkerID)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, second.ID, claimed.ID)

	claimed, err = q.ClaimOldestPending(ctx, testWorkerID)
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestClaimOldestPendingReturnsNilWhilePaused(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	submitPending(t, q, db)

	require.NoError(t, q.PauseWorkers(ctx))

	claimed, err := q.ClaimOldestPending(ctx, testWorkerID)
	require.NoError(t, err)
	assert.Nil(t, claimed)

	require.NoError(t, q.ResumeWorkers(ctx))

	claimed, err = q.ClaimOldestPending(ctx, testWorkerID)
	require.NoError(t, err)
	assert.NotNil(t, claimed)
}

func TestResolveComponent(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	db.AddBranch(domain.Branch{ID: "branch-1", ProjectID: "project-1", Key: "acme:main", Name: "main"})
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)

	branch, err := q.ResolveComponent(ctx, item)
	require.NoError(t, err)
	require.NotNil(t, branch)
	assert.Equal(t, "acme:main", branch.Key)

	db.RemoveBranch("branch-1")
	_, err = q.ResolveComponent(ctx, item)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComponentDeleted)

	noComponent := &domain.QueueItem{ID: "x", TaskType: "t", Status: domain.TaskStatusPending}
	branch, err = q.ResolveComponent(ctx, noComponent)
	require.NoError(t, err)
	assert.Nil(t, branch)
}
