package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/taskqueue/internal/store/storetest"
)

func TestPauseWorkersWithZeroInProgressIsPausedImmediately(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	submitPending(t, q, db) // pending only

	status, err := q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersResumed, status)

	require.NoError(t, q.PauseWorkers(ctx))

	status, err = q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersPaused, status)
}

func TestPauseWorkersWithInProgressTaskIsPausing(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)
	claimTask(t, q, item.ID)

	require.NoError(t, q.PauseWorkers(ctx))

	status, err := q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersPausing, status)
}

func TestPausingIsPromotedToPausedOnceInProgressTasksDrain(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)
	claimed := claimTask(t, q, item.ID)

	require.NoError(t, q.PauseWorkers(ctx))

	status, err := q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersPausing, status)

	// The in-flight task finishes; the next status read promotes the cluster.
	require.NoError(t, q.Complete(ctx, claimed))

	status, err = q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersPaused, status)

	// Promotion is persisted, not recomputed from scratch every read.
	value, err := db.PropertyStore().Get(ctx, workersPauseProperty)
	require.NoError(t, err)
	assert.Equal(t, string(WorkersPaused), value)
}

func TestResumeWorkersIsNoOpWhenAlreadyResumed(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))

	status, err := q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersResumed, status)

	require.NoError(t, q.ResumeWorkers(ctx))

	status, err = q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersResumed, status)
}

func TestResumeWorkersResumesPausingWorkers(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))
	item := submitPending(t, q, db)
	claimTask(t, q, item.ID)

	require.NoError(t, q.PauseWorkers(ctx))
	status, err := q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersPausing, status)

	require.NoError(t, q.ResumeWorkers(ctx))
	status, err = q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersResumed, status)
}

func TestResumeWorkersResumesPausedWorkers(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB()
	q := newTestQueue(db, NewStaticNodeInfo(""))

	require.NoError(t, q.PauseWorkers(ctx))
	status, err := q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersPaused, status)

	require.NoError(t, q.ResumeWorkers(ctx))
	status, err = q.WorkersPauseStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkersResumed, status)
}
