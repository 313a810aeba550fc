package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/queue"
	"github.com/quarrylabs/taskqueue/internal/store"
	"github.com/quarrylabs/taskqueue/internal/store/storetest"
)

type systemIDs struct{}

func (systemIDs) NewID() string { return "generated-id" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestQueue(db *storetest.DB) *queue.Queue {
	return queue.New(
		db.Transactor(),
		queue.Stores{
			Queue:      db.QueueStore(),
			Activity:   db.ActivityStore(),
			Properties: db.PropertyStore(),
			Projects:   db.ProjectStore(),
			Users:      db.UserStore(),
		},
		systemIDs{},
		queue.SystemClock{},
		queue.NewStaticNodeInfo("node-1"),
		testLogger(),
	)
}

func insertPending(t *testing.T, db *storetest.DB, id, taskType, componentID, entityID string) {
	t.Helper()
	now := time.Now().UTC()
	err := db.QueueStore().Insert(context.Background(), &domain.QueueItem{
		ID:          id,
		TaskType:    taskType,
		ComponentID: componentID,
		EntityID:    entityID,
		Status:      domain.TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
}

func startPool(t *testing.T, p *Pool) {
	t.Helper()
	p.Start()
	t.Cleanup(p.Stop)
}

// waitForActivity blocks until the task reaches a terminal outcome.
func waitForActivity(t *testing.T, db *storetest.DB, taskID string) *domain.ActivityRecord {
	t.Helper()
	var record *domain.ActivityRecord
	require.Eventually(t, func() bool {
		r, err := db.ActivityStore().GetByID(context.Background(), taskID)
		if err != nil {
			return false
		}
		record = r
		return true
	}, 5*time.Second, 5*time.Millisecond)
	return record
}

func TestPoolExecutesTaskAndRecordsSuccess(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)
	insertPending(t, db, "task-1", "REPORT", "", "")

	executed := make(chan string, 1)
	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		executed <- item.ID
		return nil
	}))
	startPool(t, pool)

	select {
	case id := <-executed:
		assert.Equal(t, "task-1", id)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked")
	}

	record := waitForActivity(t, db, "task-1")
	assert.Equal(t, domain.ActivityStatusSuccess, record.Status)
	assert.NotEmpty(t, record.WorkerID)
	assert.Equal(t, "node-1", record.NodeName)

	_, err := db.QueueStore().GetByID(context.Background(), "task-1")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPoolRecordsHandlerFailure(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)
	insertPending(t, db, "task-1", "REPORT", "", "")

	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		return errors.New("analysis crashed")
	}))
	startPool(t, pool)

	record := waitForActivity(t, db, "task-1")
	assert.Equal(t, domain.ActivityStatusFailed, record.Status)
	assert.Empty(t, record.ErrorType)
	assert.Equal(t, "analysis crashed", record.ErrorMessage)
}

func TestPoolRecordsTypedErrorType(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)
	insertPending(t, db, "task-1", "REPORT", "", "")

	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		return NewTypedError("TIMEOUT", "analysis timed out")
	}))
	startPool(t, pool)

	record := waitForActivity(t, db, "task-1")
	assert.Equal(t, domain.ActivityStatusFailed, record.Status)
	assert.Equal(t, "TIMEOUT", record.ErrorType)
	assert.Equal(t, "analysis timed out", record.ErrorMessage)
}

func TestPoolFailsTaskWithoutRegisteredHandler(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)
	insertPending(t, db, "task-1", "UNKNOWN", "", "")

	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	startPool(t, pool)

	record := waitForActivity(t, db, "task-1")
	assert.Equal(t, domain.ActivityStatusFailed, record.Status)
	assert.Equal(t, ErrorTypeUnknownTaskType, record.ErrorType)
}

func TestPoolFailsTaskWhoseComponentWasDeleted(t *testing.T) {
	db := storetest.NewDB()
	db.AddProject(domain.Project{ID: "project-1", Key: "acme", Name: "Acme"})
	q := newTestQueue(db)
	// The branch referenced by the task is never seeded, as if it was
	// deleted after submission.
	insertPending(t, db, "task-1", "REPORT", "branch-1", "project-1")

	var handlerRan atomic.Bool
	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		handlerRan.Store(true)
		return nil
	}))
	startPool(t, pool)

	record := waitForActivity(t, db, "task-1")
	assert.Equal(t, domain.ActivityStatusFailed, record.Status)
	assert.Equal(t, ErrorTypeComponentDeleted, record.ErrorType)
	assert.Contains(t, record.ErrorMessage, "deleted")
	assert.False(t, handlerRan.Load())
}

func TestPoolDoesNotClaimWhilePaused(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)

	require.NoError(t, q.PauseWorkers(context.Background()))
	insertPending(t, db, "task-1", "REPORT", "", "")

	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		return nil
	}))
	startPool(t, pool)

	time.Sleep(100 * time.Millisecond)
	item, err := db.QueueStore().GetByID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, item.Status)

	// Resuming lets the pool pick the task up again.
	require.NoError(t, q.ResumeWorkers(context.Background()))
	record := waitForActivity(t, db, "task-1")
	assert.Equal(t, domain.ActivityStatusSuccess, record.Status)
}

func TestPoolProcessesTasksInSubmissionOrder(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)

	base := time.Now().UTC()
	for i, id := range []string{"task-1", "task-2", "task-3"} {
		err := db.QueueStore().Insert(context.Background(), &domain.QueueItem{
			ID:        id,
			TaskType:  "REPORT",
			Status:    domain.TaskStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	order := make(chan string, 3)
	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		order <- item.ID
		return nil
	}))
	startPool(t, pool)

	var got []string
	for i := 0; i < 3; i++ {
		select {
		case id := <-order:
			got = append(got, id)
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of 3 tasks executed", i)
		}
	}
	assert.Equal(t, []string{"task-1", "task-2", "task-3"}, got)
}

func TestStopWaitsForInFlightTask(t *testing.T) {
	db := storetest.NewDB()
	q := newTestQueue(db)
	insertPending(t, db, "task-1", "REPORT", "", "")

	started := make(chan struct{})
	release := make(chan struct{})
	pool := NewPool(q, PoolConfig{WorkerCount: 1, PollInterval: 5 * time.Millisecond}, testLogger())
	pool.Register("REPORT", HandlerFunc(func(ctx context.Context, item *domain.QueueItem) error {
		close(started)
		<-release
		return nil
	}))
	pool.Start()

	<-started
	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned while a task was still executing")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the task finished")
	}

	record, err := db.ActivityStore().GetByID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityStatusSuccess, record.Status)
}
