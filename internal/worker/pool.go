package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quarrylabs/taskqueue/internal/domain"
	"github.com/quarrylabs/taskqueue/internal/queue"
)

// PoolConfig holds configuration options for the worker pool.
type PoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// PollInterval is how long a worker sleeps after finding the queue empty
	// or paused. If zero, defaults to 2 seconds.
	PollInterval time.Duration
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount:  2,
		PollInterval: 2 * time.Second,
	}
}

// Pool manages a pool of worker goroutines that claim and execute tasks from
// the queue. It handles graceful shutdown and worker lifecycle. Workers on
// different nodes coordinate only through the queue itself: claiming is
// atomic and claiming observes the cluster pause status.
type Pool struct {
	queue        *queue.Queue
	handlers     map[string]Handler
	workerCount  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	logger       *slog.Logger
}

// NewPool creates a worker pool with the specified configuration. Handlers
// are registered per task type with Register before Start.
func NewPool(q *queue.Queue, config PoolConfig, logger *slog.Logger) *Pool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:        q,
		handlers:     make(map[string]Handler),
		workerCount:  workerCount,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
	}
}

// Register binds a handler to a task type. Must be called before Start;
// the handler map is read concurrently once workers are running.
func (p *Pool) Register(taskType string, handler Handler) {
	p.handlers[taskType] = handler
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		workerID := uuid.NewString()
		p.wg.Add(1)
		go p.worker(workerID)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Stop signals all workers to stop and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// worker is the poll loop of a single worker goroutine. Each worker carries
// a stable ID for the lifetime of the pool so activity records identify
// which worker executed a task.
func (p *Pool) worker(workerID string) {
	defer p.wg.Done()

	log := p.logger.With("worker_id", workerID)
	log.Debug("starting worker")

	for {
		select {
		case <-p.ctx.Done():
			log.Debug("stopping worker")
			return
		default:
		}

		item, err := p.queue.ClaimOldestPending(p.ctx, workerID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("failed to claim task", "error", err)
			p.sleep()
			continue
		}
		if item == nil {
			// Queue empty or workers paused.
			p.sleep()
			continue
		}

		p.processTask(item, log)
	}
}

// processTask resolves the claimed task's component, runs its handler, and
// records the terminal outcome.
func (p *Pool) processTask(item *domain.QueueItem, log *slog.Logger) {
	// A claimed task runs to a terminal outcome even during shutdown, so
	// execution and outcome recording use a fresh context rather than the
	// pool's cancelable one.
	ctx := context.Background()
	log = log.With("task_id", item.ID, "task_type", item.TaskType)
	log.Info("processing task")

	if _, err := p.queue.ResolveComponent(ctx, item); err != nil {
		if errors.Is(err, queue.ErrComponentDeleted) {
			p.fail(ctx, item, ErrorTypeComponentDeleted, err.Error(), log)
			return
		}
		log.Error("failed to resolve task component", "error", err)
		p.fail(ctx, item, "", err.Error(), log)
		return
	}

	handler, ok := p.handlers[item.TaskType]
	if !ok {
		log.Error("no handler registered for task type")
		p.fail(ctx, item, ErrorTypeUnknownTaskType,
			fmt.Sprintf("no handler registered for task type %q", item.TaskType), log)
		return
	}

	if err := handler.Execute(ctx, item); err != nil {
		log.Error("task execution failed", "error", err)
		errorType := ""
		var typed TypedError
		if errors.As(err, &typed) {
			errorType = typed.ErrorType()
		}
		p.fail(ctx, item, errorType, err.Error(), log)
		return
	}

	if err := p.queue.Complete(ctx, item); err != nil {
		log.Error("failed to record task success", "error", err)
		return
	}
	log.Info("task completed successfully")
}

func (p *Pool) fail(ctx context.Context, item *domain.QueueItem, errorType, message string, log *slog.Logger) {
	if err := p.queue.Fail(ctx, item, errorType, message); err != nil {
		log.Error("failed to record task failure", "error", err)
	}
}

// sleep waits one poll interval or until shutdown, whichever comes first.
func (p *Pool) sleep() {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()
	select {
	case <-p.ctx.Done():
	case <-timer.C:
	}
}
