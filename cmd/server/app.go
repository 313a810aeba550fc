package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quarrylabs/taskqueue/internal/config"
	"github.com/quarrylabs/taskqueue/internal/platform/postgres"
	"github.com/quarrylabs/taskqueue/internal/queue"
	"github.com/quarrylabs/taskqueue/internal/store"
	"github.com/quarrylabs/taskqueue/internal/worker"
)

// application bundles the wired components of the running server.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	db         *sql.DB
	queueStore store.QueueStore
	activity   store.ActivityStore
	queue      *queue.Queue
	workerPool *worker.Pool
}

// newApplication wires the stores, the queue, and the worker pool.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) *application {
	queueStore := postgres.NewQueueStore(db)
	activityStore := postgres.NewActivityStore(db)

	q := queue.New(
		store.NewSQLTransactor(db),
		queue.Stores{
			Queue:      queueStore,
			Activity:   activityStore,
			Properties: postgres.NewPropertyStore(db),
			Projects:   postgres.NewProjectStore(db),
			Users:      postgres.NewUserStore(db),
		},
		queue.UUIDGenerator{},
		queue.SystemClock{},
		queue.NewStaticNodeInfo(cfg.Cluster.NodeName),
		logger,
	)

	app := &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		queueStore: queueStore,
		activity:   activityStore,
		queue:      q,
	}

	if cfg.Worker.Count > 0 {
		pool := worker.NewPool(q, worker.PoolConfig{
			WorkerCount:  cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		}, logger)
		app.registerTaskHandlers(pool)
		app.workerPool = pool
	}

	return app
}

// registerTaskHandlers binds the task handlers executed by this node's
// worker pool. Deployments add a handler per task type they process; tasks
// of unregistered types are failed with a recorded error.
func (app *application) registerTaskHandlers(pool *worker.Pool) {
}

// startWorkers launches the in-process worker pool, if configured.
func (app *application) startWorkers() {
	if app.workerPool != nil {
		app.workerPool.Start()
	}
}

// stopWorkers drains the worker pool, letting in-flight tasks finish.
func (app *application) stopWorkers() {
	if app.workerPool != nil {
		app.workerPool.Stop()
	}
}

// startHTTPServer starts the HTTP server with graceful shutdown support.
// It blocks until a shutdown signal arrives or the server fails.
func (app *application) startHTTPServer(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.setupRouter(),
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutting down server")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
