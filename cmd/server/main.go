// Package main implements the entry point for the task queue server, which
// coordinates asynchronous background task submission, execution, and
// cluster-wide worker pausing.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/quarrylabs/taskqueue/internal/config"
	"github.com/quarrylabs/taskqueue/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires the application, and serves until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"node_name", cfg.Cluster.NodeName,
		"worker_count", cfg.Worker.Count)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}()

	if err := runMigrations(db, appLogger); err != nil {
		return err
	}

	app := newApplication(cfg, db, appLogger)
	app.startWorkers()
	defer app.stopWorkers()

	return app.startHTTPServer(context.Background())
}
