package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quarrylabs/taskqueue/internal/api"
	apiMiddleware "github.com/quarrylabs/taskqueue/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	queueHandler := api.NewQueueHandler(app.queue, app.queueStore, app.activity, app.logger)
	workersHandler := api.NewWorkersHandler(app.queue, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Submission endpoints
		r.Post("/tasks", queueHandler.SubmitTask)
		r.Post("/tasks/bulk", queueHandler.MassSubmit)

		// Queue inspection and transitions
		r.Get("/tasks/{id}", queueHandler.GetTask)
		r.Post("/tasks/{id}/cancel", queueHandler.CancelTask)
		r.Post("/tasks/cancel_all", queueHandler.CancelAll)

		// Worker-facing claim and terminal transitions
		r.Post("/tasks/claim", queueHandler.ClaimNext)
		r.Post("/tasks/{id}/claim", queueHandler.ClaimTask)
		r.Post("/tasks/{id}/complete", queueHandler.CompleteTask)
		r.Post("/tasks/{id}/fail", queueHandler.FailTask)

		// Terminal history
		r.Get("/activity/{id}", queueHandler.GetActivity)

		// Cluster-wide worker pause control
		r.Post("/workers/pause", workersHandler.Pause)
		r.Post("/workers/resume", workersHandler.Resume)
		r.Get("/workers/pause_status", workersHandler.PauseStatus)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
