package api

import (
	"log/slog"
	"net/http"

	"github.com/quarrylabs/taskqueue/internal/api/shared"
	"github.com/quarrylabs/taskqueue/internal/queue"
)

// WorkersHandler handles cluster-wide worker pause and resume requests.
type WorkersHandler struct {
	queue  *queue.Queue
	logger *slog.Logger
}

// NewWorkersHandler creates a new WorkersHandler.
func NewWorkersHandler(q *queue.Queue, logger *slog.Logger) *WorkersHandler {
	return &WorkersHandler{queue: q, logger: logger}
}

// Pause handles POST /api/workers/pause requests. The response carries the
// resulting status: PAUSED when nothing was running, PAUSING otherwise.
func (h *WorkersHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.PauseWorkers(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to pause workers")
		return
	}

	status, err := h.queue.WorkersPauseStatus(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read pause status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PauseStatusResponse{Status: string(status)})
}

// Resume handles POST /api/workers/resume requests.
func (h *WorkersHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.ResumeWorkers(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to resume workers")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PauseStatus handles GET /api/workers/pause_status requests. Reading the
// status is what promotes a drained PAUSING cluster to PAUSED.
func (h *WorkersHandler) PauseStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.queue.WorkersPauseStatus(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read pause status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PauseStatusResponse{Status: string(status)})
}
