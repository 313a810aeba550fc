package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quarrylabs/taskqueue/internal/api/shared"
	"github.com/quarrylabs/taskqueue/internal/queue"
	"github.com/quarrylabs/taskqueue/internal/store"
)

// QueueHandler handles task queue HTTP requests.
type QueueHandler struct {
	queue     *queue.Queue
	tasks     store.QueueStore
	activity  store.ActivityStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(q *queue.Queue, tasks store.QueueStore, activity store.ActivityStore, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{
		queue:     q,
		tasks:     tasks,
		activity:  activity,
		validator: validator.New(),
		logger:    logger,
	}
}

// SubmitTask handles POST /api/tasks requests. A uniqueness rejection is a
// normal outcome and answers 204 rather than an error.
func (h *QueueHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	sub, err := toSubmission(req.SubmissionRequest)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.queue.Submit(r.Context(), sub, parseSubmitOptions(req.Options)...)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit task")
		return
	}
	if task == nil {
		// Rejected by a uniqueness option.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, task)
}

// MassSubmit handles POST /api/tasks/bulk requests. The response lists the
// admitted tasks in submission order; rejected submissions are omitted.
func (h *QueueHandler) MassSubmit(w http.ResponseWriter, r *http.Request) {
	var req MassSubmitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	subs := make([]queue.TaskSubmission, 0, len(req.Submissions))
	for _, sr := range req.Submissions {
		sub, err := toSubmission(sr)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		subs = append(subs, sub)
	}

	tasks, err := h.queue.MassSubmit(r.Context(), subs, parseSubmitOptions(req.Options)...)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit tasks")
		return
	}
	if tasks == nil {
		tasks = []*queue.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, tasks)
}

// GetTask handles GET /api/tasks/{id} requests for queued tasks.
func (h *QueueHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, queueItemToResponse(item))
}

// GetActivity handles GET /api/activity/{id} requests for finished tasks.
func (h *QueueHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	record, err := h.activity.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activityToResponse(record))
}

// CancelTask handles POST /api/tasks/{id}/cancel requests. Canceling an
// in-progress task answers 409.
func (h *QueueHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.queue.Cancel(r.Context(), item); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelAll handles POST /api/tasks/cancel_all requests.
func (h *QueueHandler) CancelAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.queue.CancelAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel pending tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CancelAllResponse{Canceled: count})
}

// ClaimTask handles POST /api/tasks/{id}/claim requests. Losing the claim
// race, or naming an unknown or already-running task, answers 404.
func (h *QueueHandler) ClaimTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req ClaimRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	item, err := h.queue.Claim(r.Context(), id, req.WorkerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to claim task")
		return
	}
	if item == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "No pending task with this ID")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, queueItemToResponse(item))
}

// ClaimNext handles POST /api/tasks/claim requests. An empty or paused queue
// answers 204.
func (h *QueueHandler) ClaimNext(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	item, err := h.queue.ClaimOldestPending(r.Context(), req.WorkerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to claim task")
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, queueItemToResponse(item))
}

// CompleteTask handles POST /api/tasks/{id}/complete requests.
func (h *QueueHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.queue.Complete(r.Context(), item); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FailTask handles POST /api/tasks/{id}/fail requests.
func (h *QueueHandler) FailTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req FailTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	item, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.queue.Fail(r.Context(), item, req.ErrorType, req.ErrorMessage); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
