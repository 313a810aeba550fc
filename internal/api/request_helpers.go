package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quarrylabs/taskqueue/internal/api/shared"
	"github.com/quarrylabs/taskqueue/internal/queue"
)

// getPathID extracts a non-empty ID from the URL path parameters. It writes
// a 400 response and returns false when the parameter is missing.
func getPathID(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	id := chi.URLParam(r, paramName)
	if id == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, paramName+" is required")
		return "", false
	}
	return id, true
}

// parseSubmitOptions converts wire option names to queue options. Unknown
// names are rejected by request validation before this is called.
func parseSubmitOptions(names []string) []queue.SubmitOption {
	var opts []queue.SubmitOption
	for _, name := range names {
		switch name {
		case OptionUniquePerEntity:
			opts = append(opts, queue.UniquePerEntity)
		case OptionUniquePerTaskType:
			opts = append(opts, queue.UniquePerTaskType)
		}
	}
	return opts
}

// toSubmission validates and converts a wire submission to a queue submission.
func toSubmission(req SubmissionRequest) (queue.TaskSubmission, error) {
	return queue.NewTaskSubmission(queue.TaskSubmission{
		ID:              req.ID,
		Type:            req.Type,
		ComponentID:     req.ComponentID,
		EntityID:        req.EntityID,
		SubmitterID:     req.SubmitterID,
		Characteristics: req.Characteristics,
	})
}
