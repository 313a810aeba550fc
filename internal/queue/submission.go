package queue

import "github.com/quarrylabs/taskqueue/internal/domain"

// TaskSubmission describes one task to enqueue. Build it with
// NewTaskSubmission and treat the result as immutable.
//
// ID may be left empty, in which case the queue generates one at submit
// time. ComponentID and EntityID identify the targeted sub-resource and its
// owning entity and must be set together or not at all. SubmitterID
// optionally identifies the user that triggered the submission.
type TaskSubmission struct {
	ID              string
	Type            string
	ComponentID     string
	EntityID        string
	SubmitterID     string
	Characteristics map[string]string
}

// SubmitOption restricts admission of a submission against the current
// queue contents.
type SubmitOption int

const (
	// UniquePerEntity rejects the submission when any queued task (pending
	// or in-progress) targets the same entity. Submissions without a
	// component are exempt and never collide with each other under this
	// option.
	UniquePerEntity SubmitOption = iota

	// UniquePerTaskType rejects the submission when any queued task
	// (pending or in-progress) has the same task type.
	UniquePerTaskType
)

// NewTaskSubmission validates and normalizes a submission. It rejects an
// empty type and a component reference missing either half of the
// (component, entity) pair, and defaults characteristics to an empty map.
// The characteristics map is copied so later caller mutation cannot leak
// into the submission.
func NewTaskSubmission(sub TaskSubmission) (TaskSubmission, error) {
	if sub.Type == "" {
		return TaskSubmission{}, ErrEmptySubmissionType
	}

	if (sub.ComponentID == "") != (sub.EntityID == "") {
		return TaskSubmission{}, domain.ErrPartialComponent
	}

	characteristics := make(map[string]string, len(sub.Characteristics))
	for k, v := range sub.Characteristics {
		characteristics[k] = v
	}
	sub.Characteristics = characteristics

	return sub, nil
}

// hasComponent reports whether the submission targets a specific component.
func (s TaskSubmission) hasComponent() bool {
	return s.ComponentID != ""
}

func hasOption(opts []SubmitOption, opt SubmitOption) bool {
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}
