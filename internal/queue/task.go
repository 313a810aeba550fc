package queue

// TaskComponent carries the display metadata of a component or entity on a
// returned task handle. Key and Name are empty when the referenced resource
// could not be resolved at submit time; the ID is always preserved.
type TaskComponent struct {
	ID   string `json:"id"`
	Key  string `json:"key,omitempty"`
	Name string `json:"name,omitempty"`
}

// TaskSubmitter identifies the user that submitted a task. Login is empty
// when the user could not be resolved.
type TaskSubmitter struct {
	ID    string `json:"id"`
	Login string `json:"login,omitempty"`
}

// Task is the immutable handle returned to callers after a successful
// submission. Component, Entity and Submitter are nil when the submission
// carried no corresponding reference.
type Task struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	Component       *TaskComponent    `json:"component,omitempty"`
	Entity          *TaskComponent    `json:"entity,omitempty"`
	Submitter       *TaskSubmitter    `json:"submitter,omitempty"`
	Characteristics map[string]string `json:"characteristics,omitempty"`
}
