package domain

// Project is the top-level owning entity of analyzed code. It is the scope
// used by per-entity uniqueness checks at submission time.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Branch is the specific sub-resource an analysis task concerns. Tasks
// reference branches through QueueItem.ComponentID.
type Branch struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
}
