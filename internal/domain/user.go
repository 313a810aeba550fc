package domain

// User identifies the person that triggered a task submission. Only the
// fields needed to enrich returned task handles are modeled; identity
// management itself lives outside this service.
type User struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}
