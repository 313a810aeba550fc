// Package domain defines the core business entities of the task queue:
// queue items (not-yet-finished tasks) and activity records (terminal
// outcomes), together with their validation rules.
package domain
