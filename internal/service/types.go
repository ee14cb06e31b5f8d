package service

import (
	"errors"
	"time"

	"today/internal/task"
)

var (
	// ErrUnauthorized indicates a missing, expired or revoked session.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrNotFound indicates the server does not know the task.
	ErrNotFound = errors.New("not found")
)

// User is the signed-in account.
type User struct {
	ID      string `json:"_id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// CreateTaskRequest carries the fields of a new remote task.
// CreatedAt is the client's creation time; the server keeps it so the
// title+creation equivalence used by sync holds on later runs.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewCreateTaskRequest builds the create request for a local task.
func NewCreateTaskRequest(t task.Task) CreateTaskRequest {
	t = t.Clone()
	return CreateTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

// TaskUpdate holds the fields to change. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}
