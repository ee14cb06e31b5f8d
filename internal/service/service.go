// Package service defines the backend-agnostic interface for remote task operations.
package service

import (
	"context"

	"today/internal/task"
)

// Service defines the interface for the remote task backend.
// All server calls go through this interface.
// The session credential is carried by the implementation; callers never see it.
type Service interface {
	// CurrentUser returns the signed-in user.
	// Returns ErrUnauthorized if there is no valid session.
	CurrentUser(ctx context.Context) (User, error)

	// ListTasks returns the authoritative task list for the session user.
	// Returns ErrUnauthorized if there is no valid session.
	ListTasks(ctx context.Context) ([]task.Task, error)

	// CreateTask creates a task and returns it with its server identifier.
	CreateTask(ctx context.Context, req CreateTaskRequest) (task.Task, error)

	// UpdateTask applies the non-nil fields of upd to the task with the given
	// server identifier.
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (task.Task, error)

	// DeleteTask deletes a task by server identifier.
	// Returns ErrNotFound if the server does not know it.
	DeleteTask(ctx context.Context, id string) error

	// EndSession invalidates the session on the server.
	EndSession(ctx context.Context) error
}
