package reconcile

import (
	"fmt"

	"today/internal/task"
)

// Status tells whether a task mutation reached the server.
type Status int

const (
	// Synced means the server acknowledged the mutation.
	Synced Status = iota + 1

	// LocalOnly means the mutation was applied locally only.
	LocalOnly
)

func (s Status) String() string {
	switch s {
	case Synced:
		return "synced"
	case LocalOnly:
		return "local-only"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of one task mutation.
// Reason is set only for LocalOnly results that fell back after a remote error;
// it is nil when no remote call was attempted.
type Result struct {
	Task   task.Task
	Status Status
	Reason error
}

// SyncedResult builds a Synced result.
func SyncedResult(t task.Task) Result {
	return Result{Task: t, Status: Synced}
}

// LocalOnlyResult builds a LocalOnly result.
func LocalOnlyResult(t task.Task, reason error) Result {
	return Result{Task: t, Status: LocalOnly, Reason: reason}
}

// Degraded reports whether a remote call was attempted and failed.
func (r Result) Degraded() bool {
	return r.Status == LocalOnly && r.Reason != nil
}

// Diverged reports whether a synced task was changed locally only. The
// server keeps its copy, and the next reconciliation restores it.
func (r Result) Diverged() bool {
	return r.Status == LocalOnly && r.Task.IsSynced()
}
