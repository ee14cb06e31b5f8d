// Package task defines the task record shared by the client, the sync
// reconciler and the server.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyTitle is returned when a task title is empty or whitespace-only.
var ErrEmptyTitle = errors.New("title required")

// Task is one user-created to-do item.
//
// A task is either local (LocalID set, ID empty) or synced (ID set). A synced
// task may keep its LocalID as a stable display key.
type Task struct {
	ID          string     `json:"_id,omitempty"`
	LocalID     string     `json:"localId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// New creates a local-only task stamped with now.
// Title is trimmed; an empty title is rejected.
func New(title, description string, due *time.Time, now time.Time) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	now = Truncate(now)
	return Task{
		LocalID:     NewLocalID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     truncatePtr(due),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewLocalID returns a fresh local identifier.
func NewLocalID() string {
	return uuid.NewString()
}

// IsSynced reports whether the task carries a server identifier.
func (t Task) IsSynced() bool {
	return t.ID != ""
}

// Key returns the identifier used to address the task in the client:
// the LocalID when present, else the server ID.
func (t Task) Key() string {
	if t.LocalID != "" {
		return t.LocalID
	}
	return t.ID
}

// EffectiveDate is the due date when set, else the creation date.
func (t Task) EffectiveDate() time.Time {
	if t.DueDate != nil && !t.DueDate.IsZero() {
		return *t.DueDate
	}
	return t.CreatedAt
}

// Equivalent reports whether t and other describe the same task under the
// de-duplication rule: equal titles and equal creation timestamps at
// millisecond granularity. Two distinct tasks created in the same millisecond
// with the same title are treated as one.
func (t Task) Equivalent(other Task) bool {
	return t.Title == other.Title && Truncate(t.CreatedAt).Equal(Truncate(other.CreatedAt))
}

// Detach converts the task back to local-only: the server identifier is
// dropped and a local identifier is assigned when missing.
func (t Task) Detach() Task {
	t.ID = ""
	if t.LocalID == "" {
		t.LocalID = NewLocalID()
	}
	return t
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.DueDate = clonePtr(t.DueDate)
	return t
}

// CloneAll returns a deep copy of tasks. A nil input yields an empty,
// non-nil slice.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Truncate drops sub-millisecond precision, the granularity of the JSON
// wire format and of the server store.
func Truncate(ts time.Time) time.Time {
	return ts.Truncate(time.Millisecond)
}

func truncatePtr(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := Truncate(*ts)
	return &v
}

func clonePtr(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := *ts
	return &v
}
