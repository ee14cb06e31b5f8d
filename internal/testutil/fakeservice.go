// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"today/internal/service"
	"today/internal/task"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.Mutex
	user     *service.User
	tasks    []task.Task
	nextID   int
	calls    map[string]int
	creates  []service.CreateTaskRequest
	ended    bool
	now      func() time.Time
	listHook func()

	// Error injection for testing
	CurrentUserErr error
	ListTasksErr   error
	CreateTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	EndSessionErr  error

	// CreateTaskErrFor fails creates whose title is a key of the map.
	CreateTaskErrFor map[string]error
}

// NewFakeService creates a FakeService signed in as a test user.
func NewFakeService() *FakeService {
	return &FakeService{
		user:             &service.User{ID: "u1", Email: "test@example.com", Name: "Test User"},
		calls:            make(map[string]int),
		CreateTaskErrFor: make(map[string]error),
		now:              func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

// SignOut makes every call fail with service.ErrUnauthorized.
func (f *FakeService) SignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
}

// OnList registers fn to run inside ListTasks before it returns.
func (f *FakeService) OnList(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHook = fn
}

// AddTask stores a server task directly, bypassing CreateTask.
func (f *FakeService) AddTask(t task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t.Clone())
}

// Tasks returns a copy of the server-side tasks.
func (f *FakeService) Tasks() []task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return task.CloneAll(f.tasks)
}

// Calls returns how many times the named method was called.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Creates returns the create requests received, in arrival order.
func (f *FakeService) Creates() []service.CreateTaskRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.CreateTaskRequest(nil), f.creates...)
}

// Ended reports whether EndSession succeeded.
func (f *FakeService) Ended() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ended
}

func (f *FakeService) enter(method string) error {
	f.calls[method]++
	if f.user == nil {
		return service.ErrUnauthorized
	}
	return nil
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentUserErr != nil {
		f.calls["CurrentUser"]++
		return service.User{}, f.CurrentUserErr
	}
	if err := f.enter("CurrentUser"); err != nil {
		return service.User{}, err
	}
	return *f.user, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListTasks"); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return task.CloneAll(f.tasks), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.CreateTaskRequest) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTask"); err != nil {
		return task.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return task.Task{}, f.CreateTaskErr
	}
	if err := f.CreateTaskErrFor[req.Title]; err != nil {
		return task.Task{}, err
	}
	f.creates = append(f.creates, req)

	f.nextID++
	created := req.CreatedAt
	if created.IsZero() {
		created = f.now()
	}
	t := task.Task{
		ID:          fmt.Sprintf("s%d", 100+f.nextID),
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		CreatedAt:   created,
		UpdatedAt:   f.now(),
	}
	f.tasks = append(f.tasks, t)
	return t.Clone(), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateTask"); err != nil {
		return task.Task{}, err
	}
	if f.UpdateTaskErr != nil {
		return task.Task{}, f.UpdateTaskErr
	}

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Completed != nil {
			t.Completed = *upd.Completed
		}
		if upd.DueDate != nil {
			d := *upd.DueDate
			t.DueDate = &d
		}
		t.UpdatedAt = f.now()
		f.tasks[i] = t
		return t.Clone(), nil
	}
	return task.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteTask"); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// EndSession implements service.Service.
func (f *FakeService) EndSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["EndSession"]++
	if f.EndSessionErr != nil {
		return f.EndSessionErr
	}
	f.ended = true
	f.user = nil
	return nil
}
