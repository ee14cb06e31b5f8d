// Package session owns the client's task list for one run of the program and
// applies the local/remote semantics of an unauthenticated or authenticated
// session to every mutation.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"today/internal/filter"
	"today/internal/localstore"
	"today/internal/reconcile"
	"today/internal/service"
	"today/internal/task"
)

var (
	// ErrTaskNotFound indicates no task has the given key.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskLimit indicates the list already holds the maximum number of tasks.
	ErrTaskLimit = errors.New("task limit reached")

	// ErrNotAuthenticated indicates an operation that needs a signed-in session.
	ErrNotAuthenticated = errors.New("not logged in")
)

// Options configures a Manager.
type Options struct {
	// Store is the durable local store. Required.
	Store *localstore.Store

	// Service is the remote backend; nil when no session credential exists.
	Service service.Service

	// Location is the viewer's calendar location. Defaults to time.Local.
	Location *time.Location

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// MaxTasks is the list size at which Add refuses new tasks; zero means
	// no cap.
	MaxTasks int

	// ArchiveCompleted enables end-of-day archival for unauthenticated sessions.
	ArchiveCompleted bool

	Logger *slog.Logger
}

// Manager holds the current task list.
// It is safe for concurrent use; remote calls run outside the lock and each
// one replaces or removes only the task it addresses.
type Manager struct {
	store      *localstore.Store
	svc        service.Service
	reconciler *reconcile.Reconciler
	loc        *time.Location
	now        func() time.Time
	maxTasks   int
	archive    bool
	logger     *slog.Logger

	mu          sync.Mutex
	tasks       []task.Task
	user        *service.User
	remoteErr   error
	reconciling bool
}

// New creates a Manager and loads the stored task list.
func New(opts Options) *Manager {
	m := &Manager{
		store:    opts.Store,
		svc:      opts.Service,
		loc:      opts.Location,
		now:      opts.Now,
		maxTasks: opts.MaxTasks,
		archive:  opts.ArchiveCompleted,
		logger:   opts.Logger,
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.svc != nil {
		m.reconciler = reconcile.New(m.svc, m.store, m.logger)
	}
	m.tasks = m.store.Load()
	return m
}

// Location returns the viewer's calendar location.
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Now returns the current time in the viewer's location.
func (m *Manager) Now() time.Time {
	return m.now().In(m.loc)
}

// Tasks returns a copy of the current list.
func (m *Manager) Tasks() []task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return task.CloneAll(m.tasks)
}

// Filter returns the tasks relevant to selected, numbered by their position
// in the full list. A nil selected returns every task.
func (m *Manager) Filter(selected *time.Time) []filter.Indexed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filter.IndexedByDate(m.tasks, selected, m.loc)
}

// KeyAt returns the key of the task at 1-based position num.
func (m *Manager) KeyAt(num int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if num < 1 || num > len(m.tasks) {
		return "", fmt.Errorf("task number out of range: %d", num)
	}
	return m.tasks[num-1].Key(), nil
}

// User returns the signed-in user, if any.
func (m *Manager) User() (service.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return service.User{}, false
	}
	return *m.user, true
}

// Authenticated reports whether the session is signed in.
func (m *Manager) Authenticated() bool {
	_, ok := m.User()
	return ok
}

// Resume probes an existing session credential without running a
// reconciliation. A network failure leaves the session unauthenticated and
// is remembered as the reason later mutations stay local-only.
func (m *Manager) Resume(ctx context.Context) error {
	if m.svc == nil {
		return nil
	}

	user, err := m.svc.CurrentUser(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.user = nil
		if !errors.Is(err, service.ErrUnauthorized) {
			m.remoteErr = err
		}
		return err
	}
	m.user = &user
	m.remoteErr = nil
	return nil
}

// Login performs the unauthenticated to authenticated transition: it
// confirms the session with the server and reconciles the local list once.
// A call made while the transition's reconciliation is in flight waits for
// it; a call made after the transition completed does nothing.
func (m *Manager) Login(ctx context.Context) (reconcile.Report, error) {
	if m.svc == nil {
		return reconcile.Report{Tasks: m.Tasks()}, ErrNotAuthenticated
	}

	user, err := m.svc.CurrentUser(ctx)
	if err != nil {
		return reconcile.Report{Tasks: m.Tasks()}, err
	}

	m.mu.Lock()
	if m.user != nil && m.user.ID == user.ID && !m.reconciling {
		defer m.mu.Unlock()
		return reconcile.Report{Tasks: task.CloneAll(m.tasks)}, nil
	}
	m.user = &user
	m.remoteErr = nil
	m.reconciling = true
	local := task.CloneAll(m.tasks)
	m.mu.Unlock()

	return m.runReconcile(ctx, user.ID, local)
}

// Sync reconciles the current list with the server again.
func (m *Manager) Sync(ctx context.Context) (reconcile.Report, error) {
	m.mu.Lock()
	if m.user == nil || m.reconciler == nil {
		defer m.mu.Unlock()
		return reconcile.Report{Tasks: task.CloneAll(m.tasks)}, ErrNotAuthenticated
	}
	userID := m.user.ID
	m.reconciling = true
	local := task.CloneAll(m.tasks)
	m.mu.Unlock()

	return m.runReconcile(ctx, userID, local)
}

func (m *Manager) runReconcile(ctx context.Context, userID string, local []task.Task) (reconcile.Report, error) {
	rep, err := m.reconciler.Run(ctx, userID, local)

	m.mu.Lock()
	m.reconciling = false
	r := replay(local, m.tasks, task.CloneAll(rep.Tasks))
	m.tasks = r.tasks
	rep.Tasks = task.CloneAll(r.tasks)
	if r.changed {
		m.logger.Debug("replayed mutations made during reconciliation",
			"updated", len(r.updated), "deleted", len(r.deleted))
		if serr := m.saveLocked(); serr != nil && err == nil {
			err = serr
		}
	}
	m.mu.Unlock()

	for _, t := range r.updated {
		completed := t.Completed
		if _, uerr := m.svc.UpdateTask(ctx, t.ID, service.TaskUpdate{Completed: &completed}); uerr != nil {
			m.logger.Warn("failed to update task synced during reconciliation", "id", t.ID, "error", uerr)
		}
	}
	for _, t := range r.deleted {
		if derr := m.svc.DeleteTask(ctx, t.ID); derr != nil && !errors.Is(derr, service.ErrNotFound) {
			m.logger.Warn("failed to delete task synced during reconciliation", "id", t.ID, "error", derr)
		}
	}
	return rep, err
}

type replayResult struct {
	tasks   []task.Task
	changed bool

	// updated and deleted hold tasks that were local-only in the snapshot,
	// became synced by the run and were toggled or deleted locally while it
	// ran. The server has not seen those edits yet.
	updated []task.Task
	deleted []task.Task
}

// replay applies to merged the mutations that turned snapshot into current
// while a reconciliation ran: added tasks are appended, deleted tasks are
// removed and toggled tasks take their new completion state.
func replay(snapshot, current, merged []task.Task) replayResult {
	before := make(map[string]task.Task, len(snapshot))
	for _, t := range snapshot {
		before[t.Key()] = t
	}

	var r replayResult
	kept := make(map[string]bool, len(current))
	for _, t := range current {
		kept[t.Key()] = true
		prev, known := before[t.Key()]
		i := indexOf(merged, t)
		switch {
		case !known && i < 0:
			merged = append(merged, t.Clone())
			r.changed = true
		case !known:
			if merged[i].LocalID == "" && t.LocalID != "" {
				merged[i].LocalID = t.LocalID
				r.changed = true
			}
		case i >= 0 && (t.Completed != prev.Completed || t.UpdatedAt.After(prev.UpdatedAt)):
			merged[i].Completed = t.Completed
			merged[i].UpdatedAt = t.UpdatedAt
			r.changed = true
			if merged[i].IsSynced() && !prev.IsSynced() {
				r.updated = append(r.updated, merged[i].Clone())
			}
		}
	}

	r.tasks = merged[:0]
	for _, t := range merged {
		prev, known := before[t.Key()]
		if known && !kept[t.Key()] {
			r.changed = true
			if t.IsSynced() && !prev.IsSynced() {
				r.deleted = append(r.deleted, t)
			}
			continue
		}
		r.tasks = append(r.tasks, t)
	}
	return r
}

// indexOf returns the position in tasks of the task with t's key or server
// identifier, or -1.
func indexOf(tasks []task.Task, t task.Task) int {
	for i, c := range tasks {
		if c.Key() == t.Key() || (t.ID != "" && c.ID == t.ID) {
			return i
		}
	}
	return -1
}

// Logout performs the authenticated to unauthenticated transition. Every
// task loses its server identifier and gets a local one if it has none.
// The server-side session is not touched; see service.Service.EndSession.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tasks {
		m.tasks[i] = t.Detach()
	}
	m.user = nil
	return m.saveLocked()
}

// Add creates a task. When signed in the task is created remotely too;
// a remote failure keeps it as a local-only task.
func (m *Manager) Add(ctx context.Context, title, description string, due *time.Time) (reconcile.Result, error) {
	t, err := task.New(title, description, due, m.now())
	if err != nil {
		return reconcile.Result{}, err
	}

	m.mu.Lock()
	if m.maxTasks > 0 && len(m.tasks) >= m.maxTasks {
		m.mu.Unlock()
		return reconcile.Result{}, ErrTaskLimit
	}
	online, reason := m.user != nil, m.remoteErr
	m.mu.Unlock()

	res := reconcile.LocalOnlyResult(t, reason)
	if online {
		res = reconcile.Create(ctx, m.svc, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, res.Task)
	return res, m.saveLocked()
}

// Toggle flips the completion flag of the task with the given key.
func (m *Manager) Toggle(ctx context.Context, key string) (reconcile.Result, error) {
	m.mu.Lock()
	i := m.indexLocked(key)
	if i < 0 {
		m.mu.Unlock()
		return reconcile.Result{}, ErrTaskNotFound
	}
	t := m.tasks[i].Clone()
	t.Completed = !t.Completed
	t.UpdatedAt = task.Truncate(m.now())
	online, reason := m.user != nil, m.remoteErr
	m.mu.Unlock()

	res := reconcile.LocalOnlyResult(t, nil)
	if t.IsSynced() {
		res = reconcile.LocalOnlyResult(t, reason)
		if online {
			completed := t.Completed
			updated, err := m.svc.UpdateTask(ctx, t.ID, service.TaskUpdate{Completed: &completed})
			if err != nil {
				res = reconcile.LocalOnlyResult(t, err)
			} else {
				updated.LocalID = t.LocalID
				res = reconcile.SyncedResult(updated)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(key); i >= 0 {
		m.tasks[i] = res.Task
	}
	return res, m.saveLocked()
}

// Delete removes the task with the given key. A task the server no longer
// knows counts as deleted remotely.
func (m *Manager) Delete(ctx context.Context, key string) (reconcile.Result, error) {
	m.mu.Lock()
	i := m.indexLocked(key)
	if i < 0 {
		m.mu.Unlock()
		return reconcile.Result{}, ErrTaskNotFound
	}
	t := m.tasks[i].Clone()
	online, reason := m.user != nil, m.remoteErr
	m.mu.Unlock()

	res := reconcile.LocalOnlyResult(t, nil)
	if t.IsSynced() {
		res = reconcile.LocalOnlyResult(t, reason)
		if online {
			err := m.svc.DeleteTask(ctx, t.ID)
			switch {
			case err == nil, errors.Is(err, service.ErrNotFound):
				res = reconcile.SyncedResult(t)
			default:
				res = reconcile.LocalOnlyResult(t, err)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(key); i >= 0 {
		m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	}
	return res, m.saveLocked()
}

// ArchiveIfNewDay moves completed tasks to the archive the first time it runs
// on a new calendar day. It only applies when archival is enabled and no
// session credential exists. It returns the number of archived tasks.
func (m *Manager) ArchiveIfNewDay() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.archive || m.svc != nil {
		return 0, nil
	}

	now := m.now()
	today := now.In(m.loc).Format(localstore.DateLayout)
	if m.store.LastVisit() == today {
		return 0, nil
	}

	var done, open []task.Task
	for _, t := range m.tasks {
		if t.Completed {
			done = append(done, t)
		} else {
			open = append(open, t)
		}
	}

	if len(done) > 0 {
		if err := m.store.AppendArchive(done, now); err != nil {
			return 0, err
		}
		if open == nil {
			open = []task.Task{}
		}
		m.tasks = open
		if err := m.saveLocked(); err != nil {
			return 0, err
		}
	}

	if err := m.store.SetLastVisit(today); err != nil {
		return len(done), err
	}
	return len(done), nil
}

// Archived returns the archived tasks.
func (m *Manager) Archived() []localstore.ArchivedTask {
	return m.store.LoadArchive()
}

func (m *Manager) indexLocked(key string) int {
	for i, t := range m.tasks {
		if t.Key() == key || (t.ID != "" && t.ID == key) {
			return i
		}
	}
	return -1
}

func (m *Manager) saveLocked() error {
	if err := m.store.Save(m.tasks); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}
