// Package reconcile merges the local task list with the server list after
// sign-in.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"today/internal/service"
	"today/internal/task"
)

// maxConcurrentCreates bounds the remote creates in flight during one run.
const maxConcurrentCreates = 4

// Saver persists a full task list.
type Saver interface {
	Save(tasks []task.Task) error
}

// Report describes one reconciliation run.
type Report struct {
	// Tasks is the merged list, already persisted.
	Tasks []task.Task

	// Matched counts local-only tasks found equivalent to a server task.
	Matched int

	// Created holds one result per local-only task submitted for creation,
	// in local list order.
	Created []Result

	// Dropped counts synced local tasks the server no longer knows.
	Dropped int

	// Shared is true when this call joined a run already in flight.
	Shared bool
}

// Failed returns the number of create attempts that fell back to local-only.
func (r Report) Failed() int {
	n := 0
	for _, c := range r.Created {
		if c.Degraded() {
			n++
		}
	}
	return n
}

// Reconciler runs reconciliation, at most once at a time per session key.
type Reconciler struct {
	svc    service.Service
	store  Saver
	logger *slog.Logger
	group  singleflight.Group
}

// New creates a reconciler.
func New(svc service.Service, store Saver, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{svc: svc, store: store, logger: logger}
}

// Run fetches the server list, merges local into it and persists the result.
//
// Calls sharing a key while a run is in flight wait for that run and receive
// its report instead of starting another one.
//
// If the server list cannot be fetched, the local list is returned unchanged
// together with the error, and nothing is persisted.
func (r *Reconciler) Run(ctx context.Context, key string, local []task.Task) (Report, error) {
	local = task.CloneAll(local)

	v, err, shared := r.group.Do(key, func() (any, error) {
		remote, err := r.svc.ListTasks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch server tasks: %w", err)
		}

		rep := r.Merge(ctx, local, remote)
		if err := r.store.Save(rep.Tasks); err != nil {
			return rep, fmt.Errorf("failed to save merged tasks: %w", err)
		}

		r.logger.Debug("reconciled",
			"server", len(remote),
			"matched", rep.Matched,
			"created", len(rep.Created)-rep.Failed(),
			"failed", rep.Failed(),
			"dropped", rep.Dropped,
		)
		return rep, nil
	})

	if v == nil {
		return Report{Tasks: local, Shared: shared}, err
	}
	rep := v.(Report)
	rep.Shared = shared
	rep.Tasks = task.CloneAll(rep.Tasks)
	rep.Created = append([]Result(nil), rep.Created...)
	return rep, err
}

// Merge combines local with the authoritative remote list.
//
// The result starts as remote. Synced local tasks contribute only their
// LocalID display key to the server entry with the same ID. Each local-only
// task is matched against remote with task.Equivalent; every server task
// absorbs at most one local task, first match in server order. Unmatched
// local-only tasks are created remotely and appended in local order, either
// as the returned synced task or, on failure, unchanged.
func (r *Reconciler) Merge(ctx context.Context, local, remote []task.Task) Report {
	merged := task.CloneAll(remote)

	byID := make(map[string]int, len(merged))
	for i, t := range merged {
		byID[t.ID] = i
	}

	var rep Report
	claimed := make([]bool, len(merged))
	var pending []task.Task

	for _, lt := range local {
		if lt.IsSynced() {
			i, ok := byID[lt.ID]
			if !ok {
				rep.Dropped++
				continue
			}
			claimed[i] = true
			if merged[i].LocalID == "" {
				merged[i].LocalID = lt.LocalID
			}
			continue
		}

		if i := findEquivalent(merged, claimed, lt); i >= 0 {
			claimed[i] = true
			if merged[i].LocalID == "" {
				merged[i].LocalID = lt.LocalID
			}
			rep.Matched++
			continue
		}
		pending = append(pending, lt)
	}

	rep.Created = r.createAll(ctx, pending)
	for _, res := range rep.Created {
		merged = append(merged, res.Task)
	}
	rep.Tasks = merged
	return rep
}

// findEquivalent returns the index of the first unclaimed task in remote
// equivalent to t, or -1.
func findEquivalent(remote []task.Task, claimed []bool, t task.Task) int {
	for i, rt := range remote {
		if !claimed[i] && rt.Equivalent(t) {
			return i
		}
	}
	return -1
}

// createAll submits every task for remote creation concurrently. Results are
// positional, so completion order does not affect the outcome.
func (r *Reconciler) createAll(ctx context.Context, pending []task.Task) []Result {
	results := make([]Result, len(pending))

	var g errgroup.Group
	g.SetLimit(maxConcurrentCreates)
	for i, lt := range pending {
		g.Go(func() error {
			results[i] = Create(ctx, r.svc, lt)
			if results[i].Degraded() {
				r.logger.Debug("remote create failed", "localId", lt.LocalID, "error", results[i].Reason)
			}
			return nil
		})
	}
	// Failures travel in results; the goroutines never return an error.
	_ = g.Wait()

	return results
}

// Create submits a local-only task for remote creation. On success the
// returned task keeps the local LocalID as its display key; on failure the
// input task is returned unchanged as LocalOnly.
func Create(ctx context.Context, svc service.Service, lt task.Task) Result {
	created, err := svc.CreateTask(ctx, service.NewCreateTaskRequest(lt))
	if err != nil {
		return LocalOnlyResult(lt, err)
	}
	if created.ID == "" {
		return LocalOnlyResult(lt, fmt.Errorf("server returned task without id"))
	}
	created.LocalID = lt.LocalID
	return SyncedResult(created)
}
