package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/localstore"
	"today/internal/output"
	"today/internal/reconcile"
	"today/internal/service"
	"today/internal/session"
	"today/internal/task"
)

// Now returns the current time. Tests replace it.
var Now = time.Now

// openManager builds the task session for cfg.
func openManager(cfg *config.Config, svc service.Service, errOut io.Writer) (*session.Manager, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger(errOut)
	return session.New(session.Options{
		Store:            localstore.New(cfg.Dir, logger),
		Service:          svc,
		Location:         loc,
		Now:              Now,
		MaxTasks:         cfg.MaxTasks,
		ArchiveCompleted: cfg.ArchiveCompleted,
		Logger:           logger,
	}), nil
}

// startSession opens the task session. With resume set, a stored session is
// probed first; an unreachable server or an expired session only produces a
// notice and the command continues offline. Completed tasks left from an
// earlier day are archived.
func startSession(ctx context.Context, cfg *config.Config, svc service.Service, resume bool, errOut io.Writer) (*session.Manager, int) {
	m, err := openManager(cfg, svc, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}

	if resume && svc != nil {
		if err := m.Resume(ctx); err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				output.Notice(errOut, "session expired, working offline (run: today login)")
			} else {
				output.Notice(errOut, "server unreachable, working offline: %v", err)
			}
		}
	}

	n, err := m.ArchiveIfNewDay()
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to archive tasks: %v\n", err)
		return nil, exitcode.BackendError
	}
	if n > 0 && !cfg.Quiet {
		output.Notice(errOut, "archived %d completed %s", n, plural(n, "task"))
	}
	return m, exitcode.Success
}

// finishMutation reports the outcome of add, done or rm.
func finishMutation(cfg *config.Config, res reconcile.Result, err error, out, errOut io.Writer) int {
	switch {
	case errors.Is(err, task.ErrEmptyTitle), errors.Is(err, session.ErrTaskLimit), errors.Is(err, session.ErrTaskNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case err != nil:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	if res.Degraded() {
		output.Notice(errOut, "saved locally only: %v", res.Reason)
	}
	if res.Diverged() {
		output.Notice(errOut, "server still has %q; the next sync restores it", res.Task.Title)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// reportSync prints a reconciliation summary and a notice per failed create.
func reportSync(cfg *config.Config, rep reconcile.Report, out, errOut io.Writer) {
	for _, c := range rep.Created {
		if c.Degraded() {
			output.Notice(errOut, "not uploaded: %s: %v", c.Task.Title, c.Reason)
		}
	}
	if cfg.Quiet {
		return
	}
	fmt.Fprintf(out, "synced %d %s (matched %d, uploaded %d, failed %d, removed %d)\n",
		len(rep.Tasks), plural(len(rep.Tasks), "task"),
		rep.Matched, len(rep.Created)-rep.Failed(), rep.Failed(), rep.Dropped)
}

// parseDay parses "today" or YYYY-MM-DD as midnight in loc.
func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if strings.EqualFold(s, "today") {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(localstore.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", s)
	}
	return day, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// reportRemoteError prints err from a call that cannot fall back to the
// local list and returns the exit code.
func reportRemoteError(err error, errOut io.Writer) int {
	if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, session.ErrNotAuthenticated) {
		fmt.Fprintln(errOut, "error: session expired (run: today login)")
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
