package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"today/internal/commands"
	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/service"
	"today/internal/testutil"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	commands.Now = func() time.Time { return testNow }
	os.Exit(m.Run())
}

// setNow moves the clock for the rest of the test.
func setNow(t *testing.T, now time.Time) {
	t.Helper()
	commands.Now = func() time.Time { return now }
	t.Cleanup(func() {
		commands.Now = func() time.Time { return testNow }
	})
}

// newConfig returns a config rooted in a temp dir, in UTC.
func newConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	return &config.Config{
		Dir:        t.TempDir(),
		Quiet:      quiet,
		APIURL:     config.DefaultAPIURL,
		APITimeout: time.Second,
		Timezone:   "UTC",
		MaxTasks:   config.DefaultMaxTasks,
	}
}

// runCommand is a helper to run a command with FakeService.
// A nil svc runs the command without a session.
func runCommand(t *testing.T, cmd commands.Command, cfg *config.Config, svc *testutil.FakeService, args []string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	var s service.Service
	if svc != nil {
		s = svc
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, s, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// mustRun runs cmd and fails the test on a non-zero exit code.
func mustRun(t *testing.T, cmd commands.Command, cfg *config.Config, svc *testutil.FakeService, args ...string) string {
	t.Helper()
	stdout, stderr, code := runCommand(t, cmd, cfg, svc, args)
	if code != exitcode.Success {
		t.Fatalf("%s %v: exit code %d, stderr %q", cmd.Name(), args, code, stderr)
	}
	return stdout
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newConfig(t, false), nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "today 0.1.0\nserver: http://localhost:3000\n" {
		t.Errorf("expected version output, got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.VersionCmd{}, newConfig(t, true), nil, nil)
	if stdout != "today 0.1.0\n" {
		t.Errorf("expected bare version when quiet, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newConfig(t, false), nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "Common flags:", "today calendar", "today sync", "List tasks (alias: ls)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected help output to contain %q", want)
		}
	}
}

func TestRegistry_AllCommandsRegistered(t *testing.T) {
	for _, name := range []string{
		"list", "ls", "add", "create", "done", "toggle", "rm", "delete",
		"calendar", "cal", "archive", "sync", "login", "logout", "whoami", "help", "version",
	} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRegistry_Sections(t *testing.T) {
	var got []string
	for _, sec := range commands.DefaultRegistry.Sections() {
		names := make([]string, len(sec.Commands))
		for i, cmd := range sec.Commands {
			names[i] = cmd.Name()
		}
		got = append(got, sec.Title+": "+strings.Join(names, " "))
	}
	want := []string{
		"Tasks: list add done rm calendar archive",
		"Account: login sync whoami logout",
		"Other: help version",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected sections:\n%s", strings.Join(got, "\n"))
	}
}

func TestRegistry_SectionsSkipEmptyTopics(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.VersionCmd{}); err != nil {
		t.Fatal(err)
	}
	secs := r.Sections()
	if len(secs) != 1 || secs[0].Title != "Other" || len(secs[0].Commands) != 1 {
		t.Errorf("expected only the Other section, got %+v", secs)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.AddCmd{}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("expected 1 command, got %d", got)
	}
}

func TestList_Empty(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, newConfig(t, false), nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}
}

func TestAddDoneList_Local(t *testing.T) {
	cfg := newConfig(t, false)

	add := &commands.AddCmd{}
	add.SetDue("2024-03-09")
	if out := mustRun(t, add, cfg, nil, "Buy", "milk"); out != "ok\n" {
		t.Errorf("expected ok, got %q", out)
	}
	mustRun(t, &commands.AddCmd{}, cfg, nil, "Write report")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "Call mom")
	mustRun(t, &commands.DoneCmd{}, cfg, nil, "2")

	stdout := mustRun(t, &commands.ListCmd{}, cfg, nil)
	testutil.GoldenString(t, "list_local", stdout)
}

func TestList_DateFilterKeepsNumbers(t *testing.T) {
	cfg := newConfig(t, false)

	add := &commands.AddCmd{}
	add.SetDue("2024-03-09")
	mustRun(t, add, cfg, nil, "due earlier")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "created today")

	list := &commands.ListCmd{}
	list.SetDate("2024-03-09")
	if got := mustRun(t, list, cfg, nil); got != "Tasks: 1  Completed: 0\n   1  [ ] due earlier  (due 2024-03-09)\n" {
		t.Errorf("unexpected output %q", got)
	}

	list.SetDate("today")
	if got := mustRun(t, list, cfg, nil); got != "Tasks: 1  Completed: 0\n   2  [ ] created today\n" {
		t.Errorf("unexpected output %q", got)
	}

	list.SetDate("2024-01-01")
	if got := mustRun(t, list, cfg, nil); got != "no tasks found\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestList_HideCompleted(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "open")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "closed")
	mustRun(t, &commands.DoneCmd{}, cfg, nil, "2")

	list := &commands.ListCmd{}
	list.SetHideCompleted(true)
	if got := mustRun(t, list, cfg, nil); got != "Tasks: 2  Completed: 1\n   1  [ ] open\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestList_InvalidDate(t *testing.T) {
	list := &commands.ListCmd{}
	list.SetDate("2024-13-01")

	stdout, stderr, code := runCommand(t, list, newConfig(t, false), nil, nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: invalid date: 2024-13-01 (want YYYY-MM-DD)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAdd_TitleRequired(t *testing.T) {
	for _, args := range [][]string{nil, {"  "}} {
		_, stderr, code := runCommand(t, &commands.AddCmd{}, newConfig(t, false), nil, args)
		if code != exitcode.UserError {
			t.Errorf("%q: expected exit code %d, got %d", args, exitcode.UserError, code)
		}
		if stderr != "error: title required\n" {
			t.Errorf("%q: unexpected stderr %q", args, stderr)
		}
	}
}

func TestAdd_Quiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, newConfig(t, true), nil, []string{"task"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output, got %q / %q", stdout, stderr)
	}
}

func TestAdd_TaskLimit(t *testing.T) {
	cfg := newConfig(t, false)
	cfg.MaxTasks = 1
	mustRun(t, &commands.AddCmd{}, cfg, nil, "one")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, cfg, nil, []string{"two"})
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task limit reached\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAdd_SignedInCreatesRemotely(t *testing.T) {
	cfg := newConfig(t, false)
	svc := testutil.NewFakeService()

	add := &commands.AddCmd{}
	add.SetDescription("two liters")
	stdout, stderr, code := runCommand(t, add, cfg, svc, []string{"Buy milk"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" || stderr != "" {
		t.Errorf("unexpected output %q / %q", stdout, stderr)
	}

	creates := svc.Creates()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	if creates[0].Title != "Buy milk" || creates[0].Description != "two liters" {
		t.Errorf("unexpected create request %+v", creates[0])
	}
	if !creates[0].CreatedAt.Equal(testNow) {
		t.Errorf("expected createdAt %v, got %v", testNow, creates[0].CreatedAt)
	}
}

func TestAdd_ServerUnreachableSavesLocally(t *testing.T) {
	cfg := newConfig(t, false)
	svc := testutil.NewFakeService()
	svc.CurrentUserErr = errors.New("connection refused")

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, cfg, svc, []string{"offline"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	want := "notice: server unreachable, working offline: connection refused\n" +
		"notice: saved locally only: connection refused\n"
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
	if svc.Calls("CreateTask") != 0 {
		t.Error("expected no remote create while offline")
	}

	if got := mustRun(t, &commands.ListCmd{}, cfg, nil); got != "Tasks: 1  Completed: 0\n   1  [ ] offline\n" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestAdd_SessionExpired(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SignOut()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, newConfig(t, false), svc, []string{"task"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "notice: session expired, working offline (run: today login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAdd_RemoteCreateFails(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("backend error: status 500")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, newConfig(t, false), svc, []string{"task"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "notice: saved locally only: backend error: status 500\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDone_Errors(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "only")

	tests := []struct {
		args []string
		want string
	}{
		{nil, "error: task reference required\n"},
		{[]string{"x"}, "error: invalid task reference: x\n"},
		{[]string{"3"}, "error: task number out of range: 3\n"},
	}
	for _, tt := range tests {
		_, stderr, code := runCommand(t, &commands.DoneCmd{}, cfg, nil, tt.args)
		if code != exitcode.UserError {
			t.Errorf("%v: expected exit code %d, got %d", tt.args, exitcode.UserError, code)
		}
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, stderr)
		}
	}
}

func TestDone_TogglesBack(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "flip")
	mustRun(t, &commands.DoneCmd{}, cfg, nil, "1")
	mustRun(t, &commands.DoneCmd{}, cfg, nil, "1")

	if got := mustRun(t, &commands.ListCmd{}, cfg, nil); got != "Tasks: 1  Completed: 0\n   1  [ ] flip\n" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestDone_SignedInUpdatesServer(t *testing.T) {
	cfg := newConfig(t, false)
	svc := testutil.NewFakeService()
	mustRun(t, &commands.AddCmd{}, cfg, svc, "remote")

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, cfg, svc, []string{"1"})
	if code != exitcode.Success || stdout != "ok\n" || stderr != "" {
		t.Fatalf("unexpected result %d %q %q", code, stdout, stderr)
	}

	remote := svc.Tasks()
	if len(remote) != 1 || !remote[0].Completed {
		t.Errorf("expected the server task to be completed, got %+v", remote)
	}
}

func TestRm_Local(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "first")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "second")

	if out := mustRun(t, &commands.RmCmd{}, cfg, nil, "1"); out != "ok\n" {
		t.Errorf("expected ok, got %q", out)
	}
	if got := mustRun(t, &commands.ListCmd{}, cfg, nil); got != "Tasks: 1  Completed: 0\n   1  [ ] second\n" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestRm_SignedInDeletesRemotely(t *testing.T) {
	cfg := newConfig(t, false)
	svc := testutil.NewFakeService()
	mustRun(t, &commands.AddCmd{}, cfg, svc, "remote")
	mustRun(t, &commands.RmCmd{}, cfg, svc, "1")

	if n := len(svc.Tasks()); n != 0 {
		t.Errorf("expected no server tasks, got %d", n)
	}
}

func TestRm_RemoteFailureStillRemovesLocally(t *testing.T) {
	cfg := newConfig(t, false)
	svc := testutil.NewFakeService()
	mustRun(t, &commands.AddCmd{}, cfg, svc, "remote")
	svc.DeleteTaskErr = errors.New("timeout")

	_, stderr, code := runCommand(t, &commands.RmCmd{}, cfg, svc, []string{"1"})
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	want := "notice: saved locally only: timeout\n" +
		"notice: server still has \"remote\"; the next sync restores it\n"
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
	if got := mustRun(t, &commands.ListCmd{}, cfg, nil); got != "no tasks found\n" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestDone_SessionExpiredWarnsAboutServerCopy(t *testing.T) {
	cfg := newConfig(t, false)
	svc := testutil.NewFakeService()
	mustRun(t, &commands.AddCmd{}, cfg, svc, "remote")
	svc.SignOut()

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, cfg, svc, []string{"1"})
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	want := "notice: session expired, working offline (run: today login)\n" +
		"notice: server still has \"remote\"; the next sync restores it\n"
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
	if svc.Calls("UpdateTask") != 0 {
		t.Error("expected no remote update with an expired session")
	}
}

func TestDone_LocalTaskHasNoServerCopyNotice(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "local")

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, cfg, nil, []string{"1"})
	if code != exitcode.Success || stderr != "" {
		t.Errorf("expected silent success, got %d %q", code, stderr)
	}
}

func TestSync_UploadsLocalTasks(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "one")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "two")

	svc := testutil.NewFakeService()
	stdout, stderr, code := runCommand(t, &commands.SyncCmd{}, cfg, svc, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "synced 2 tasks (matched 0, uploaded 2, failed 0, removed 0)\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	// A second sync finds every task already on the server.
	stdout = mustRun(t, &commands.SyncCmd{}, cfg, svc)
	if stdout != "synced 2 tasks (matched 0, uploaded 0, failed 0, removed 0)\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if n := len(svc.Creates()); n != 2 {
		t.Errorf("expected 2 creates in total, got %d", n)
	}
}

func TestSync_PartialFailure(t *testing.T) {
	cfg := newConfig(t, false)
	mustRun(t, &commands.AddCmd{}, cfg, nil, "good")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "bad")

	svc := testutil.NewFakeService()
	svc.CreateTaskErrFor["bad"] = errors.New("rejected")

	stdout, stderr, code := runCommand(t, &commands.SyncCmd{}, cfg, svc, nil)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "synced 2 tasks (matched 0, uploaded 1, failed 1, removed 0)\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "notice: not uploaded: bad: rejected\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestSync_SessionExpired(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SignOut()

	_, stderr, code := runCommand(t, &commands.SyncCmd{}, newConfig(t, false), svc, nil)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: today login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestSync_ServerDown(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CurrentUserErr = errors.New("connection refused")

	_, stderr, code := runCommand(t, &commands.SyncCmd{}, newConfig(t, false), svc, nil)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestWhoami(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, newConfig(t, false), testutil.NewFakeService(), nil)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Test User <test@example.com>\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestCalendar(t *testing.T) {
	cfg := newConfig(t, false)
	add := &commands.AddCmd{}
	add.SetDue("2024-03-09")
	mustRun(t, add, cfg, nil, "due")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "a")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "b")

	stdout := mustRun(t, &commands.CalendarCmd{}, cfg, nil)
	testutil.GoldenString(t, "calendar", stdout)

	other := &commands.CalendarCmd{}
	other.SetMonth("2024-04")
	if got := mustRun(t, other, cfg, nil); strings.Contains(got, "+") || !strings.HasPrefix(got, "April 2024\n") {
		t.Errorf("unexpected April calendar %q", got)
	}
}

func TestCalendar_InvalidMonth(t *testing.T) {
	cal := &commands.CalendarCmd{}
	cal.SetMonth("March")

	_, stderr, code := runCommand(t, cal, newConfig(t, false), nil, nil)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid month: March (want YYYY-MM)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestArchive_OnNewDay(t *testing.T) {
	cfg := newConfig(t, false)
	cfg.ArchiveCompleted = true

	mustRun(t, &commands.AddCmd{}, cfg, nil, "finished")
	mustRun(t, &commands.AddCmd{}, cfg, nil, "pending")
	mustRun(t, &commands.DoneCmd{}, cfg, nil, "1")

	if got := mustRun(t, &commands.ArchiveCmd{}, cfg, nil); got != "no archived tasks\n" {
		t.Errorf("expected no archive on the same day, got %q", got)
	}

	setNow(t, testNow.Add(24*time.Hour))

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, cfg, nil, nil)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "notice: archived 1 completed task\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if stdout != "Tasks: 1  Completed: 0\n   1  [ ] pending\n" {
		t.Errorf("unexpected list %q", stdout)
	}

	if got := mustRun(t, &commands.ArchiveCmd{}, cfg, nil); got != "2024-03-16  finished\n" {
		t.Errorf("unexpected archive %q", got)
	}
}

func TestArchive_SkippedWithSession(t *testing.T) {
	cfg := newConfig(t, false)
	cfg.ArchiveCompleted = true
	svc := testutil.NewFakeService()

	mustRun(t, &commands.AddCmd{}, cfg, svc, "finished")
	mustRun(t, &commands.DoneCmd{}, cfg, svc, "1")

	setNow(t, testNow.Add(24*time.Hour))

	stdout, stderr, _ := runCommand(t, &commands.ListCmd{}, cfg, svc, nil)
	if stderr != "" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if stdout != "Tasks: 1  Completed: 1\n   1  [x] finished\n" {
		t.Errorf("unexpected list %q", stdout)
	}
}
