package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/output"
	"today/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `today` (no args) and `today list`.
type ListCmd struct {
	date          string
	hideCompleted bool
}

// SetDate sets the --date value (for testing).
func (c *ListCmd) SetDate(date string) {
	c.date = date
}

// SetHideCompleted sets --hide-completed (for testing).
func (c *ListCmd) SetHideCompleted(hide bool) {
	c.hideCompleted = hide
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "today list [--date <YYYY-MM-DD|today>] [--hide-completed]"
}
func (c *ListCmd) NeedsAuth() bool { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
	fs.BoolVar(&c.hideCompleted, "hide-completed", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Listing reads the local list only; sync refreshes it from the server.
	m, code := startSession(ctx, cfg, svc, false, errOut)
	if m == nil {
		return code
	}

	var selected *time.Time
	if c.date != "" {
		day, err := parseDay(c.date, m.Now(), m.Location())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		selected = &day
	}

	tasks := m.Filter(selected)
	if len(tasks) == 0 {
		fmt.Fprintln(out, "no tasks found")
		return exitcode.Success
	}

	output.FormatTaskList(out, tasks, c.hideCompleted, m.Location())
	return exitcode.Success
}
