package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	due         string
	description string
}

// SetDue sets the --due value (for testing).
func (c *AddCmd) SetDue(due string) {
	c.due = due
}

// SetDescription sets the --desc value (for testing).
func (c *AddCmd) SetDescription(desc string) {
	c.description = desc
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "today add [--due <YYYY-MM-DD|today>] [--desc <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return false }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.description, "desc", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	m, code := startSession(ctx, cfg, svc, true, errOut)
	if m == nil {
		return code
	}

	var due *time.Time
	if c.due != "" {
		day, err := parseDay(c.due, m.Now(), m.Location())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		due = &day
	}

	res, err := m.Add(ctx, title, c.description, due)
	return finishMutation(cfg, res, err, out, errOut)
}
