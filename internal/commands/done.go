package commands

import (
	"context"
	"flag"
	"io"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string     { return "today done <n>" }
func (c *DoneCmd) NeedsAuth() bool   { return false }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if _, err := ParseTaskRef(args); err != nil {
		return reportRefError(err, errOut)
	}

	m, code := startSession(ctx, cfg, svc, true, errOut)
	if m == nil {
		return code
	}

	key, code := resolveTaskRef(m, args, errOut)
	if code != exitcode.Success {
		return code
	}

	res, err := m.Toggle(ctx, key)
	return finishMutation(cfg, res, err, out, errOut)
}
