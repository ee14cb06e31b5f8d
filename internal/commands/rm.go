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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "today rm <n>" }
func (c *RmCmd) NeedsAuth() bool   { return false }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	res, err := m.Delete(ctx, key)
	return finishMutation(cfg, res, err, out, errOut)
}
