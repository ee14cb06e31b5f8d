package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/service"
)

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct{}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return nil }
func (c *SyncCmd) Synopsis() string  { return "Reconcile local tasks with the server" }
func (c *SyncCmd) Usage() string     { return "today sync" }
func (c *SyncCmd) NeedsAuth() bool   { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	m, code := startSession(ctx, cfg, svc, false, errOut)
	if m == nil {
		return code
	}
	if err := m.Resume(ctx); err != nil {
		return reportRemoteError(err, errOut)
	}

	rep, err := m.Sync(ctx)
	if err != nil {
		return reportRemoteError(err, errOut)
	}
	reportSync(cfg, rep, out, errOut)
	return exitcode.Success
}
