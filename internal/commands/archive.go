package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/output"
	"today/internal/service"
)

func init() {
	Register(&ArchiveCmd{})
}

// ArchiveCmd implements the archive command.
type ArchiveCmd struct{}

func (c *ArchiveCmd) Name() string      { return "archive" }
func (c *ArchiveCmd) Aliases() []string { return nil }
func (c *ArchiveCmd) Synopsis() string  { return "List archived tasks" }
func (c *ArchiveCmd) Usage() string     { return "today archive" }
func (c *ArchiveCmd) NeedsAuth() bool   { return false }

func (c *ArchiveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ArchiveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	m, code := startSession(ctx, cfg, svc, false, errOut)
	if m == nil {
		return code
	}

	archived := m.Archived()
	if len(archived) == 0 {
		fmt.Fprintln(out, "no archived tasks")
		return exitcode.Success
	}
	for _, t := range archived {
		output.FormatArchived(out, t, m.Location())
	}
	return exitcode.Success
}
