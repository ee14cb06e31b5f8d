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

// Version is the application version. Set at build time.
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command.
type VersionCmd struct{}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version and server URL" }
func (c *VersionCmd) Usage() string     { return "today version" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {}

// Run prints the version and, unless quiet, the server the client syncs with.
func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "today %s\n", Version)
	if !cfg.Quiet {
		fmt.Fprintf(out, "server: %s\n", cfg.APIURL)
	}
	return exitcode.Success
}
