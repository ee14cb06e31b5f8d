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
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the signed-in account" }
func (c *WhoamiCmd) Usage() string     { return "today whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		return reportRemoteError(err, errOut)
	}

	switch {
	case user.Name != "" && user.Email != "":
		fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
	case user.Email != "":
		fmt.Fprintln(out, user.Email)
	default:
		fmt.Fprintln(out, user.ID)
	}
	return exitcode.Success
}
