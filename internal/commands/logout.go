package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/output"
	"today/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
// Tasks stay on this machine as local tasks.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Sign out and keep tasks locally" }
func (c *LogoutCmd) Usage() string     { return "today logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	hadSession := cfg.HasSession()

	if svc != nil {
		if err := svc.EndSession(ctx); err != nil && !errors.Is(err, service.ErrUnauthorized) {
			output.Notice(errOut, "could not end server session: %v", err)
		}
	}

	m, err := openManager(cfg, nil, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := m.Logout(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !hadSession {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveSession(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
