package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "today help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	writeHelp(out, DefaultRegistry)
	return exitcode.Success
}

// writeHelp prints the commands of r by section, then the common flags and
// settings.
func writeHelp(w io.Writer, r *Registry) {
	fmt.Fprint(w, helpHeader)
	for _, sec := range r.Sections() {
		fmt.Fprintf(w, "\n%s:\n", sec.Title)
		for _, cmd := range sec.Commands {
			fmt.Fprintf(w, "  %s\n      %s", cmd.Usage(), cmd.Synopsis())
			if aliases := cmd.Aliases(); len(aliases) > 0 {
				fmt.Fprintf(w, " (alias: %s)", strings.Join(aliases, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprint(w, helpFooter)
}

const helpHeader = `Usage:
  today [common flags] [<command> [args]]

With no command, today lists all tasks. Task numbers are the ones shown by
"today list"; they do not change with --date.
`

const helpFooter = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Settings (config.yaml in the config directory, or TODAY_* environment):
  api_url            todayd server URL (default http://localhost:3000)
  api_timeout        Timeout per server call (default 5s)
  timezone           IANA zone used for dates (default: system)
  max_tasks          Most tasks "add" accepts, 0 for none (default 100)
  archive_completed  Archive completed tasks on a new day while logged out (default true)
`
