package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/filter"
	"today/internal/output"
	"today/internal/service"
)

const monthLayout = "2006-01"

func init() {
	Register(&CalendarCmd{})
}

// CalendarCmd implements the calendar command.
type CalendarCmd struct {
	month string
}

// SetMonth sets the --month value (for testing).
func (c *CalendarCmd) SetMonth(month string) {
	c.month = month
}

func (c *CalendarCmd) Name() string      { return "calendar" }
func (c *CalendarCmd) Aliases() []string { return []string{"cal"} }
func (c *CalendarCmd) Synopsis() string  { return "Show a month with task counts per day" }
func (c *CalendarCmd) Usage() string     { return "today calendar [--month <YYYY-MM>]" }
func (c *CalendarCmd) NeedsAuth() bool   { return false }

func (c *CalendarCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.month, "month", "", "")
	fs.StringVar(&c.month, "m", "", "")
}

func (c *CalendarCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	m, code := startSession(ctx, cfg, svc, false, errOut)
	if m == nil {
		return code
	}

	now := m.Now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, m.Location())
	if c.month != "" {
		parsed, err := time.ParseInLocation(monthLayout, c.month, m.Location())
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid month: %s (want YYYY-MM)\n", c.month)
			return exitcode.UserError
		}
		month = parsed
	}

	counts := filter.CountByDay(m.Tasks(), month, m.Location())
	output.FormatCalendar(out, month, counts, now)
	return exitcode.Success
}
