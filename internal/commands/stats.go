package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/task"
)

func init() {
	Register(&StatsCmd{})
	Register(&UpcomingCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string          { return "stats" }
func (c *StatsCmd) Aliases() []string     { return nil }
func (c *StatsCmd) Synopsis() string      { return "Print task counters" }
func (c *StatsCmd) Usage() string         { return "taskdeck stats" }
func (c *StatsCmd) Requires() Requirement { return RequiresAuth }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	output.FormatStats(out, task.ComputeStats(app.Tasks.All(), app.Now()))
	return exitcode.Success
}

// UpcomingCmd lists the next incomplete tasks with a due date.
type UpcomingCmd struct {
	limit int
}

func (c *UpcomingCmd) Name() string          { return "upcoming" }
func (c *UpcomingCmd) Aliases() []string     { return nil }
func (c *UpcomingCmd) Synopsis() string      { return "List the next due tasks" }
func (c *UpcomingCmd) Usage() string         { return "taskdeck upcoming [--limit <n>]" }
func (c *UpcomingCmd) Requires() Requirement { return RequiresAuth }

func (c *UpcomingCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.limit, "limit", task.UpcomingLimit, "")
	fs.IntVar(&c.limit, "n", task.UpcomingLimit, "")
}

func (c *UpcomingCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if c.limit < 1 {
		fmt.Fprintf(errOut, "error: invalid limit: %d\n", c.limit)
		return exitcode.UserError
	}

	all := app.Tasks.All()
	pos := positions(task.Derive(all, task.Filter{}, app.Now()).Visible)
	upcoming := task.Upcoming(all, c.limit)

	for _, t := range upcoming {
		output.FormatTask(out, pos[t.ID], t)
	}
	if len(upcoming) == 0 && !app.Config.Quiet {
		fmt.Fprintln(out, "no upcoming tasks")
	}
	return exitcode.Success
}
