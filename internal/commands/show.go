package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints one task with all of its fields.
type ShowCmd struct{}

func (c *ShowCmd) Name() string          { return "show" }
func (c *ShowCmd) Aliases() []string     { return nil }
func (c *ShowCmd) Synopsis() string      { return "Print a task in full" }
func (c *ShowCmd) Usage() string         { return "taskdeck show <ref>" }
func (c *ShowCmd) Requires() Requirement { return RequiresAuth }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	t, err := lookupTask(defaultView(app), ref)
	if err != nil {
		return report(errOut, err)
	}
	output.FormatTaskDetail(out, t)
	return exitcode.Success
}
