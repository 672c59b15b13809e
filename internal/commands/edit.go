package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given flags change.
type EditCmd struct {
	fields taskFlags
}

func (c *EditCmd) Name() string          { return "edit" }
func (c *EditCmd) Aliases() []string     { return nil }
func (c *EditCmd) Synopsis() string      { return "Change fields of a task" }
func (c *EditCmd) Requires() Requirement { return RequiresAuth }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [--title <text>] [--desc <text>] [--priority <p>] [--category <name>] [--due YYYY-MM-DD | --clear-due] <ref>"
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, true)
}

func (c *EditCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}

	p, err := c.fields.patch()
	if err != nil {
		return report(errOut, err)
	}
	if p.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	view := defaultView(app)
	target, err := lookupTask(view, ref)
	if err != nil {
		return report(errOut, err)
	}

	t, found, err := app.Tasks.Edit(ctx, target.ID, p)
	if err != nil {
		return report(errOut, err)
	}
	if !found {
		return report(errOut, fmt.Errorf("%w: %s", ErrTaskNotFound, ref))
	}

	if !app.Config.Quiet {
		output.FormatTask(out, positions(view)[t.ID], t)
	}
	return exitcode.Success
}
