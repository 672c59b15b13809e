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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. "done" is kept as an alias.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string          { return "toggle" }
func (c *ToggleCmd) Aliases() []string     { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string      { return "Flip a task between active and completed" }
func (c *ToggleCmd) Usage() string         { return "taskdeck toggle <ref>" }
func (c *ToggleCmd) Requires() Requirement { return RequiresAuth }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	view := defaultView(app)
	target, err := lookupTask(view, ref)
	if err != nil {
		return report(errOut, err)
	}

	t, found, err := app.Tasks.Toggle(ctx, target.ID)
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
