package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string          { return "rm" }
func (c *RmCmd) Aliases() []string     { return []string{"delete"} }
func (c *RmCmd) Synopsis() string      { return "Delete a task" }
func (c *RmCmd) Usage() string         { return "taskdeck rm <ref>" }
func (c *RmCmd) Requires() Requirement { return RequiresAuth }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	target, err := lookupTask(defaultView(app), ref)
	if err != nil {
		return report(errOut, err)
	}

	found, err := app.Tasks.Delete(ctx, target.ID)
	if err != nil {
		return report(errOut, err)
	}
	if !found {
		return report(errOut, fmt.Errorf("%w: %s", ErrTaskNotFound, ref))
	}
	app.Log.Info("task deleted", "id", target.ID)

	return ok(app, out)
}
