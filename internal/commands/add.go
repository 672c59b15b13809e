package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	fields taskFlags
}

func (c *AddCmd) Name() string          { return "add" }
func (c *AddCmd) Aliases() []string     { return []string{"create"} }
func (c *AddCmd) Synopsis() string      { return "Create a task" }
func (c *AddCmd) Requires() Requirement { return RequiresAuth }
func (c *AddCmd) Usage() string {
	return "taskdeck add [--priority low|medium|high] [--category <name>] [--due YYYY-MM-DD] [--desc <text>] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, false)
}

func (c *AddCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	in, err := c.fields.input(title)
	if err != nil {
		return report(errOut, err)
	}

	t, err := app.Tasks.Add(ctx, in)
	if err != nil {
		return report(errOut, err)
	}
	app.Log.Info("task created", "id", t.ID)

	return ok(app, out)
}
