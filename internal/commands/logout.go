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
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string          { return "logout" }
func (c *LogoutCmd) Aliases() []string     { return nil }
func (c *LogoutCmd) Synopsis() string      { return "Forget the stored token" }
func (c *LogoutCmd) Usage() string         { return "taskdeck logout [common flags]" }
func (c *LogoutCmd) Requires() Requirement { return RequiresApp }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if !app.Session.HasToken(ctx) {
		if !app.Config.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := app.Session.Logout(ctx); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.BackendError
	}
	return ok(app, out)
}

// WhoamiCmd prints the logged-in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string          { return "whoami" }
func (c *WhoamiCmd) Aliases() []string     { return nil }
func (c *WhoamiCmd) Synopsis() string      { return "Print the logged-in user" }
func (c *WhoamiCmd) Usage() string         { return "taskdeck whoami" }
func (c *WhoamiCmd) Requires() Requirement { return RequiresAuth }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	u := app.Session.User()
	if u == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdeck login)")
		return exitcode.AuthError
	}
	output.FormatUser(out, *u)
	return exitcode.Success
}
