package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/push"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd manages the push notification subscription.
type PushCmd struct{}

func (c *PushCmd) Name() string          { return "push" }
func (c *PushCmd) Aliases() []string     { return nil }
func (c *PushCmd) Synopsis() string      { return "Manage push notifications" }
func (c *PushCmd) Usage() string         { return "taskdeck push subscribe|unsubscribe|status|render [payload]" }
func (c *PushCmd) Requires() Requirement { return RequiresApp }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PushCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: subcommand required: subscribe, unsubscribe, status or render")
		return exitcode.UserError
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "subscribe":
		return c.subscribe(ctx, app, out, errOut)
	case "unsubscribe":
		app.Push.Unsubscribe(ctx)
		return ok(app, out)
	case "status":
		st, err := app.Push.Describe(ctx)
		if err != nil {
			return report(errOut, err)
		}
		output.FormatPushStatus(out, st)
		return exitcode.Success
	case "render":
		return c.render(app, rest, out, errOut)
	default:
		fmt.Fprintf(errOut, "error: unknown push subcommand: %s\n", sub)
		return exitcode.UserError
	}
}

// subscribe needs a stored token because the backend call is authenticated.
func (c *PushCmd) subscribe(ctx context.Context, app *App, out, errOut io.Writer) int {
	if !app.Session.HasToken(ctx) {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdeck login)")
		return exitcode.AuthError
	}
	sub, err := app.Push.EnsureSubscribed(ctx)
	if err != nil {
		return report(errOut, err)
	}
	if !app.Config.Quiet {
		fmt.Fprintf(out, "subscribed: %s\n", sub.Endpoint)
	}
	return exitcode.Success
}

// render shows how a push payload would be displayed. The payload is taken
// from the arguments, or from stdin when there are none.
func (c *PushCmd) render(app *App, args []string, out, errOut io.Writer) int {
	var payload string
	if len(args) > 0 {
		payload = strings.Join(args, " ")
	} else if app.In != nil {
		data, err := io.ReadAll(app.In)
		if err != nil {
			fmt.Fprintf(errOut, "error: read payload: %v\n", err)
			return exitcode.UserError
		}
		payload = string(data)
	}
	output.FormatNotification(out, push.ParseMessage([]byte(payload)))
	return exitcode.Success
}
