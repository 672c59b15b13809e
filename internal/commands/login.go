package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/backend/taskapi"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/validate"
)

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
}

// LoginCmd implements the login command. The password is read from stdin.
type LoginCmd struct{}

func (c *LoginCmd) Name() string          { return "login" }
func (c *LoginCmd) Aliases() []string     { return nil }
func (c *LoginCmd) Synopsis() string      { return "Log in with a username or email" }
func (c *LoginCmd) Usage() string         { return "taskdeck login <username|email>" }
func (c *LoginCmd) Requires() Requirement { return RequiresApp }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}

	password, err := readPassword(app, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := app.Session.Login(ctx, args[0], password); err != nil {
		return authFailure(errOut, err)
	}
	return ok(app, out)
}

// SignupCmd implements the signup command. The password is read from stdin.
type SignupCmd struct{}

func (c *SignupCmd) Name() string          { return "signup" }
func (c *SignupCmd) Aliases() []string     { return []string{"register"} }
func (c *SignupCmd) Synopsis() string      { return "Create an account and log in" }
func (c *SignupCmd) Usage() string         { return "taskdeck signup <username> <email>" }
func (c *SignupCmd) Requires() Requirement { return RequiresApp }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SignupCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: username and email required")
		return exitcode.UserError
	}

	password, err := readPassword(app, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := app.Session.Signup(ctx, args[0], args[1], password); err != nil {
		return authFailure(errOut, err)
	}
	return ok(app, out)
}

// authFailure reports a failed login or signup. Validation errors are user
// errors, an unreachable API is a backend error, and anything the server
// rejected is an auth error carrying the server's message.
func authFailure(errOut io.Writer, err error) int {
	switch {
	case validate.IsValidation(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, taskapi.ErrUnreachable):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: %s\n", strings.TrimSpace(err.Error()))
		return exitcode.AuthError
	}
}
