package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/backend/taskapi"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/session"
)

// AppFactory wires an App for cfg. The returned close function releases
// whatever the App holds open and may be nil.
// Used to inject the backend and local storage during dispatch.
type AppFactory func(ctx context.Context, cfg *config.Config, in *bufio.Reader, errOut io.Writer) (*commands.App, func() error, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  AppFactory
	in       *bufio.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and app factory.
// in is the process stdin, shared by every prompt of an invocation.
func NewDispatcher(registry *commands.Registry, factory AppFactory, in io.Reader) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		in:       bufio.NewReader(in),
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	positionalArgs, err := commands.ParseFlags(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if cmd.Requires() == commands.RequiresNothing {
		return cmd.Run(ctx, &commands.App{Config: cfg}, positionalArgs, out, errOut)
	}

	app, closeApp, err := d.factory(ctx, cfg, d.in, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}
	if closeApp != nil {
		defer func() {
			if err := closeApp(); err != nil {
				app.Log.Warn("close failed", "error", err)
			}
		}()
	}
	// Detached push work started by this invocation finishes before exit.
	defer app.Session.Wait()

	if cmd.Requires() == commands.RequiresAuth {
		if code := d.authenticate(ctx, app, errOut); code != exitcode.Success {
			return code
		}
		app.Tasks.Load(ctx)
	}

	// Run command
	code := cmd.Run(ctx, app, positionalArgs, out, errOut)
	app.Log.Debug("command finished", "command", cmd.Name(), "exit", exitcode.Name(code))
	return code
}

// authenticate restores and verifies the session.
func (d *Dispatcher) authenticate(ctx context.Context, app *commands.App, errOut io.Writer) int {
	err := app.Session.Init(ctx)
	if err == nil && app.Session.State() == session.Authenticated {
		return exitcode.Success
	}

	switch {
	case errors.Is(err, taskapi.ErrUnreachable):
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.BackendError
	case err == nil:
		fmt.Fprintln(errOut, "error: not logged in (run: taskdeck login)")
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		return exitcode.AuthError
	}
}
