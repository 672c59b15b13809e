// Package commands provides the command interface and implementations.
package commands

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log/slog"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/push"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/task"
)

// Requirement is what a command needs before it runs.
type Requirement int

const (
	// RequiresNothing commands get an App with only Config set.
	RequiresNothing Requirement = iota

	// RequiresApp commands get the full App without a verified session.
	RequiresApp

	// RequiresAuth commands run only with a verified session and a loaded
	// task collection.
	RequiresAuth
)

// App is everything a command can work with. One App is built per
// invocation.
type App struct {
	Config  *config.Config
	Service service.Service
	Session *session.Store
	Tasks   *task.Store
	Push    *push.Manager
	In      *bufio.Reader
	Log     *slog.Logger
	Now     func() time.Time
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Requires reports what the dispatcher must prepare.
	Requires() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// app.Config is always provided; the rest only when Requires() is not
	// RequiresNothing.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int
}
