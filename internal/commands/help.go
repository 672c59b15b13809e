package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string          { return "help" }
func (c *HelpCmd) Aliases() []string     { return nil }
func (c *HelpCmd) Synopsis() string      { return "Print usage" }
func (c *HelpCmd) Usage() string         { return "taskdeck help" }
func (c *HelpCmd) Requires() Requirement { return RequiresNothing }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                   List all tasks, newest first
  taskdeck list [common flags] [--status all|active|completed] [--category <name>]
                [--sort date|priority|name] [--search <text>]
  taskdeck add [common flags] [--priority <p>] [--category <name>] [--due YYYY-MM-DD]
               [--desc <text>] <title...>
  taskdeck show [common flags] <ref>
  taskdeck toggle [common flags] <ref>
  taskdeck done [common flags] <ref>
  taskdeck edit [common flags] [--title <text>] [--desc <text>] [--priority <p>]
                [--category <name>] [--due YYYY-MM-DD | --clear-due] <ref>
  taskdeck rm [common flags] <ref>
  taskdeck stats [common flags]
  taskdeck upcoming [common flags] [--limit <n>]
  taskdeck remote list|add|show|toggle|rm|edit [flags] [args]
  taskdeck login [common flags] <username|email>
  taskdeck signup [common flags] <username> <email>
  taskdeck logout [common flags]
  taskdeck whoami [common flags]
  taskdeck push subscribe|unsubscribe|status [common flags]
  taskdeck push render [common flags] [payload]
  taskdeck help
  taskdeck version

A <ref> is a task number from "taskdeck list" or a unique id prefix.
Passwords are read from stdin.

Categories: Work, Personal, Shopping, Health, Finance, Other

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
