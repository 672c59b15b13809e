package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/task"
)

func init() {
	Register(&RemoteCmd{})
}

// RemoteCmd works on the server-side task collection through the API.
// Positions refer to the unfiltered server listing.
type RemoteCmd struct{}

func (c *RemoteCmd) Name() string          { return "remote" }
func (c *RemoteCmd) Aliases() []string     { return nil }
func (c *RemoteCmd) Synopsis() string      { return "Work with tasks stored on the server" }
func (c *RemoteCmd) Usage() string         { return "taskdeck remote list|add|show|toggle|rm|edit [flags] [args]" }
func (c *RemoteCmd) Requires() Requirement { return RequiresAuth }

func (c *RemoteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RemoteCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: subcommand required: list, add, show, toggle, rm or edit")
		return exitcode.UserError
	}

	sub := args[0]
	fs := flag.NewFlagSet("remote "+sub, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var run func(args []string) int
	switch sub {
	case "list", "ls":
		var status, category, sortKey, search string
		fs.StringVar(&status, "status", "", "")
		fs.StringVar(&category, "category", "", "")
		fs.StringVar(&sortKey, "sort", "", "")
		fs.StringVar(&search, "search", "", "")
		run = func(args []string) int {
			return c.list(ctx, app, args, status, category, sortKey, search, out, errOut)
		}
	case "add":
		var fields taskFlags
		fields.register(fs, false)
		run = func(args []string) int { return c.add(ctx, app, args, &fields, out, errOut) }
	case "edit":
		var fields taskFlags
		fields.register(fs, true)
		run = func(args []string) int { return c.edit(ctx, app, args, &fields, out, errOut) }
	case "show":
		run = func(args []string) int { return c.show(ctx, app, args, out, errOut) }
	case "toggle", "done":
		run = func(args []string) int { return c.toggle(ctx, app, args, out, errOut) }
	case "rm", "delete":
		run = func(args []string) int { return c.rm(ctx, app, args, out, errOut) }
	default:
		fmt.Fprintf(errOut, "error: unknown remote subcommand: %s\n", sub)
		return exitcode.UserError
	}

	positional, err := ParseFlags(fs, args[1:])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return run(positional)
}

func (c *RemoteCmd) list(ctx context.Context, app *App, args []string, status, category, sortKey, search string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	f, err := buildFilter(app, status, category, sortKey, search)
	if err != nil {
		return report(errOut, err)
	}

	q := service.TaskQuery{Search: f.Search}
	if status != "" {
		q.Status = f.Status
	}
	if sortKey != "" {
		q.Sort = f.Sort
	}
	if f.Category != task.CategoryAll {
		q.Category = f.Category
	}

	tasks, err := app.Service.ListTasks(ctx, q)
	if err != nil {
		return report(errOut, err)
	}

	all := tasks
	if q != (service.TaskQuery{}) {
		if all, err = app.Service.ListTasks(ctx, service.TaskQuery{}); err != nil {
			return report(errOut, err)
		}
	}
	pos := positions(all)

	for _, t := range tasks {
		output.FormatTask(out, pos[t.ID], t)
	}
	if len(tasks) == 0 && !app.Config.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

func (c *RemoteCmd) add(ctx context.Context, app *App, args []string, fields *taskFlags, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	in, err := fields.input(title)
	if err != nil {
		return report(errOut, err)
	}

	t, err := app.Service.CreateTask(ctx, in)
	if err != nil {
		return report(errOut, err)
	}
	app.Log.Info("remote task created", "id", t.ID)
	return ok(app, out)
}

// resolve finds the remote task ref points at.
func (c *RemoteCmd) resolve(ctx context.Context, app *App, args []string) ([]task.Task, task.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return nil, task.Task{}, err
	}
	all, err := app.Service.ListTasks(ctx, service.TaskQuery{})
	if err != nil {
		return nil, task.Task{}, err
	}
	t, err := lookupTask(all, ref)
	return all, t, err
}

func (c *RemoteCmd) show(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	_, target, err := c.resolve(ctx, app, args)
	if err != nil {
		return report(errOut, err)
	}
	t, err := app.Service.GetTask(ctx, target.ID)
	if err != nil {
		return report(errOut, err)
	}
	output.FormatTaskDetail(out, t)
	return exitcode.Success
}

func (c *RemoteCmd) toggle(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	all, target, err := c.resolve(ctx, app, args)
	if err != nil {
		return report(errOut, err)
	}
	t, err := app.Service.ToggleTask(ctx, target.ID)
	if err != nil {
		return report(errOut, err)
	}
	if !app.Config.Quiet {
		output.FormatTask(out, positions(all)[target.ID], t)
	}
	return exitcode.Success
}

func (c *RemoteCmd) rm(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	_, target, err := c.resolve(ctx, app, args)
	if err != nil {
		return report(errOut, err)
	}
	if err := app.Service.DeleteTask(ctx, target.ID); err != nil {
		return report(errOut, err)
	}
	app.Log.Info("remote task deleted", "id", target.ID)
	return ok(app, out)
}

func (c *RemoteCmd) edit(ctx context.Context, app *App, args []string, fields *taskFlags, out, errOut io.Writer) int {
	p, err := fields.patch()
	if err != nil {
		return report(errOut, err)
	}
	if p.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	all, target, err := c.resolve(ctx, app, args)
	if err != nil {
		return report(errOut, err)
	}
	t, err := app.Service.UpdateTask(ctx, target.ID, p)
	if err != nil {
		return report(errOut, err)
	}
	if !app.Config.Quiet {
		output.FormatTask(out, positions(all)[target.ID], t)
	}
	return exitcode.Success
}
