package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskdeck` (no args) and `taskdeck list [filters]`.
type ListCmd struct {
	status   string
	category string
	sort     string
	search   string
}

func (c *ListCmd) Name() string          { return "list" }
func (c *ListCmd) Aliases() []string     { return []string{"ls"} }
func (c *ListCmd) Synopsis() string      { return "List tasks" }
func (c *ListCmd) Requires() Requirement { return RequiresAuth }
func (c *ListCmd) Usage() string {
	return "taskdeck list [--status all|active|completed] [--category <name>] [--sort date|priority|name] [--search <text>]"
}

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.sort, "sort", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "q", "", "")
}

func (c *ListCmd) Run(ctx context.Context, app *App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	f, err := c.filter(app)
	if err != nil {
		return report(errOut, err)
	}

	// Numbers always refer to the default view so refs stay stable under
	// filtering.
	pos := positions(defaultView(app))
	view := task.Derive(app.Tasks.All(), f, app.Now())

	for _, t := range view.Visible {
		output.FormatTask(out, pos[t.ID], t)
	}

	if len(view.Visible) == 0 && !app.Config.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

func (c *ListCmd) filter(app *App) (task.Filter, error) {
	return buildFilter(app, c.status, c.category, c.sort, c.search)
}

// buildFilter validates the filter flags shared by list and remote list.
func buildFilter(app *App, status, category, sortKey, search string) (task.Filter, error) {
	st, err := task.ParseStatus(status)
	if err != nil {
		return task.Filter{}, usageError("Status", err)
	}
	key, err := task.ParseSort(sortKey)
	if err != nil {
		return task.Filter{}, usageError("Sort", err)
	}

	cat := strings.TrimSpace(category)
	switch {
	case strings.EqualFold(cat, task.CategoryAll):
		cat = task.CategoryAll
	case cat != "":
		if cat, err = parseCategory(cat); err != nil {
			return task.Filter{}, err
		}
	}

	return task.Filter{
		Status:   st,
		Category: cat,
		Sort:     key,
		Search:   strings.TrimSpace(search),
		Locale:   locale(app),
	}, nil
}
