package commands

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"taskdeck/internal/task"
	"taskdeck/internal/validate"
)

// ParseFlags parses args into fs and returns the positional arguments.
// Errors are already phrased for "error: <msg>" output.
func ParseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		// Check for missing flag value
		if strings.Contains(errStr, "flag needs an argument") {
			flagPart := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
			return nil, fmt.Errorf("flag needs an argument: %s", flagPart)
		}

		// Check for unknown flag
		if strings.HasPrefix(errStr, "flag provided but not defined:") {
			flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
			return nil, fmt.Errorf("unknown flag: %s", flagName)
		}

		return nil, errors.New(errStr)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") && positional[0] != "-" {
		return nil, fmt.Errorf("unknown flag: %s", positional[0])
	}
	return positional, nil
}

// optionalString is a string flag that remembers whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// taskFlags are the task field flags shared by add, edit and the remote
// variants.
type taskFlags struct {
	title    optionalString
	desc     optionalString
	priority optionalString
	category optionalString
	due      optionalString
	clearDue bool
}

// register resets the flags and registers them on fs. The title and
// clear-due flags only exist for edits.
func (f *taskFlags) register(fs *flag.FlagSet, edit bool) {
	*f = taskFlags{}
	fs.Var(&f.desc, "desc", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.priority, "p", "")
	fs.Var(&f.category, "category", "")
	fs.Var(&f.category, "c", "")
	fs.Var(&f.due, "due", "")
	if edit {
		fs.Var(&f.title, "title", "")
		fs.BoolVar(&f.clearDue, "clear-due", false, "")
	}
}

// input builds a task.Input from title and the flags.
func (f *taskFlags) input(title string) (task.Input, error) {
	in := task.Input{Title: title, Description: f.desc.value}

	if f.priority.set {
		p, err := task.ParsePriority(f.priority.value)
		if err != nil {
			return task.Input{}, validate.Field("Priority", err.Error())
		}
		in.Priority = p
	}
	if f.category.set {
		c, err := parseCategory(f.category.value)
		if err != nil {
			return task.Input{}, err
		}
		in.Category = c
	}
	if f.due.set && f.due.value != "" {
		d, err := parseDue(f.due.value)
		if err != nil {
			return task.Input{}, err
		}
		in.DueDate = &d
	}
	return in, nil
}

// patch builds a task.Patch holding only the flags that were given.
func (f *taskFlags) patch() (task.Patch, error) {
	var p task.Patch
	if f.title.set {
		v := strings.TrimSpace(f.title.value)
		p.Title = &v
	}
	if f.desc.set {
		v := f.desc.value
		p.Description = &v
	}
	if f.priority.set {
		pr, err := task.ParsePriority(f.priority.value)
		if err != nil || f.priority.value == "" {
			return task.Patch{}, validate.Field("Priority", fmt.Sprintf("invalid priority: %s", f.priority.value))
		}
		p.Priority = &pr
	}
	if f.category.set {
		c, err := parseCategory(f.category.value)
		if err != nil {
			return task.Patch{}, err
		}
		p.Category = &c
	}
	if f.due.set && f.clearDue {
		return task.Patch{}, validate.Field("DueDate", "cannot use both --due and --clear-due")
	}
	if f.due.set {
		d, err := parseDue(f.due.value)
		if err != nil {
			return task.Patch{}, err
		}
		p.DueDate = &d
	}
	p.ClearDueDate = f.clearDue
	return p, nil
}

// parseCategory matches a category case-insensitively. Empty clears it.
func parseCategory(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, c := range task.Categories {
		if strings.EqualFold(c, s) {
			return c, nil
		}
	}
	return "", validate.Field("Category", fmt.Sprintf("invalid category: %s (want one of %s)", s, strings.Join(task.Categories, ", ")))
}

func parseDue(s string) (task.Date, error) {
	d, err := task.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return task.Date{}, validate.Field("DueDate", fmt.Sprintf("invalid due date: %s (want YYYY-MM-DD)", s))
	}
	return d, nil
}
