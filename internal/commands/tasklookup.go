package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"taskdeck/internal/task"
)

// defaultView is the ordering positions refer to: every task, newest first.
func defaultView(app *App) []task.Task {
	return task.Derive(app.Tasks.All(), task.Filter{}, app.Now()).Visible
}

// positions maps task ids to their 1-based position in tasks.
func positions(tasks []task.Task) map[string]int {
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i + 1
	}
	return pos
}

// lookupTask resolves ref against tasks. A numeric ref selects by position;
// when it is out of range it is retried as an id prefix.
func lookupTask(tasks []task.Task, ref TaskRef) (task.Task, error) {
	if ref.Num > 0 && ref.Num <= len(tasks) {
		return tasks[ref.Num-1], nil
	}

	var matches []task.Task
	for _, t := range tasks {
		if t.ID == ref.Prefix {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref.Prefix) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		if ref.Num > 0 {
			return task.Task{}, fmt.Errorf("%w: %d", ErrOutOfRange, ref.Num)
		}
		return task.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("%w: %s (matches %d tasks)", ErrAmbiguousRef, ref, len(matches))
	}
}

// locale returns the collation locale from config. Invalid tags fall back
// to the root collation.
func locale(app *App) language.Tag {
	tag, err := language.Parse(app.Config.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}
