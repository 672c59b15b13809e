package task

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus parses a status filter. Empty means all.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status: %s (want all, active or completed)", s)
	}
}

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortPriority SortKey = "priority"
	SortName     SortKey = "name"
)

// ParseSort parses a sort key. Empty means date.
func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDate, nil
	case SortDate, SortPriority, SortName:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (want date, priority or name)", s)
	}
}

// CategoryAll disables category filtering.
const CategoryAll = "all"

// UpcomingLimit is the default length of the upcoming view.
const UpcomingLimit = 4

// Filter is the transient filter/sort/search state.
// The zero value shows everything, newest first.
type Filter struct {
	Status   Status
	Category string
	Sort     SortKey
	Search   string

	// Locale selects the collation for SortName. language.Und uses the root collation.
	Locale language.Tag
}

// Stats are computed over the unfiltered collection.
type Stats struct {
	Total        int
	Completed    int
	Pending      int
	HighPriority int
	DueToday     int
}

// View is the output of Derive.
type View struct {
	Visible []Task
	Stats   Stats
}

// Derive filters and sorts tasks according to f and computes statistics over
// the whole collection. It never modifies tasks; the returned slice holds copies.
func Derive(tasks []Task, f Filter, now time.Time) View {
	visible := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t) {
			visible = append(visible, t.clone())
		}
	}
	sortTasks(visible, f)

	return View{
		Visible: visible,
		Stats:   ComputeStats(tasks, now),
	}
}

func (f Filter) matches(t Task) bool {
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if f.Category != "" && f.Category != CategoryAll && t.Category != f.Category {
		return false
	}

	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func sortTasks(tasks []Task, f Filter) {
	switch f.Sort {
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case SortName:
		c := collate.New(f.Locale)
		slices.SortStableFunc(tasks, func(a, b Task) int {
			return c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(tasks, func(a, b Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

// ComputeStats counts totals over tasks. A task is due today when its due
// date equals the calendar date of now in now's location.
func ComputeStats(tasks []Task, now time.Time) Stats {
	today := DateOf(now)

	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
			continue
		}
		if t.Priority == PriorityHigh {
			s.HighPriority++
		}
		if t.DueDate != nil && t.DueDate.Compare(today) == 0 {
			s.DueToday++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// Upcoming returns incomplete tasks with a due date, soonest first, truncated
// to limit (UpcomingLimit when limit <= 0).
func Upcoming(tasks []Task, limit int) []Task {
	if limit <= 0 {
		limit = UpcomingLimit
	}

	out := make([]Task, 0, limit)
	for _, t := range tasks {
		if !t.Completed && t.DueDate != nil {
			out = append(out, t.clone())
		}
	}
	slices.SortStableFunc(out, func(a, b Task) int {
		return a.DueDate.Compare(*b.DueDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
