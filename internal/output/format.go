// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/push"
	"taskdeck/internal/service"
	"taskdeck/internal/task"
)

// IDWidth is how many leading id characters are shown.
const IDWidth = 8

// FormatTask formats a task line.
// Format: "{N:>4}  {ID8}  [{x| }] {TITLE}  ({PRIORITY}[, {CATEGORY}][, due {DATE}])\n"
func FormatTask(w io.Writer, num int, t task.Task) {
	box := ' '
	if t.Completed {
		box = 'x'
	}
	fmt.Fprintf(w, "%4d  %s  [%c] %s  (%s)\n", num, ShortID(t.ID), box, normalizeTitle(t.Title), details(t))
}

// FormatTaskDetail formats a single task with its description.
func FormatTaskDetail(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "id:          %s\n", t.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(t.Title))
	fmt.Fprintf(w, "status:      %s\n", status(t))
	fmt.Fprintf(w, "priority:    %s\n", t.Priority)
	if t.Category != "" {
		fmt.Fprintf(w, "category:    %s\n", t.Category)
	}
	if t.DueDate != nil {
		fmt.Fprintf(w, "due:         %s\n", t.DueDate)
	}
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(w, "description: %s\n", flatten(d))
	}
}

// FormatStats formats the dashboard counters, one per line.
func FormatStats(w io.Writer, s task.Stats) {
	rows := []struct {
		label string
		n     int
	}{
		{"total", s.Total},
		{"completed", s.Completed},
		{"pending", s.Pending},
		{"high priority", s.HighPriority},
		{"due today", s.DueToday},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-15s%d\n", r.label+":", r.n)
	}
}

// FormatUser formats the authenticated user.
// Format: "{USERNAME}[ <{EMAIL}>]\n"
func FormatUser(w io.Writer, u service.User) {
	if u.Email != "" {
		fmt.Fprintf(w, "%s <%s>\n", u.Username, u.Email)
		return
	}
	fmt.Fprintln(w, u.Username)
}

// FormatPushStatus formats the push subscription status.
func FormatPushStatus(w io.Writer, st push.Status) {
	if !st.Supported {
		fmt.Fprintf(w, "supported:    no (%s)\n", st.Reason)
		return
	}
	fmt.Fprintln(w, "supported:    yes")
	fmt.Fprintf(w, "permission:   %s\n", st.Permission)
	if st.Subscription == nil {
		fmt.Fprintln(w, "subscription: none")
		return
	}
	fmt.Fprintf(w, "subscription: %s\n", st.Subscription.Endpoint)
}

// FormatNotification formats a notification as it would be shown.
func FormatNotification(w io.Writer, n push.Notification) {
	fmt.Fprintf(w, "title: %s\n", flatten(n.Title))
	fmt.Fprintf(w, "body:  %s\n", flatten(n.Body))
	fmt.Fprintf(w, "tag:   %s\n", n.Tag)
	fmt.Fprintf(w, "url:   %s\n", n.TargetURL())
}

// ShortID returns the displayed id prefix.
func ShortID(id string) string {
	if len(id) > IDWidth {
		return id[:IDWidth]
	}
	return id
}

func details(t task.Task) string {
	parts := []string{string(t.Priority)}
	if t.Priority == "" {
		parts[0] = string(task.PriorityMedium)
	}
	if t.Category != "" {
		parts = append(parts, t.Category)
	}
	if t.DueDate != nil {
		parts = append(parts, "due "+t.DueDate.String())
	}
	return strings.Join(parts, ", ")
}

func status(t task.Task) string {
	if t.Completed {
		return "completed"
	}
	return "active"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
