// Package task holds the task model, the locally persisted task store and the
// pure derivation pipeline (filter, sort, statistics) over a task collection.
package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities: high=3, medium=2, low=1. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority parses a priority name (case-insensitive). Empty means medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority: %s", s)
	}
}

// Categories is the fixed set of categories a task may carry.
var Categories = []string{"Work", "Personal", "Shopping", "Health", "Finance", "Other"}

// Task is a single to-do record.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Category    string    `json:"category,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts records keyed by "_id" as well as "id".
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	aux := struct {
		*plain
		AltID string `json:"_id"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.AltID
	}
	return nil
}

// Input is the data needed to create a task.
type Input struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Priority    Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Category    string   `json:"category,omitempty" validate:"omitempty,oneof=Work Personal Shopping Health Finance Other"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}

// Messages overrides validator messages for inline display.
func (in Input) Messages() map[string]string {
	return map[string]string{
		"Title.required": "title required",
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	Category     *string   `json:"category,omitempty"`
	DueDate      *Date     `json:"dueDate,omitempty"`
	ClearDueDate bool      `json:"-"`
	Completed    *bool     `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Category == nil && p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// MarshalJSON encodes a cleared due date as an explicit null.
func (p Patch) MarshalJSON() ([]byte, error) {
	type plain Patch
	if !p.ClearDueDate {
		return json.Marshal(plain(p))
	}
	return json.Marshal(struct {
		plain
		DueDate *Date `json:"dueDate"`
	}{plain: plain(p)})
}

// apply merges p onto t. ID and CreatedAt are never touched.
func (p Patch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// clone returns a copy of t that shares no pointers with it.
func (t Task) clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

func cloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.clone()
	}
	return out
}
