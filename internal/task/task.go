// Package task owns the task entity and the persisted task store.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/dates"
)

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is applied when no priority is given.
const DefaultPriority = PriorityMedium

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank returns the sort rank of p. High sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// glyph returns the list marker for p.
func (p Priority) glyph() string {
	switch p {
	case PriorityHigh:
		return "●"
	case PriorityMedium:
		return "◐"
	default:
		return "○"
	}
}

// Task represents a single task. The JSON tags define the persisted record
// shape; Task round-trips through them losslessly.
type Task struct {
	Title     string    `json:"title"`
	Priority  Priority  `json:"priority"`
	DueDate   string    `json:"due_date,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a validated task. The due date must already be an ISO date or
// empty; natural-language text goes through dates.Parse first.
func New(title string, priority Priority, dueDate string, tags []string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, &ValidationError{Field: "title", Err: fmt.Errorf("must not be empty")}
	}
	if priority == "" {
		priority = DefaultPriority
	}
	priority = Priority(strings.ToLower(string(priority)))
	if !priority.Valid() {
		return Task{}, &ValidationError{
			Field: "priority",
			Err:   fmt.Errorf("%q is not one of: low, medium, high", priority),
		}
	}
	return Task{
		Title:     title,
		Priority:  priority,
		DueDate:   dueDate,
		Tags:      normalizeTags(tags),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// validate checks the invariants New establishes. Used on records coming
// back from disk.
func (t *Task) validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Err: fmt.Errorf("must not be empty")}
	}
	if !t.Priority.Valid() {
		return &ValidationError{
			Field: "priority",
			Err:   fmt.Errorf("%q is not one of: low, medium, high", t.Priority),
		}
	}
	return nil
}

// normalize re-establishes tag invariants on a record loaded from disk.
func (t *Task) normalize() {
	t.Tags = normalizeTags(t.Tags)
}

// IsOverdue reports whether the task's due date is strictly before now's
// date. Completed tasks are never overdue, and an unparseable due date
// counts as not overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == "" {
		return false
	}
	due, err := time.ParseInLocation(dates.ISO, t.DueDate, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// HasTag reports whether the task carries the tag, ignoring case.
func (t *Task) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Render produces the one-line listing form of the task: completion mark,
// priority glyph, title, due annotation, tags. No styling; the renderer
// applies color on top.
func (t *Task) Render(now time.Time) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", mark, t.Priority.glyph(), t.Title)

	if t.DueDate != "" {
		if t.IsOverdue(now) {
			fmt.Fprintf(&b, " (overdue %s)", t.DueDate)
		} else {
			fmt.Fprintf(&b, " (due %s)", t.DueDate)
		}
	}
	for _, tag := range t.Tags {
		b.WriteString(" #")
		b.WriteString(tag)
	}
	return b.String()
}

// NormalizeTag lowercases and trims a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// normalizeTags lowercases, trims, and dedupes tags, keeping the order of
// first occurrence.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = NormalizeTag(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
