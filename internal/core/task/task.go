// Package task defines the task domain model shared by the data sources,
// the repository and the list presenter.
package task

import (
	"strings"

	"github.com/google/uuid"
)

// Task is a single to-do entry. Tasks are values; the data sources own the
// persistent copies.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
}

// New creates an active task with a freshly generated ID.
func New(title, description string) Task {
	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
	}
}

// IsActive reports whether the task still needs doing.
func (t Task) IsActive() bool {
	return !t.Completed
}

// IsCompleted reports whether the task has been marked complete.
func (t Task) IsCompleted() bool {
	return t.Completed
}

// IsEmpty reports whether the task carries no user content.
func (t Task) IsEmpty() bool {
	return strings.TrimSpace(t.Title) == "" && strings.TrimSpace(t.Description) == ""
}

// TitleForList returns the text shown for the task in a list row. Falls back
// to the description when no title was given.
func (t Task) TitleForList() string {
	if strings.TrimSpace(t.Title) != "" {
		return t.Title
	}
	return t.Description
}

// WithCompleted returns a copy of t with the completion flag set.
func (t Task) WithCompleted(completed bool) Task {
	t.Completed = completed
	return t
}
