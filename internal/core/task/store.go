package task

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a task does not exist in a data source.
	ErrNotFound = errors.New("task not found")
	// ErrDataNotAvailable is returned when a data source cannot produce tasks.
	ErrDataNotAvailable = errors.New("task data not available")
	// ErrInvalidArgument is returned when a required task reference is missing.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store is a single source of tasks. The local database and the remote
// document both implement it; the repository layers a cache over them.
type Store interface {
	// List returns all tasks in a stable order.
	List(ctx context.Context) ([]Task, error)

	// Get returns a single task. Returns ErrNotFound if the task does not exist.
	Get(ctx context.Context, id string) (Task, error)

	// Save creates or replaces a task.
	Save(ctx context.Context, t Task) error

	// Complete marks a task as completed.
	Complete(ctx context.Context, id string) error

	// Activate marks a task as active.
	Activate(ctx context.Context, id string) error

	// ClearCompleted removes every completed task.
	ClearCompleted(ctx context.Context) error

	// Delete removes a single task. Deleting a missing task is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every task.
	DeleteAll(ctx context.Context) error
}
