// Package stores implements the domain store ports on top of the local
// SQLite database.
package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/data/db"
)

// TaskStore implements task.Store using SQLite. It is the local data source.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = "id, title, description, completed"

// List returns all tasks in creation order.
func (s *TaskStore) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a single task by ID.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	t, err := scanTask(row)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Save inserts the task or replaces the stored copy. The original creation
// time is kept on replace so list order stays stable.
func (s *TaskStore) Save(ctx context.Context, t task.Task) error {
	now := time.Now().UnixNano()

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title       = excluded.title,
			description = excluded.description,
			completed   = excluded.completed,
			updated_at  = excluded.updated_at
	`, t.ID, t.Title, t.Description, t.Completed, now, now)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Complete marks a task as completed.
func (s *TaskStore) Complete(ctx context.Context, id string) error {
	return s.setCompleted(ctx, id, true)
}

// Activate marks a task as active.
func (s *TaskStore) Activate(ctx context.Context, id string) error {
	return s.setCompleted(ctx, id, false)
}

func (s *TaskStore) setCompleted(ctx context.Context, id string, completed bool) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?",
		completed, time.Now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

// ClearCompleted deletes every completed task.
func (s *TaskStore) ClearCompleted(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, "DELETE FROM tasks WHERE completed = 1"); err != nil {
		return fmt.Errorf("clear completed tasks: %w", err)
	}
	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Conn().ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteAll removes every task.
func (s *TaskStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

// ReplaceAll swaps the stored tasks for the given set in one transaction.
func (s *TaskStore) ReplaceAll(ctx context.Context, tasks []task.Task) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tasks (id, title, description, completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		base := time.Now().UnixNano()
		for i, t := range tasks {
			// Offset timestamps so the given order survives ORDER BY created_at.
			ts := base + int64(i)
			if _, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Description, t.Completed, ts, ts); err != nil {
				return fmt.Errorf("insert task %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var t task.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed)
	return t, err
}
