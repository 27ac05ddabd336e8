// Package remote implements the remote task data source: a JSON document on
// an afero filesystem, read and written with simulated network latency.
package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/colonyops/tasks/internal/core/task"
)

// Document is the root JSON structure stored in the remote file.
type Document struct {
	Tasks []task.Task `json:"tasks"`
}

// FileStore implements task.Store over a single JSON document.
type FileStore struct {
	fs      afero.Fs
	path    string
	latency time.Duration

	mu       sync.RWMutex
	lastHash [sha256.Size]byte
}

var _ task.Store = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

// WithLatency delays every operation by d. Zero disables the delay.
func WithLatency(d time.Duration) Option {
	return func(s *FileStore) { s.latency = d }
}

// NewFileStore creates a store for the document at path on fs.
func NewFileStore(fs afero.Fs, path string, opts ...Option) *FileStore {
	s := &FileStore{fs: fs, path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// List returns all tasks in document order.
func (s *FileStore) List(ctx context.Context) ([]task.Task, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// Get returns a task by ID. Returns task.ErrNotFound if not found.
func (s *FileStore) Get(ctx context.Context, id string) (task.Task, error) {
	if err := s.wait(ctx); err != nil {
		return task.Task{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return task.Task{}, err
	}

	i := doc.index(id)
	if i < 0 {
		return task.Task{}, task.ErrNotFound
	}
	return doc.Tasks[i], nil
}

// Save appends the task, or replaces it in place when the ID exists.
func (s *FileStore) Save(ctx context.Context, t task.Task) error {
	return s.update(ctx, func(doc *Document) error {
		if i := doc.index(t.ID); i >= 0 {
			doc.Tasks[i] = t
			return nil
		}
		doc.Tasks = append(doc.Tasks, t)
		return nil
	})
}

// Complete marks a task as completed.
func (s *FileStore) Complete(ctx context.Context, id string) error {
	return s.setCompleted(ctx, id, true)
}

// Activate marks a task as active.
func (s *FileStore) Activate(ctx context.Context, id string) error {
	return s.setCompleted(ctx, id, false)
}

func (s *FileStore) setCompleted(ctx context.Context, id string, completed bool) error {
	return s.update(ctx, func(doc *Document) error {
		i := doc.index(id)
		if i < 0 {
			return task.ErrNotFound
		}
		doc.Tasks[i].Completed = completed
		return nil
	})
}

// ClearCompleted removes every completed task.
func (s *FileStore) ClearCompleted(ctx context.Context) error {
	return s.update(ctx, func(doc *Document) error {
		doc.Tasks = slices.DeleteFunc(doc.Tasks, task.Task.IsCompleted)
		return nil
	})
}

// Delete removes a task by ID.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	return s.update(ctx, func(doc *Document) error {
		doc.Tasks = slices.DeleteFunc(doc.Tasks, func(t task.Task) bool { return t.ID == id })
		return nil
	})
}

// DeleteAll removes every task.
func (s *FileStore) DeleteAll(ctx context.Context) error {
	return s.update(ctx, func(doc *Document) error {
		doc.Tasks = nil
		return nil
	})
}

// ReplaceAll overwrites the document with the given tasks.
func (s *FileStore) ReplaceAll(ctx context.Context, tasks []task.Task) error {
	return s.update(ctx, func(doc *Document) error {
		doc.Tasks = slices.Clone(tasks)
		return nil
	})
}

// IsOwnWrite reports whether data matches the last document this store wrote.
// The watcher uses it to skip change events caused by our own writes.
func (s *FileStore) IsOwnWrite(data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHash == sha256.Sum256(data)
}

func (s *FileStore) update(ctx context.Context, fn func(*Document) error) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if err := fn(&doc); err != nil {
		return err
	}

	return s.save(doc)
}

// wait simulates the round trip to the remote end.
func (s *FileStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// load reads the document. A missing file is an empty document.
func (s *FileStore) load() (Document, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{Tasks: []task.Task{}}, nil
		}
		return Document{}, fmt.Errorf("%w: read %s: %v", task.ErrDataNotAvailable, s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Document{Tasks: []task.Task{}}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: decode %s: %v", task.ErrDataNotAvailable, s.path, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	return doc, nil
}

// save writes the document through a temp file and rename.
func (s *FileStore) save(doc Document) error {
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create remote dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode remote document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write remote document: %w", err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace remote document: %w", err)
	}

	s.lastHash = sha256.Sum256(data)
	return nil
}

func (d Document) index(id string) int {
	return slices.IndexFunc(d.Tasks, func(t task.Task) bool { return t.ID == id })
}
