package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasks/internal/core/task"
)

func newTestWatcher(t *testing.T) (*Watcher, *FileStore) {
	t.Helper()

	fs := afero.NewOsFs()
	store := NewFileStore(fs, filepath.Join(t.TempDir(), "remote", "tasks.json"))

	w, err := NewWatcher(store, fs, zerolog.Nop(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	return w, store
}

func TestWatcher_ReportsExternalEdit(t *testing.T) {
	w, store := newTestWatcher(t)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"tasks":[]}`), 0o644))

	select {
	case c := <-w.Events():
		assert.Equal(t, filepath.Clean(store.Path()), c.Path)
		assert.False(t, c.Removed)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	w, store := newTestWatcher(t)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"tasks":[]}`), 0o644))
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for create")
	}

	require.NoError(t, os.Remove(store.Path()))
	select {
	case c := <-w.Events():
		assert.True(t, c.Removed)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for removal")
	}
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	w, store := newTestWatcher(t)

	require.NoError(t, store.Save(context.Background(), task.Task{ID: "a", Title: "a"}))

	select {
	case c := <-w.Events():
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	w, _ := newTestWatcher(t)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}
