package stores

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/data/db"
)

func newTestTaskStore(t *testing.T) *TaskStore {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewTaskStore(database)
}

func TestTaskStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		store := newTestTaskStore(t)
		tk := task.Task{ID: "t1", Title: "Buy milk", Description: "2 liters"}

		require.NoError(t, store.Save(ctx, tk))

		got, err := store.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, tk, got)
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		store := newTestTaskStore(t)

		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("list on empty store", func(t *testing.T) {
		store := newTestTaskStore(t)

		tasks, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.NotNil(t, tasks)
	})

	t.Run("list keeps creation order across updates", func(t *testing.T) {
		store := newTestTaskStore(t)
		require.NoError(t, store.Save(ctx, task.Task{ID: "1", Title: "first"}))
		require.NoError(t, store.Save(ctx, task.Task{ID: "2", Title: "second"}))
		require.NoError(t, store.Save(ctx, task.Task{ID: "1", Title: "first, renamed"}))

		tasks, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "first, renamed", tasks[0].Title)
		assert.Equal(t, "2", tasks[1].ID)
	})

	t.Run("complete and activate", func(t *testing.T) {
		store := newTestTaskStore(t)
		require.NoError(t, store.Save(ctx, task.Task{ID: "1", Title: "x"}))

		require.NoError(t, store.Complete(ctx, "1"))
		got, err := store.Get(ctx, "1")
		require.NoError(t, err)
		assert.True(t, got.Completed)

		require.NoError(t, store.Activate(ctx, "1"))
		got, err = store.Get(ctx, "1")
		require.NoError(t, err)
		assert.False(t, got.Completed)

		require.ErrorIs(t, store.Complete(ctx, "missing"), task.ErrNotFound)
	})

	t.Run("clear completed", func(t *testing.T) {
		store := newTestTaskStore(t)
		require.NoError(t, store.Save(ctx, task.Task{ID: "1", Title: "keep"}))
		require.NoError(t, store.Save(ctx, task.Task{ID: "2", Title: "drop", Completed: true}))

		require.NoError(t, store.ClearCompleted(ctx))

		tasks, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "1", tasks[0].ID)
	})

	t.Run("delete and delete all", func(t *testing.T) {
		store := newTestTaskStore(t)
		require.NoError(t, store.Save(ctx, task.Task{ID: "1", Title: "a"}))
		require.NoError(t, store.Save(ctx, task.Task{ID: "2", Title: "b"}))

		require.NoError(t, store.Delete(ctx, "1"))
		require.NoError(t, store.Delete(ctx, "1"), "deleting twice is fine")

		tasks, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, 1)

		require.NoError(t, store.DeleteAll(ctx))
		tasks, err = store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("replace all preserves given order", func(t *testing.T) {
		store := newTestTaskStore(t)
		require.NoError(t, store.Save(ctx, task.Task{ID: "old", Title: "old"}))

		want := []task.Task{
			{ID: "c", Title: "c"},
			{ID: "a", Title: "a", Completed: true},
			{ID: "b", Title: "b"},
		}
		require.NoError(t, store.ReplaceAll(ctx, want))

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)

	require.NoError(t, os.WriteFile(dbPath, []byte("corrupted data"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-shm", []byte("shm"), 0o644))

	require.NoError(t, RecoverFromCorruption(dir))

	for _, suffix := range []string{"", "-wal", "-shm"} {
		_, err := os.Stat(dbPath + suffix)
		assert.True(t, os.IsNotExist(err), "%s should be moved aside", dbPath+suffix)
	}

	backups, err := filepath.Glob(filepath.Join(dir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.Len(t, backups, 3)

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err, "a fresh database opens after recovery")
	_ = database.Close()
}

func TestRecoverFromCorruption_NothingToRecover(t *testing.T) {
	require.NoError(t, RecoverFromCorruption(t.TempDir()))
}

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.False(t, IsCorruptionError(errors.New("disk full")))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.True(t, IsCorruptionError(fmt.Errorf("open: %w", errors.New("file is not a database"))))
}
