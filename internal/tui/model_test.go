package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/data/remote"
	"github.com/colonyops/tasks/pkg/tuitest"
)

var (
	milk   = task.Task{ID: "1", Title: "Buy milk"}
	report = task.Task{ID: "2", Title: "Write report", Description: "Quarterly **numbers**", Completed: true}
	call   = task.Task{ID: "3", Title: "Call mom"}
)

func TestModel_InitialLoad(t *testing.T) {
	h := newHarness(t, milk, report)
	h.start()

	screen := h.screen()
	assert.Contains(t, screen, "All tasks")
	assert.Contains(t, screen, "Buy milk")
	assert.Contains(t, screen, "Write report")
	assert.False(t, h.model.loading)
	assert.Equal(t, 1, h.repo.refreshes, "first load is forced")
}

func TestModel_EmptyList(t *testing.T) {
	h := newHarness(t)
	h.start()

	assert.Contains(t, h.screen(), "You have no tasks!")
}

func TestModel_LoadError(t *testing.T) {
	h := newHarness(t)
	h.repo.broken = true
	h.start()

	assert.Contains(t, h.screen(), "Error while loading tasks")
	assert.True(t, h.model.loadErr)
}

func TestModel_CursorMovement(t *testing.T) {
	h := newHarness(t, milk, report, call)
	h.start()

	h.press('j')
	h.press('j')
	h.press('j')
	assert.Equal(t, 2, h.model.cursor, "cursor stops at the last row")

	h.send(tuitest.KeyUp())
	assert.Equal(t, 1, h.model.cursor)

	h.press('k')
	h.press('k')
	assert.Equal(t, 0, h.model.cursor)
}

func TestModel_ToggleCompletes(t *testing.T) {
	h := newHarness(t, milk, report)
	h.start()

	h.send(tuitest.KeySpace())

	require.True(t, h.repo.snapshot()[0].Completed)
	assert.Contains(t, h.screen(), "Task marked complete")

	h.press('j')
	h.send(tuitest.KeySpace())

	assert.False(t, h.repo.snapshot()[1].Completed)
	assert.Contains(t, h.screen(), "Task marked active")
}

func TestModel_FilterCycles(t *testing.T) {
	h := newHarness(t, milk, report)
	h.start()

	h.press('f')
	screen := h.screen()
	assert.Contains(t, screen, "Active tasks")
	assert.Contains(t, screen, "Buy milk")
	assert.NotContains(t, screen, "Write report")

	h.press('f')
	screen = h.screen()
	assert.Contains(t, screen, "Completed tasks")
	assert.NotContains(t, screen, "Buy milk")

	h.press('f')
	assert.Contains(t, h.screen(), "All tasks")
}

func TestModel_FilterWithNoMatches(t *testing.T) {
	h := newHarness(t, milk)
	h.start()

	h.press('f')
	h.press('f')

	assert.Contains(t, h.screen(), "You have no completed tasks!")
}

func TestModel_FilterKeysBeforeLoadRuns(t *testing.T) {
	h := newHarness(t, milk, report)
	h.start()

	_, first := h.model.Update(tuitest.KeyPress('f'))
	_, second := h.model.Update(tuitest.KeyPress('f'))
	assert.Equal(t, task.FilterCompleted, h.model.presenter.Filtering())

	h.settle(append(h.exec(first), h.exec(second)...))
	screen := h.screen()
	assert.Contains(t, screen, "Completed tasks")
	assert.NotContains(t, screen, "Buy milk")
}

func TestModel_ClearCompleted(t *testing.T) {
	h := newHarness(t, milk, report)
	h.start()

	h.press('x')

	assert.Equal(t, []task.Task{milk}, h.repo.snapshot())
	screen := h.screen()
	assert.Contains(t, screen, "Completed tasks cleared")
	assert.NotContains(t, screen, "Write report")
}

func TestModel_RefreshForcesReload(t *testing.T) {
	h := newHarness(t, milk)
	h.start()

	h.press('r')
	assert.Equal(t, 2, h.repo.refreshes)
}

func TestModel_RemoteChangeForcesReload(t *testing.T) {
	h := newHarness(t, milk)
	h.start()

	h.repo.tasks = append(h.repo.tasks, call)
	h.send(remoteChangedMsg{change: remote.Change{Path: "/remote.json"}})

	assert.Equal(t, 2, h.repo.refreshes)
	assert.Contains(t, h.screen(), "Call mom")
}

func TestModel_AddFlow(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		h := newHarness(t, milk)
		h.start()

		h.press('a')
		require.Equal(t, modeAdd, h.model.mode)
		assert.Contains(t, h.screen(), "Title")

		h.send(taskSavedMsg{})

		assert.Equal(t, modeList, h.model.mode)
		assert.Contains(t, h.screen(), "Task saved")
	})

	t.Run("cancelled", func(t *testing.T) {
		h := newHarness(t, milk)
		h.start()

		h.press('a')
		h.send(tuitest.KeyEsc())

		assert.Equal(t, modeList, h.model.mode)
		assert.NotContains(t, h.screen(), "Task saved")
	})
}

func TestModel_DetailFlow(t *testing.T) {
	h := newHarness(t, milk, report)
	h.start()

	h.press('j')
	h.send(tuitest.KeyEnter())

	require.Equal(t, modeDetail, h.model.mode)
	screen := h.screen()
	assert.Contains(t, screen, "Write report")
	assert.Contains(t, screen, "numbers")
	assert.Contains(t, screen, "completed · 2")

	h.press('d')

	assert.Equal(t, modeList, h.model.mode)
	assert.Equal(t, []task.Task{milk}, h.repo.snapshot())
	assert.Contains(t, h.screen(), "Task deleted")
}

func TestModel_DetailBack(t *testing.T) {
	h := newHarness(t, milk)
	h.start()

	h.send(tuitest.KeyEnter())
	require.Equal(t, modeDetail, h.model.mode)

	h.send(tuitest.KeyEsc())
	assert.Equal(t, modeList, h.model.mode)
	assert.Equal(t, []task.Task{milk}, h.repo.snapshot())
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t, milk)
	h.start()

	h.press('q')

	assert.True(t, h.quit)
	assert.False(t, h.view.IsActive())
}
