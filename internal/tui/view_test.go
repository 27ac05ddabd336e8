package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tasks/internal/core/task"
)

func TestProgramView_SendsOnlyWhileAttached(t *testing.T) {
	v := NewProgramView()
	sender := &capture{}

	v.ShowNoTasks()
	assert.False(t, v.IsActive())

	v.Attach(sender)
	assert.True(t, v.IsActive())
	v.ShowTasks([]task.Task{{ID: "1", Title: "a"}})
	v.ShowCompletedFilterLabel()

	v.Detach()
	v.ShowTaskMarkedComplete()

	assert.Equal(t, []any{
		tasksMsg{tasks: []task.Task{{ID: "1", Title: "a"}}},
		filterLabelMsg{label: "Completed tasks"},
	}, toAny(sender.take()))
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
