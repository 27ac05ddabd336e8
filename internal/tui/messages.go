package tui

import (
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/data/remote"
)

// Messages posted by ProgramView. Each mirrors one View call.
type (
	loadingMsg     struct{ active bool }
	tasksMsg       struct{ tasks []task.Task }
	emptyMsg       struct{ text string }
	filterLabelMsg struct{ label string }
	loadErrorMsg   struct{}
	toastMsg       struct {
		text  string
		level toastLevel
	}
	showAddMsg     struct{}
	showDetailsMsg struct{ id string }
)

// Messages produced by the model's own commands.
type (
	remoteChangedMsg struct{ change remote.Change }
	detailLoadedMsg  struct {
		task task.Task
		err  error
	}
	taskSavedMsg   struct{ err error }
	taskDeletedMsg struct{ err error }
)
