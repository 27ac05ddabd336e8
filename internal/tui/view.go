package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/tasklist"
)

// Sender posts messages into a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramView implements tasklist.View by translating each call into a
// message for the bubbletea program, so the model only changes inside Update.
type ProgramView struct {
	sender atomic.Pointer[senderBox]
	active atomic.Bool
}

type senderBox struct{ s Sender }

var _ tasklist.View = (*ProgramView)(nil)

// NewProgramView creates a view that is inactive until Attach is called.
func NewProgramView() *ProgramView {
	return &ProgramView{}
}

// Attach binds the view to a program and marks it active.
func (v *ProgramView) Attach(s Sender) {
	v.sender.Store(&senderBox{s: s})
	v.active.Store(true)
}

// Detach marks the view inactive. Late load results are dropped by the
// presenter; one-shot messages sent after this are discarded.
func (v *ProgramView) Detach() {
	v.active.Store(false)
}

func (v *ProgramView) send(msg tea.Msg) {
	if !v.active.Load() {
		return
	}
	if b := v.sender.Load(); b != nil {
		b.s.Send(msg)
	}
}

func (v *ProgramView) IsActive() bool { return v.active.Load() }

func (v *ProgramView) SetLoadingIndicator(active bool) { v.send(loadingMsg{active: active}) }

func (v *ProgramView) ShowTasks(tasks []task.Task) { v.send(tasksMsg{tasks: tasks}) }

func (v *ProgramView) ShowNoTasks()          { v.send(emptyMsg{text: "You have no tasks!"}) }
func (v *ProgramView) ShowNoActiveTasks()    { v.send(emptyMsg{text: "You have no active tasks!"}) }
func (v *ProgramView) ShowNoCompletedTasks() { v.send(emptyMsg{text: "You have no completed tasks!"}) }

func (v *ProgramView) ShowActiveFilterLabel()    { v.send(filterLabelMsg{label: "Active tasks"}) }
func (v *ProgramView) ShowCompletedFilterLabel() { v.send(filterLabelMsg{label: "Completed tasks"}) }
func (v *ProgramView) ShowAllFilterLabel()       { v.send(filterLabelMsg{label: "All tasks"}) }

func (v *ProgramView) ShowLoadingTasksError() { v.send(loadErrorMsg{}) }

func (v *ProgramView) ShowTaskMarkedComplete() {
	v.send(toastMsg{text: "Task marked complete", level: toastSuccess})
}

func (v *ProgramView) ShowTaskMarkedActive() {
	v.send(toastMsg{text: "Task marked active", level: toastSuccess})
}

func (v *ProgramView) ShowCompletedTasksCleared() {
	v.send(toastMsg{text: "Completed tasks cleared", level: toastSuccess})
}

func (v *ProgramView) ShowSuccessfullySavedMessage() {
	v.send(toastMsg{text: "Task saved", level: toastSuccess})
}

func (v *ProgramView) ShowAddTask() { v.send(showAddMsg{}) }

func (v *ProgramView) ShowTaskDetails(taskID string) { v.send(showDetailsMsg{id: taskID}) }
