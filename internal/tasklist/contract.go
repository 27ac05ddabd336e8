// Package tasklist coordinates the task list screen. The Presenter sits
// between a Repository and a View: it decides when to load, filters what was
// loaded, and pushes the resulting state into the View.
package tasklist

import "github.com/colonyops/tasks/internal/core/task"

// LoadTasksCallback receives the outcome of Repository.GetTasks. A single
// GetTasks call may deliver OnTasksLoaded more than once (a cached result
// followed by a fresh one), possibly from another goroutine.
type LoadTasksCallback interface {
	OnTasksLoaded(tasks []task.Task)
	OnDataNotAvailable()
}

// CallbackFuncs adapts a pair of functions to LoadTasksCallback. Nil fields
// are ignored.
type CallbackFuncs struct {
	Loaded      func(tasks []task.Task)
	Unavailable func()
}

func (f CallbackFuncs) OnTasksLoaded(tasks []task.Task) {
	if f.Loaded != nil {
		f.Loaded(tasks)
	}
}

func (f CallbackFuncs) OnDataNotAvailable() {
	if f.Unavailable != nil {
		f.Unavailable()
	}
}

// Repository is the data access the Presenter needs. Every method returns
// without waiting for the underlying sources; reads report back through the
// callback and writes report nothing.
type Repository interface {
	// RefreshTasks invalidates cached data so the next read goes to the
	// authoritative source.
	RefreshTasks()
	GetTasks(cb LoadTasksCallback)
	CompleteTask(t task.Task)
	ActivateTask(t task.Task)
	ClearCompletedTasks()
}

// View is the passive display surface. The Presenter calls IsActive before
// touching the View from an asynchronous completion.
type View interface {
	SetLoadingIndicator(active bool)

	ShowTasks(tasks []task.Task)
	ShowNoTasks()
	ShowNoActiveTasks()
	ShowNoCompletedTasks()

	ShowActiveFilterLabel()
	ShowCompletedFilterLabel()
	ShowAllFilterLabel()

	ShowLoadingTasksError()

	ShowTaskMarkedComplete()
	ShowTaskMarkedActive()
	ShowCompletedTasksCleared()
	ShowSuccessfullySavedMessage()

	ShowAddTask()
	ShowTaskDetails(taskID string)

	IsActive() bool
}

// RequestCode identifies a surface the list screen navigated to.
type RequestCode int

const (
	RequestAddTask RequestCode = iota + 1
	RequestTaskDetails
)

// ResultCode is the outcome a surface reports when it closes.
type ResultCode int

const (
	ResultCanceled ResultCode = iota
	ResultOK
)
