package tasklist

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/tasks/internal/core/idling"
	"github.com/colonyops/tasks/internal/core/task"
)

// busyDecrementer is implemented by idling resources that can check and
// decrement in one step.
type busyDecrementer interface {
	DecrementIfBusy() bool
}

// Presenter drives the task list. It owns the current filter and the first
// load latch; everything else comes from the Repository on each load.
type Presenter struct {
	repo Repository
	view View
	busy idling.Resource
	log  zerolog.Logger

	mu        sync.Mutex
	filtering task.FilterType
	firstLoad bool
}

// New creates a Presenter bound to repo and view for its whole lifetime.
// A nil busy resource disables busy tracking.
func New(repo Repository, view View, busy idling.Resource, log zerolog.Logger) (*Presenter, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil: %w", task.ErrInvalidArgument)
	}
	if view == nil {
		return nil, fmt.Errorf("view cannot be nil: %w", task.ErrInvalidArgument)
	}
	if busy == nil {
		busy = idling.Noop{}
	}

	return &Presenter{
		repo:      repo,
		view:      view,
		busy:      busy,
		log:       log.With().Str("component", "tasklist").Logger(),
		filtering: task.FilterAll,
		firstLoad: true,
	}, nil
}

// Start performs the initial load. The first load is always forced.
func (p *Presenter) Start() {
	p.LoadTasks(false)
}

// Result handles the outcome of a surface opened from the list.
func (p *Presenter) Result(request RequestCode, result ResultCode) {
	if request == RequestAddTask && result == ResultOK {
		p.view.ShowSuccessfullySavedMessage()
	}
}

// LoadTasks loads tasks with a visible loading indicator. forceUpdate asks the
// Repository to refresh from its authoritative source; the very first call is
// always forced.
func (p *Presenter) LoadTasks(forceUpdate bool) {
	p.mu.Lock()
	force := forceUpdate || p.firstLoad
	p.firstLoad = false
	p.mu.Unlock()

	p.load(force, true)
}

func (p *Presenter) load(forceUpdate, showLoadingUI bool) {
	if showLoadingUI {
		p.view.SetLoadingIndicator(true)
	}
	if forceUpdate {
		p.repo.RefreshTasks()
	}

	// Count the work before dispatch so an observer never sees idle while the
	// read is pending.
	p.busy.Increment()

	p.log.Debug().
		Bool("force", forceUpdate).
		Bool("show_loading", showLoadingUI).
		Msg("loading tasks")

	p.repo.GetTasks(&loadCallback{p: p, showLoadingUI: showLoadingUI})
}

// loadCallback handles the completion of one load. It may be invoked more
// than once for the same load.
type loadCallback struct {
	p             *Presenter
	showLoadingUI bool
}

func (cb *loadCallback) OnTasksLoaded(tasks []task.Task) {
	p := cb.p

	p.releaseBusy()

	filtering := p.Filtering()
	toShow := task.Filter(tasks, filtering)

	if !p.view.IsActive() {
		p.log.Debug().Int("tasks", len(tasks)).Msg("view inactive, dropping loaded tasks")
		return
	}
	if cb.showLoadingUI {
		p.view.SetLoadingIndicator(false)
	}

	p.processTasks(toShow, filtering)
}

func (cb *loadCallback) OnDataNotAvailable() {
	p := cb.p

	if !p.view.IsActive() {
		p.log.Debug().Msg("view inactive, dropping load error")
		return
	}

	p.log.Debug().Msg("tasks not available")
	p.view.ShowLoadingTasksError()
}

// releaseBusy decrements the busy counter unless it is already idle. A load
// callback can fire twice, and only the first delivery owns the increment.
func (p *Presenter) releaseBusy() {
	if d, ok := p.busy.(busyDecrementer); ok {
		d.DecrementIfBusy()
		return
	}
	if !p.busy.IsIdleNow() {
		p.busy.Decrement()
	}
}

func (p *Presenter) processTasks(tasks []task.Task, filtering task.FilterType) {
	if len(tasks) == 0 {
		p.processEmptyTasks(filtering)
		return
	}

	p.view.ShowTasks(tasks)
	p.showFilterLabel(filtering)
}

func (p *Presenter) showFilterLabel(filtering task.FilterType) {
	switch filtering {
	case task.FilterActive:
		p.view.ShowActiveFilterLabel()
	case task.FilterCompleted:
		p.view.ShowCompletedFilterLabel()
	default:
		p.view.ShowAllFilterLabel()
	}
}

func (p *Presenter) processEmptyTasks(filtering task.FilterType) {
	switch filtering {
	case task.FilterActive:
		p.view.ShowNoActiveTasks()
	case task.FilterCompleted:
		p.view.ShowNoCompletedTasks()
	default:
		p.view.ShowNoTasks()
	}
}

// AddNewTask opens the task creation surface.
func (p *Presenter) AddNewTask() {
	p.view.ShowAddTask()
}

// OpenTaskDetails opens the detail surface for t.
func (p *Presenter) OpenTaskDetails(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("open task details: requested task cannot be nil: %w", task.ErrInvalidArgument)
	}
	p.view.ShowTaskDetails(t.ID)
	return nil
}

// CompleteTask marks t complete and reloads the list without a loading
// indicator.
func (p *Presenter) CompleteTask(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("complete task: completed task cannot be nil: %w", task.ErrInvalidArgument)
	}
	p.repo.CompleteTask(*t)
	p.view.ShowTaskMarkedComplete()
	p.load(false, false)
	return nil
}

// ActivateTask marks t active and reloads the list without a loading
// indicator.
func (p *Presenter) ActivateTask(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("activate task: active task cannot be nil: %w", task.ErrInvalidArgument)
	}
	p.repo.ActivateTask(*t)
	p.view.ShowTaskMarkedActive()
	p.load(false, false)
	return nil
}

// ClearCompletedTasks removes completed tasks and reloads the list without a
// loading indicator.
func (p *Presenter) ClearCompletedTasks() {
	p.repo.ClearCompletedTasks()
	p.view.ShowCompletedTasksCleared()
	p.load(false, false)
}

// SetFiltering changes the filter used by subsequent loads. It does not
// reload; call LoadTasks to apply it.
func (p *Presenter) SetFiltering(f task.FilterType) {
	p.mu.Lock()
	p.filtering = f
	p.mu.Unlock()
}

// Filtering returns the current filter.
func (p *Presenter) Filtering() task.FilterType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filtering
}
