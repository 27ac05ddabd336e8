// Package console renders the task list to a plain writer for non-interactive
// commands.
package console

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/tasklist"
	"github.com/colonyops/tasks/pkg/iojson"
)

var (
	labelColor  = color.New(color.FgCyan, color.Italic)
	doneColor   = color.New(color.FgHiBlack, color.CrossedOut)
	idColor     = color.New(color.FgHiBlack)
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed, color.Bold)
	mutedColor  = color.New(color.FgHiBlack)
	activeColor = color.New(color.Reset)
)

// View implements tasklist.View for a command line. One-shot messages are
// written as they arrive; the list itself is kept and written by Render so a
// load that reports twice prints once.
type View struct {
	out    io.Writer
	errOut io.Writer
	json   bool

	active atomic.Bool

	failOnce sync.Once
	failed   chan struct{}

	mu          sync.Mutex
	loading     bool
	tasks       []task.Task
	empty       string
	label       string
	unavailable bool
}

var _ tasklist.View = (*View)(nil)

// Option configures a View.
type Option func(*View)

// WithJSON renders tasks as JSON lines instead of text.
func WithJSON(enabled bool) Option {
	return func(v *View) { v.json = enabled }
}

// New creates an active View writing the list to out and status to errOut.
func New(out, errOut io.Writer, opts ...Option) *View {
	v := &View{out: out, errOut: errOut, failed: make(chan struct{})}
	for _, opt := range opts {
		opt(v)
	}
	v.active.Store(true)
	return v
}

// Deactivate makes the view ignore further load results.
func (v *View) Deactivate() {
	v.active.Store(false)
}

func (v *View) IsActive() bool {
	return v.active.Load()
}

func (v *View) SetLoadingIndicator(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if active && !v.loading && !v.json {
		_, _ = mutedColor.Fprintln(v.errOut, "Loading tasks...")
	}
	v.loading = active
}

func (v *View) ShowTasks(tasks []task.Task) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tasks = tasks
	v.empty = ""
	v.unavailable = false
}

func (v *View) ShowNoTasks()          { v.showEmpty("You have no tasks!") }
func (v *View) ShowNoActiveTasks()    { v.showEmpty("You have no active tasks!") }
func (v *View) ShowNoCompletedTasks() { v.showEmpty("You have no completed tasks!") }

func (v *View) showEmpty(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tasks = nil
	v.empty = msg
	v.unavailable = false
}

func (v *View) ShowActiveFilterLabel()    { v.setLabel("Active tasks") }
func (v *View) ShowCompletedFilterLabel() { v.setLabel("Completed tasks") }
func (v *View) ShowAllFilterLabel()       { v.setLabel("All tasks") }

func (v *View) setLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.label = label
}

func (v *View) ShowLoadingTasksError() {
	v.mu.Lock()
	v.unavailable = true
	v.mu.Unlock()
	v.failOnce.Do(func() { close(v.failed) })
}

// Failed is closed the first time a load reports that tasks are unavailable.
// A failed load never becomes idle, so callers waiting for idle select on it.
func (v *View) Failed() <-chan struct{} {
	return v.failed
}

func (v *View) ShowTaskMarkedComplete()       { v.message("Task marked complete") }
func (v *View) ShowTaskMarkedActive()         { v.message("Task marked active") }
func (v *View) ShowCompletedTasksCleared()    { v.message("Completed tasks cleared") }
func (v *View) ShowSuccessfullySavedMessage() { v.message("Task saved") }

func (v *View) ShowAddTask() {
	v.message("Add a task with: tasks add --title <title>")
}

func (v *View) ShowTaskDetails(taskID string) {
	v.message(fmt.Sprintf("Show details with: tasks show %s", taskID))
}

func (v *View) message(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = okColor.Fprintln(v.errOut, msg)
}

// Err reports whether the last load failed.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unavailable {
		return task.ErrDataNotAvailable
	}
	return nil
}

// Render writes the most recent list state. It writes nothing when no load
// has completed.
func (v *View) Render() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unavailable {
		if v.json {
			_, _ = fmt.Fprintln(v.errOut, iojson.MarshalError("Error while loading tasks", nil))
			return nil
		}
		_, err := errColor.Fprintln(v.errOut, "Error while loading tasks")
		return err
	}

	if v.json {
		for _, t := range v.tasks {
			if err := iojson.WriteLine(v.out, t); err != nil {
				return err
			}
		}
		return nil
	}

	if v.empty != "" {
		_, err := mutedColor.Fprintln(v.out, v.empty)
		return err
	}

	if len(v.tasks) == 0 {
		return nil
	}

	if v.label != "" {
		if _, err := labelColor.Fprintln(v.out, v.label); err != nil {
			return err
		}
	}

	for _, t := range v.tasks {
		if err := writeTask(v.out, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTask(w io.Writer, t task.Task) error {
	mark, title := mutedColor.Sprint("○"), activeColor.Sprint(t.TitleForList())
	if t.Completed {
		mark, title = okColor.Sprint("✓"), doneColor.Sprint(t.TitleForList())
	}
	_, err := fmt.Fprintf(w, "  %s %s  %s\n", mark, title, idColor.Sprint(t.ID))
	return err
}
