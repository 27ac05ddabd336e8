package tasklist

import (
	"fmt"
	"sync"

	"github.com/colonyops/tasks/internal/core/task"
)

// recordingView records every call as a short string.
type recordingView struct {
	mu     sync.Mutex
	active bool
	calls  []string
	shown  [][]task.Task
}

func newRecordingView() *recordingView {
	return &recordingView{active: true}
}

func (v *recordingView) record(call string) {
	v.mu.Lock()
	v.calls = append(v.calls, call)
	v.mu.Unlock()
}

func (v *recordingView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

func (v *recordingView) Reset() {
	v.mu.Lock()
	v.calls = nil
	v.shown = nil
	v.mu.Unlock()
}

func (v *recordingView) SetActive(active bool) {
	v.mu.Lock()
	v.active = active
	v.mu.Unlock()
}

func (v *recordingView) Count(call string) int {
	n := 0
	for _, c := range v.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (v *recordingView) SetLoadingIndicator(active bool) {
	v.record(fmt.Sprintf("SetLoadingIndicator(%t)", active))
}

func (v *recordingView) ShowTasks(tasks []task.Task) {
	v.mu.Lock()
	v.shown = append(v.shown, tasks)
	v.mu.Unlock()
	v.record("ShowTasks")
}

func (v *recordingView) ShowNoTasks()                  { v.record("ShowNoTasks") }
func (v *recordingView) ShowNoActiveTasks()            { v.record("ShowNoActiveTasks") }
func (v *recordingView) ShowNoCompletedTasks()         { v.record("ShowNoCompletedTasks") }
func (v *recordingView) ShowActiveFilterLabel()        { v.record("ShowActiveFilterLabel") }
func (v *recordingView) ShowCompletedFilterLabel()     { v.record("ShowCompletedFilterLabel") }
func (v *recordingView) ShowAllFilterLabel()           { v.record("ShowAllFilterLabel") }
func (v *recordingView) ShowLoadingTasksError()        { v.record("ShowLoadingTasksError") }
func (v *recordingView) ShowTaskMarkedComplete()       { v.record("ShowTaskMarkedComplete") }
func (v *recordingView) ShowTaskMarkedActive()         { v.record("ShowTaskMarkedActive") }
func (v *recordingView) ShowCompletedTasksCleared()    { v.record("ShowCompletedTasksCleared") }
func (v *recordingView) ShowSuccessfullySavedMessage() { v.record("ShowSuccessfullySavedMessage") }
func (v *recordingView) ShowAddTask()                  { v.record("ShowAddTask") }

func (v *recordingView) ShowTaskDetails(id string) {
	v.record("ShowTaskDetails(" + id + ")")
}

func (v *recordingView) IsActive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// scriptedRepository captures callbacks so tests decide when they fire.
type scriptedRepository struct {
	mu        sync.Mutex
	callbacks []LoadTasksCallback
	refreshes int
	completed []task.Task
	activated []task.Task
	clears    int
}

func (r *scriptedRepository) RefreshTasks() {
	r.mu.Lock()
	r.refreshes++
	r.mu.Unlock()
}

func (r *scriptedRepository) GetTasks(cb LoadTasksCallback) {
	r.mu.Lock()
	r.callbacks = append(r.callbacks, cb)
	r.mu.Unlock()
}

func (r *scriptedRepository) CompleteTask(t task.Task) {
	r.mu.Lock()
	r.completed = append(r.completed, t)
	r.mu.Unlock()
}

func (r *scriptedRepository) ActivateTask(t task.Task) {
	r.mu.Lock()
	r.activated = append(r.activated, t)
	r.mu.Unlock()
}

func (r *scriptedRepository) ClearCompletedTasks() {
	r.mu.Lock()
	r.clears++
	r.mu.Unlock()
}

func (r *scriptedRepository) Refreshes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshes
}

func (r *scriptedRepository) Callbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks)
}

// Last returns the most recent captured callback.
func (r *scriptedRepository) Last() LoadTasksCallback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callbacks[len(r.callbacks)-1]
}

// spyResource is an idling.Resource without DecrementIfBusy, so the
// Presenter falls back to checking IsIdleNow before decrementing.
type spyResource struct {
	count      int
	decrements int
}

func (s *spyResource) Increment() { s.count++ }

func (s *spyResource) Decrement() {
	if s.count == 0 {
		panic("decrement while idle")
	}
	s.count--
	s.decrements++
}

func (s *spyResource) IsIdleNow() bool { return s.count == 0 }
