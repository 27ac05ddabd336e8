package tui

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/data/remote"
	"github.com/colonyops/tasks/internal/tasklist"
	"github.com/colonyops/tasks/pkg/tuitest"
)

// memRepo is a synchronous in-memory repository: callbacks fire before
// GetTasks returns.
type memRepo struct {
	mu        sync.Mutex
	tasks     []task.Task
	broken    bool
	refreshes int
}

func (r *memRepo) RefreshTasks() {
	r.mu.Lock()
	r.refreshes++
	r.mu.Unlock()
}

func (r *memRepo) GetTasks(cb tasklist.LoadTasksCallback) {
	r.mu.Lock()
	tasks, broken := slices.Clone(r.tasks), r.broken
	r.mu.Unlock()

	if broken {
		cb.OnDataNotAvailable()
		return
	}
	cb.OnTasksLoaded(tasks)
}

func (r *memRepo) set(id string, fn func(*task.Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			fn(&r.tasks[i])
		}
	}
}

func (r *memRepo) CompleteTask(t task.Task) { r.set(t.ID, func(t *task.Task) { t.Completed = true }) }
func (r *memRepo) ActivateTask(t task.Task) { r.set(t.ID, func(t *task.Task) { t.Completed = false }) }

func (r *memRepo) ClearCompletedTasks() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = slices.DeleteFunc(r.tasks, task.Task.IsCompleted)
}

func (r *memRepo) SaveTask(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, t)
	return nil
}

func (r *memRepo) GetTask(_ context.Context, id string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (r *memRepo) DeleteTask(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = slices.DeleteFunc(r.tasks, func(t task.Task) bool { return t.ID == id })
	return nil
}

func (r *memRepo) snapshot() []task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tasks)
}

// capture is a Sender that queues messages for the harness.
type capture struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (c *capture) Send(msg tea.Msg) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *capture) take() []tea.Msg {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.msgs
	c.msgs = nil
	return out
}

// cmdTimeout separates immediate commands from timers (spinner, toasts,
// cursor blink), which the harness never waits for.
const cmdTimeout = 30 * time.Millisecond

type harness struct {
	t       *testing.T
	repo    *memRepo
	view    *ProgramView
	sender  *capture
	model   *Model
	changes chan remote.Change
	quit    bool
}

func newHarness(t *testing.T, tasks ...task.Task) *harness {
	t.Helper()

	repo := &memRepo{tasks: tasks}
	view := NewProgramView()
	sender := &capture{}
	view.Attach(sender)

	presenter, err := tasklist.New(repo, view, nil, zerolog.Nop())
	require.NoError(t, err)

	changes := make(chan remote.Change, 1)
	m := New(Options{
		Presenter: presenter,
		Store:     repo,
		View:      view,
		Changes:   changes,
		Logger:    zerolog.Nop(),
	})

	h := &harness{t: t, repo: repo, view: view, sender: sender, model: m, changes: changes}
	h.model.Update(tuitest.WindowSize(80, 24))
	return h
}

// start runs Init and settles the resulting messages.
func (h *harness) start() {
	h.settle(h.exec(h.model.Init()))
}

func (h *harness) send(msg tea.Msg) {
	h.settle([]tea.Msg{msg})
}

func (h *harness) press(r rune) {
	h.send(tuitest.KeyPress(r))
}

func (h *harness) settle(queue []tea.Msg) {
	queue = append(queue, h.sender.take()...)
	for i := 0; len(queue) > 0; i++ {
		require.Less(h.t, i, 200, "messages did not settle")

		msg := queue[0]
		queue = queue[1:]

		_, cmd := h.model.Update(msg)
		queue = append(queue, h.exec(cmd)...)
		queue = append(queue, h.sender.take()...)
	}
}

func (h *harness) exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(cmdTimeout):
		return nil
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, h.exec(c)...)
		}
		return out
	case tea.QuitMsg:
		h.quit = true
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func (h *harness) screen() string {
	return tuitest.StripANSI(h.model.View())
}
