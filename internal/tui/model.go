// Package tui implements the interactive task list on bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/tasks/internal/core/styles"
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/data/remote"
	"github.com/colonyops/tasks/internal/tasklist"
)

// TaskStore is the synchronous task access the detail page and add form need.
type TaskStore interface {
	SaveTask(ctx context.Context, t task.Task) error
	GetTask(ctx context.Context, id string) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeDetail
)

const storeTimeout = 10 * time.Second

// Options configures a Model.
type Options struct {
	Presenter *tasklist.Presenter
	Store     TaskStore
	View      *ProgramView
	// Changes delivers external edits to the remote document. May be nil.
	Changes  <-chan remote.Change
	ToastTTL time.Duration
	Logger   zerolog.Logger
}

// Model is the bubbletea model for the task list. State arrives as
// messages from ProgramView; presenter calls run inside commands so a View
// call never blocks the update loop.
type Model struct {
	presenter *tasklist.Presenter
	store     TaskStore
	view      *ProgramView
	changes   <-chan remote.Change
	log       zerolog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	toasts  *ToastController

	mode   mode
	form   *addForm
	detail *detailPage

	tasks   []task.Task
	cursor  int
	loading bool
	empty   string
	label   string
	loadErr bool

	width  int
	height int
}

// New creates the list model.
func New(opts Options) *Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	return &Model{
		presenter: opts.Presenter,
		store:     opts.Store,
		view:      opts.View,
		changes:   opts.Changes,
		log:       opts.Logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		toasts:    NewToastController(opts.ToastTTL),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.presenterCmd(m.presenter.Start),
		m.waitForChange(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.detail != nil {
			m.detail.render(msg.Width)
		}
		return m, nil

	case loadingMsg:
		wasLoading := m.loading
		m.loading = msg.active
		if msg.active && !wasLoading {
			return m, m.spinner.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksMsg:
		m.tasks = msg.tasks
		m.empty = ""
		m.loadErr = false
		m.clampCursor()
		return m, nil

	case emptyMsg:
		m.tasks = nil
		m.empty = msg.text
		m.label = ""
		m.loadErr = false
		m.cursor = 0
		return m, nil

	case filterLabelMsg:
		m.label = msg.label
		return m, nil

	case loadErrorMsg:
		m.loadErr = true
		m.loading = false
		m.toasts.Push("Error while loading tasks", toastError)
		return m, m.toasts.startTicking()

	case toastMsg:
		m.toasts.Push(msg.text, msg.level)
		return m, m.toasts.startTicking()

	case toastTickMsg:
		return m, m.toasts.handleTick()

	case showAddMsg:
		m.mode = modeAdd
		m.form = newAddForm()
		return m, m.form.Init()

	case showDetailsMsg:
		return m, m.loadDetail(msg.id)

	case detailLoadedMsg:
		if msg.err != nil {
			m.toasts.Push(fmt.Sprintf("Task not available: %v", msg.err), toastError)
			return m, m.toasts.startTicking()
		}
		m.mode = modeDetail
		m.detail = newDetailPage(msg.task, m.width)
		return m, nil

	case taskSavedMsg:
		return m.closeAdd(msg.err)

	case taskDeletedMsg:
		return m.closeDetail(msg.err, "Task deleted")

	case remoteChangedMsg:
		m.log.Debug().Str("path", msg.change.Path).Msg("remote changed, reloading")
		return m, tea.Batch(
			m.presenterCmd(func() { m.presenter.LoadTasks(true) }),
			m.waitForChange(),
		)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modeAdd && m.form != nil {
		return m, m.updateForm(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAdd:
		if msg.String() == "esc" {
			m.form = nil
			m.mode = modeList
			return m, m.presenterCmd(func() {
				m.presenter.Result(tasklist.RequestAddTask, tasklist.ResultCanceled)
				m.presenter.LoadTasks(false)
			})
		}
		return m, m.updateForm(msg)

	case modeDetail:
		switch msg.String() {
		case "esc", "q", "backspace":
			return m.closeDetail(nil, "")
		case "d":
			return m, m.deleteTask(m.detail.task.ID)
		case "ctrl+c":
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if t.Completed {
			return m, m.presenterErrCmd(func() error { return m.presenter.ActivateTask(&t) })
		}
		return m, m.presenterErrCmd(func() error { return m.presenter.CompleteTask(&t) })

	case key.Matches(msg, m.keys.Details):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.presenterErrCmd(func() error { return m.presenter.OpenTaskDetails(&t) })

	case key.Matches(msg, m.keys.Add):
		return m, m.presenterCmd(m.presenter.AddNewTask)

	case key.Matches(msg, m.keys.Filter):
		m.presenter.SetFiltering(m.presenter.Filtering().Next())
		return m, m.presenterCmd(func() { m.presenter.LoadTasks(false) })

	case key.Matches(msg, m.keys.Refresh):
		return m, m.presenterCmd(func() { m.presenter.LoadTasks(true) })

	case key.Matches(msg, m.keys.Clear):
		return m, m.presenterCmd(m.presenter.ClearCompletedTasks)

	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
	}

	return m, nil
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	cmd := m.form.Update(msg)

	switch {
	case m.form.Aborted():
		m.form = nil
		m.mode = modeList
		return m.presenterCmd(func() {
			m.presenter.Result(tasklist.RequestAddTask, tasklist.ResultCanceled)
			m.presenter.LoadTasks(false)
		})
	case m.form.Done() && !m.form.submitted:
		m.form.submitted = true
		return m.saveTask(m.form.Task())
	}

	return cmd
}

func (m *Model) closeAdd(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.toasts.Push(fmt.Sprintf("Save failed: %v", err), toastError)
		m.form = newAddForm()
		return m, tea.Batch(m.form.Init(), m.toasts.startTicking())
	}

	m.form = nil
	m.mode = modeList
	return m, m.presenterCmd(func() {
		m.presenter.Result(tasklist.RequestAddTask, tasklist.ResultOK)
		m.presenter.LoadTasks(false)
	})
}

func (m *Model) closeDetail(err error, toast string) (tea.Model, tea.Cmd) {
	if err != nil {
		m.toasts.Push(fmt.Sprintf("Delete failed: %v", err), toastError)
		return m, m.toasts.startTicking()
	}

	m.detail = nil
	m.mode = modeList

	var toastCmd tea.Cmd
	if toast != "" {
		m.toasts.Push(toast, toastSuccess)
		toastCmd = m.toasts.startTicking()
	}

	return m, tea.Batch(toastCmd, m.presenterCmd(func() {
		m.presenter.Result(tasklist.RequestTaskDetails, tasklist.ResultOK)
		m.presenter.LoadTasks(false)
	}))
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.view != nil {
		m.view.Detach()
	}
	return m, tea.Quit
}

func (m *Model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, max(len(m.tasks)-1, 0))
}

// presenterCmd runs fn off the update loop. View calls made by fn come back
// as messages.
func (m *Model) presenterCmd(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m *Model) presenterErrCmd(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			m.log.Error().Err(err).Msg("presenter call failed")
			return toastMsg{text: err.Error(), level: toastError}
		}
		return nil
	}
}

func (m *Model) saveTask(t task.Task) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return taskSavedMsg{err: m.store.SaveTask(ctx, t)}
	}
}

func (m *Model) loadDetail(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		t, err := m.store.GetTask(ctx, id)
		return detailLoadedMsg{task: t, err: err}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return taskDeletedMsg{err: m.store.DeleteTask(ctx, id)}
	}
}

// waitForChange blocks on the next remote change. The model re-issues it
// after each change.
func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return remoteChangedMsg{change: c}
	}
}

func (m *Model) View() string {
	var body string
	switch m.mode {
	case modeAdd:
		body = m.form.View()
	case modeDetail:
		body = m.detail.View()
	default:
		body = m.listView()
	}

	if toasts := m.toasts.View(); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, toasts)
	}
	return body
}

func (m *Model) listView() string {
	var b strings.Builder

	header := styles.TitleStyle.Render(styles.IconCheckList + "Tasks")
	if m.loading {
		header += " " + m.spinner.View()
	}
	b.WriteString(header)
	b.WriteString("\n")

	switch {
	case m.loadErr && len(m.tasks) == 0 && m.empty == "":
		b.WriteString(styles.ErrorStyle.Render("Error while loading tasks"))
		b.WriteString("\n")
	case m.empty != "":
		b.WriteString(styles.EmptyStyle.Render(m.empty))
		b.WriteString("\n")
	default:
		if m.label != "" {
			b.WriteString(styles.FilterLabelStyle.Render(m.label))
			b.WriteString("\n")
		}
		for i, t := range m.tasks {
			b.WriteString(m.renderRow(t, i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString(styles.HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) renderRow(t task.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = styles.CursorStyle.Render(styles.IconCursor) + " "
	}

	mark, title := styles.IconOpen, styles.ActiveTaskStyle.Render(t.TitleForList())
	if t.Completed {
		mark, title = styles.IconDone, styles.DoneTaskStyle.Render(t.TitleForList())
	}

	row := cursor + mark + " " + title
	if selected {
		row = styles.SelectedTaskStyle.Render(row)
	}
	return row
}
