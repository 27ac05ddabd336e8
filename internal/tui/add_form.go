package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/colonyops/tasks/internal/core/task"
)

// addForm wraps the huh form used to create a task.
type addForm struct {
	form        *huh.Form
	title       string
	description string
	submitted   bool
}

func newAddForm() *addForm {
	f := &addForm{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(task.ValidateTitle).
				Value(&f.title),
			huh.NewText().
				Title("Description").
				Description("Markdown is rendered on the detail page").
				Value(&f.description),
		),
	).WithShowHelp(true)
	return f
}

func (f *addForm) Init() tea.Cmd {
	return f.form.Init()
}

func (f *addForm) Update(msg tea.Msg) tea.Cmd {
	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}
	return cmd
}

func (f *addForm) View() string {
	return f.form.View()
}

func (f *addForm) Done() bool {
	return f.form.State == huh.StateCompleted
}

func (f *addForm) Aborted() bool {
	return f.form.State == huh.StateAborted
}

// Task builds the task entered in the form.
func (f *addForm) Task() task.Task {
	return task.New(strings.TrimSpace(f.title), strings.TrimSpace(f.description))
}
