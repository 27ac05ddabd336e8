package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/tasklist"
)

type AddCmd struct {
	flags *Flags
	app   *app.App

	// Command-specific flags
	title       string
	description string

	// interactive reports whether the form may be shown. Overridden in tests.
	interactive func() bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *app.App) *AddCmd {
	return &AddCmd{
		flags: flags,
		app:   app,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "tasks add [--title <title>] [--description <text>]",
		Description: `Creates a new active task and prints its id.

When --title is omitted on a terminal, an interactive form prompts for input.
The description is rendered as markdown by 'tasks show'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "task title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description (markdown)",
				Destination: &cmd.description,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "add")

	if cmd.title == "" && cmd.description == "" {
		if !cmd.interactive() {
			return fmt.Errorf("--title is required when stdin is not a terminal")
		}
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	t := task.New(cmd.title, cmd.description)
	ctx = logging.WithTaskID(ctx, t.ID)

	s, err := newListSession(ctx, c, cmd.app, false)
	if err != nil {
		return err
	}

	if err := cmd.app.Repository.SaveTask(ctx, t); err != nil {
		s.presenter.Result(tasklist.RequestAddTask, tasklist.ResultCanceled)
		return fmt.Errorf("save task: %w", err)
	}
	log.Info().Ctx(ctx).Msg("task added")

	s.presenter.Result(tasklist.RequestAddTask, tasklist.ResultOK)
	if err := s.settle(ctx); err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.Root().Writer, t.ID)
	return err
}

func (cmd *AddCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(task.ValidateTitle).
				Value(&cmd.title),
			huh.NewText().
				Title("Description").
				Description("Markdown is supported").
				Value(&cmd.description),
		),
	).Run()
}
