package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/tasklist"
)

// StatusCmd registers the commands that change task status: complete,
// activate and clear.
type StatusCmd struct {
	flags *Flags
	app   *app.App
}

// NewStatusCmd creates the status commands
func NewStatusCmd(flags *Flags, app *app.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the complete, activate and clear commands to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "complete",
			Aliases:   []string{"done"},
			Usage:     "Mark a task complete",
			UsageText: "tasks complete <id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.setStatus(ctx, c, "complete", (*tasklist.Presenter).CompleteTask)
			},
		},
		&cli.Command{
			Name:      "activate",
			Aliases:   []string{"reopen"},
			Usage:     "Mark a task active again",
			UsageText: "tasks activate <id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.setStatus(ctx, c, "activate", (*tasklist.Presenter).ActivateTask)
			},
		},
		&cli.Command{
			Name:      "clear",
			Usage:     "Remove all completed tasks",
			UsageText: "tasks clear",
			Action:    cmd.clear,
		},
	)

	return app
}

func (cmd *StatusCmd) setStatus(ctx context.Context, c *cli.Command, name string, apply func(*tasklist.Presenter, *task.Task) error) error {
	ctx = logging.WithCommand(ctx, name)

	t, err := lookupTask(ctx, c, cmd.app)
	if err != nil {
		return err
	}
	ctx = logging.WithTaskID(ctx, t.ID)

	s, err := newListSession(ctx, c, cmd.app, false)
	if err != nil {
		return err
	}

	log.Info().Ctx(ctx).Bool("completed", t.Completed).Msg("changing task status")

	if err := apply(s.presenter, &t); err != nil {
		return err
	}
	return s.render(ctx)
}

func (cmd *StatusCmd) clear(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "clear")

	s, err := newListSession(ctx, c, cmd.app, false)
	if err != nil {
		return err
	}

	log.Info().Ctx(ctx).Msg("clearing completed tasks")

	s.presenter.ClearCompletedTasks()
	return s.render(ctx)
}
