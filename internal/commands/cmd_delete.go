package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/logging"
)

type DeleteCmd struct {
	flags *Flags
	app   *app.App

	// flags
	all bool
}

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(flags *Flags, app *app.App) *DeleteCmd {
	return &DeleteCmd{flags: flags, app: app}
}

// Register adds the delete command to the application
func (cmd *DeleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task",
		UsageText: "tasks delete <id> | tasks delete --all",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "delete every task",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DeleteCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "delete")
	repo := cmd.app.Repository

	switch {
	case cmd.all && c.Args().Len() > 0:
		return errors.New("--all does not take a task id")
	case cmd.all:
		if err := repo.DeleteAllTasks(ctx); err != nil {
			return fmt.Errorf("delete all tasks: %w", err)
		}
		log.Info().Ctx(ctx).Msg("all tasks deleted")
		if err := repo.Close(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(errWriter(c), "All tasks deleted")
		return err
	}

	t, err := lookupTask(ctx, c, cmd.app)
	if err != nil {
		return err
	}
	ctx = logging.WithTaskID(ctx, t.ID)

	if err := repo.DeleteTask(ctx, t.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	log.Info().Ctx(ctx).Msg("task deleted")

	if err := repo.Close(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(errWriter(c), "Task deleted")
	return err
}
