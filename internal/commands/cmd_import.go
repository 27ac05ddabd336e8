package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/pkg/iojson"
)

type ImportCmd struct {
	flags *Flags
	app   *app.App

	// flags
	replace bool
	input   iojson.FileReader[[]task.Task]
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *app.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Import tasks from JSON",
		UsageText: "tasks import [-f tasks.json] [--replace]",
		Description: `Reads a JSON array of tasks from a file or stdin and stores them.

Tasks without an id get a new one. Existing tasks with the same id are
overwritten. With --replace, every existing task is removed first.

Example:
  echo '[{"title": "buy milk"}, {"title": "call mom", "completed": true}]' | tasks import`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.BoolFlag{
				Name:        "replace",
				Usage:       "replace all existing tasks",
				Destination: &cmd.replace,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "import")

	if cmd.input.Stdin == nil {
		cmd.input.Stdin = c.Root().Reader
	}

	tasks, err := cmd.input.Read()
	if err != nil {
		return err
	}

	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
	}

	if err := cmd.app.Repository.Import(ctx, tasks, cmd.replace); err != nil {
		return err
	}
	log.Info().Ctx(ctx).Int("count", len(tasks)).Bool("replace", cmd.replace).Msg("tasks imported")

	if err := cmd.app.Repository.Close(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(errWriter(c), "Imported %d task(s)\n", len(tasks))
	return err
}
