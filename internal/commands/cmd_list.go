package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/core/task"
)

type ListCmd struct {
	flags *Flags
	app   *app.App

	// flags
	filter     string
	jsonOutput bool
}

// NewListCmd creates a new list command
func NewListCmd(flags *Flags, app *app.App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

// Register adds the list command to the application
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "tasks list [--filter all|active|completed] [--json]",
		Description: `Loads tasks from the remote document and prints them.

The filter defaults to the configured default_filter. Use --json for one JSON
object per line.`,
		Flags: cmd.Flags(),
		Action: cmd.run,
	})

	return app
}

// Flags returns the list flags. The root command reuses them for its
// non-interactive default action.
func (cmd *ListCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Usage:       "which tasks to show (all, active, completed)",
			Destination: &cmd.filter,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "output as JSON lines",
			Destination: &cmd.jsonOutput,
		},
	}
}

// Run lists tasks. Exported for use as the non-interactive default command.
func (cmd *ListCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "list")

	s, err := newListSession(ctx, c, cmd.app, cmd.jsonOutput)
	if err != nil {
		return err
	}

	if cmd.filter != "" {
		f, err := task.ParseFilterType(cmd.filter)
		if err != nil {
			return fmt.Errorf("--filter: %w", err)
		}
		s.presenter.SetFiltering(f)
	}

	log.Debug().Ctx(ctx).Str("filter", s.presenter.Filtering().String()).Msg("listing tasks")

	s.presenter.Start()
	return s.render(ctx)
}
