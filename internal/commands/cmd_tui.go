package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/idling"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/data/remote"
	"github.com/colonyops/tasks/internal/tasklist"
	"github.com/colonyops/tasks/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *app.App

	// flags
	noWatch bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *app.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive task list",
		Flags:  cmd.Flags(),
		Action: cmd.run,
	})
	return app
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "do not reload when another process edits the remote document",
			Sources:     cli.EnvVars("TASKS_NO_WATCH"),
			Destination: &cmd.noWatch,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx = logging.WithCommand(ctx, "tui")
	cfg := cmd.app.Config

	view := tui.NewProgramView()
	presenter, err := tasklist.New(cmd.app.Repository, view, idling.NewCounter("tui"), log.Logger)
	if err != nil {
		return err
	}
	presenter.SetFiltering(cfg.Filter())

	var changes <-chan remote.Change
	if cfg.Remote.Watch && !cmd.noWatch {
		w, err := cmd.app.Watch()
		if err != nil {
			// The list still works without live reloads.
			log.Warn().Ctx(ctx).Err(err).Msg("failed to watch remote document")
		} else {
			defer func() { _ = w.Close() }()
			changes = w.Events()
		}
	}

	log.Info().Ctx(ctx).Str("filter", presenter.Filtering().String()).Msg("starting tui")

	err = tui.Run(ctx, tui.Options{
		Presenter: presenter,
		Store:     cmd.app.Repository,
		View:      view,
		Changes:   changes,
		ToastTTL:  cfg.TUI.ToastTTL,
		Logger:    logging.Component("tui"),
	})
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
