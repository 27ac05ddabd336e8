package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/console"
	"github.com/colonyops/tasks/internal/core/idling"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/internal/tasklist"
)

// settleTimeout bounds how long a command waits for background loads.
const settleTimeout = 30 * time.Second

// listSession binds a presenter to a console view for a single command run.
type listSession struct {
	app       *app.App
	view      *console.View
	busy      *idling.Counter
	presenter *tasklist.Presenter
}

func newListSession(ctx context.Context, c *cli.Command, a *app.App, jsonOut bool) (*listSession, error) {
	root := c.Root()
	view := console.New(root.Writer, root.ErrWriter, console.WithJSON(jsonOut))
	busy := idling.NewCounter(logging.GetCommand(ctx))

	p, err := tasklist.New(a.Repository, view, busy, log.Logger)
	if err != nil {
		return nil, err
	}
	p.SetFiltering(a.Config.Filter())

	return &listSession{app: a, view: view, busy: busy, presenter: p}, nil
}

// settle waits until every load has been delivered or one has failed, and
// until queued remote writes are applied, then stops the view from accepting
// further updates.
func (s *listSession) settle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	if err := s.waitForLoads(ctx); err != nil {
		return fmt.Errorf("wait for tasks: %w", err)
	}
	if err := s.app.Repository.Close(); err != nil {
		return fmt.Errorf("flush repository: %w", err)
	}
	s.view.Deactivate()
	return nil
}

// waitForLoads returns once the busy counter goes idle or the view reports a
// failed load, whichever comes first.
func (s *listSession) waitForLoads(ctx context.Context) error {
	waitCtx, stop := context.WithCancel(ctx)
	defer stop()

	go func() {
		select {
		case <-s.view.Failed():
			stop()
		case <-waitCtx.Done():
		}
	}()

	err := s.busy.WaitForIdle(waitCtx)
	if err != nil && ctx.Err() == nil {
		select {
		case <-s.view.Failed():
			return nil
		default:
		}
	}
	return err
}

// render settles the session and writes the resulting list.
func (s *listSession) render(ctx context.Context) error {
	if err := s.settle(ctx); err != nil {
		return err
	}
	if err := s.view.Render(); err != nil {
		return err
	}
	return s.view.Err()
}

// lookupTask resolves the task named by the first positional argument.
func lookupTask(ctx context.Context, c *cli.Command, a *app.App) (task.Task, error) {
	id := c.Args().First()
	if id == "" {
		return task.Task{}, fmt.Errorf("task id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	t, err := a.Repository.GetTask(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("get task %q: %w", id, err)
	}
	return t, nil
}

func errWriter(c *cli.Command) io.Writer {
	return c.Root().ErrWriter
}
