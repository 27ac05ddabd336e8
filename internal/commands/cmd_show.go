package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tasks/internal/app"
	"github.com/colonyops/tasks/internal/core/logging"
	"github.com/colonyops/tasks/internal/core/styles"
	"github.com/colonyops/tasks/internal/core/task"
	"github.com/colonyops/tasks/pkg/iojson"
)

type ShowCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
	width      int
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *app.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show one task",
		UsageText: "tasks show <id> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap the description at this many columns",
				Value:       80,
				Destination: &cmd.width,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "show")

	t, err := lookupTask(ctx, c, cmd.app)
	if err != nil {
		return err
	}
	if err := cmd.app.Repository.Close(); err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, errWriter(c), t)
	}

	status := color.New(color.FgYellow).Sprint("active")
	if t.Completed {
		status = color.New(color.FgGreen).Sprint("completed")
	}
	_, _ = fmt.Fprintf(out, "%s · %s\n\n", status, color.New(color.Faint).Sprint(t.ID))

	_, err = fmt.Fprintln(out, renderMarkdown(t, cmd.width))
	return err
}

// renderMarkdown renders the task as a markdown document, falling back to
// the raw markdown if glamour fails.
func renderMarkdown(t task.Task, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.TitleForList())
	if t.Title != "" && t.Description != "" {
		b.WriteString(t.Description)
	}
	markdown := b.String()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
