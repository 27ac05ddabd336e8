package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/tasks/internal/core/styles"
	"github.com/colonyops/tasks/internal/core/task"
)

// detailPage shows one task with its description rendered as markdown.
type detailPage struct {
	task     task.Task
	rendered string
}

func newDetailPage(t task.Task, width int) *detailPage {
	d := &detailPage{task: t}
	d.render(width)
	return d
}

func (d *detailPage) render(width int) {
	wrap := max(width-4, 20)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.task.TitleForList())
	if d.task.Title != "" && d.task.Description != "" {
		b.WriteString(d.task.Description)
	}
	markdown := b.String()

	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		d.rendered = markdown
		return
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		d.rendered = markdown
		return
	}
	d.rendered = strings.TrimSpace(out)
}

func (d *detailPage) View() string {
	status := "active"
	if d.task.Completed {
		status = "completed"
	}
	meta := styles.DetailMetaStyle.Render(fmt.Sprintf("%s · %s", status, d.task.ID))
	help := styles.HelpStyle.Render("esc back  d delete")

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.DetailFrameStyle.Render(d.rendered),
		meta,
		help,
	)
}
