package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the program and blocks until the user quits or ctx is done.
// opts.View is attached to the program for the duration of the run.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	opts.View.Attach(p)
	defer opts.View.Detach()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
