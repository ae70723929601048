package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, source Source, opts ...Option) error {
	if source == nil {
		return fmt.Errorf("recap source is required")
	}

	program := tea.NewProgram(
		New(ctx, source, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// A load that failed and was never retried should not look like success.
	if m, ok := final.(Model); ok && m.result == nil && m.lastError != nil {
		return m.lastError
	}
	return nil
}
