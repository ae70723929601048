package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	loadTimeout   = 2 * time.Minute
	exportTimeout = time.Minute
)

// loadRecap fetches and builds the recap. refresh bypasses the session cache.
func (m Model) loadRecap(refresh bool) tea.Cmd {
	source := m.source
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()

		result, err := source.Table(ctx, refresh)
		return recapLoadedMsg{result: result, err: err, refresh: refresh}
	}
}

// exportRecap writes the recap built from the cached snapshot, so an export
// right after a load does not hit the backend again.
func (m Model) exportRecap() tea.Cmd {
	source := m.source
	parent := m.ctx
	writer := m.config.Writer
	target := m.config.ExportTarget
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, exportTimeout)
		defer cancel()

		result, err := source.Table(ctx, false)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := writer.Write(ctx, result.Table); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{target: target, rows: len(result.Table.Rows), at: time.Now()}
	}
}
