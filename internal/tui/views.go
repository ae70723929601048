package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.result == nil {
		return m.renderLoading()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitle(),
		m.table.View(),
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

// renderLoading renders the screen shown before the first table arrives.
func (m Model) renderLoading() string {
	lines := []string{
		m.theme.Title.Render("POS Visit Recap"),
		"",
	}
	if m.lastError != nil && m.state != StateLoading {
		lines = append(lines,
			m.theme.StatusError.Render("Failed to load recap"),
			m.theme.Normal.Render(m.lastError.Error()),
			"",
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("r to retry, q to quit"),
		)
	} else {
		lines = append(lines, m.theme.StatusPending.Render("Fetching visit records..."))
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...),
	)
}

func (m Model) renderTitle() string {
	title := m.theme.Title.Render("POS Visit Recap")

	cols := len(m.result.Table.Columns)
	if cols <= 1 {
		return title
	}
	visible := m.visibleColumns()
	first, last := visible[0], visible[len(visible)-1]
	if len(visible) > 1 {
		first = visible[1]
	}
	scroll := lipgloss.NewStyle().Foreground(m.theme.Muted).
		Render(fmt.Sprintf("  columns %d-%d of %d", first+1, last+1, cols))
	return title + scroll
}

// statusText is the plain status line: rows, fetch time, export, error.
func (m Model) statusText() string {
	parts := []string{fmt.Sprintf("%d rows", len(m.result.Table.Rows))}

	fetched := "fetched " + m.result.FetchedAt.Local().Format("15:04:05")
	if m.result.FromCache {
		fetched += " (cached)"
	}
	parts = append(parts, fetched)

	switch m.state {
	case StateLoading:
		parts = append(parts, "refreshing...")
	case StateExporting:
		parts = append(parts, "exporting...")
	}

	if m.exportedTo != "" {
		parts = append(parts, "exported to "+m.exportedTo)
	}
	return strings.Join(parts, " · ")
}

// renderStatusBar renders the bottom status bar.
func (m Model) renderStatusBar() string {
	status := m.theme.StatusInfo.Render(m.statusText())
	if m.lastError != nil {
		status += "  " + m.theme.StatusError.Render("error: "+m.lastError.Error())
	}

	return m.theme.StatusBar.
		Width(m.width).
		MaxWidth(m.width).
		Render(status)
}
