// Package tui is the interactive recap viewer.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/recap"
	"github.com/Veraticus/visit-recap/internal/tui/themes"
)

// Source produces recap tables. *recap.Service implements it.
type Source interface {
	Table(ctx context.Context, refresh bool) (*recap.Result, error)
}

// State represents the current state of the TUI.
type State int

const (
	StateLoading State = iota
	StateReady
	StateExporting
)

const (
	// chromeHeight is the rows taken by the title, status bar and help line.
	chromeHeight = 5
	// minColumnWidth keeps narrow columns wide enough for a short number.
	minColumnWidth = 4
)

// Model holds the main TUI state.
type Model struct {
	ctx        context.Context
	source     Source
	lastError  error
	result     *recap.Result
	exportedAt time.Time
	theme      themes.Theme
	config     Config
	exportedTo string
	keymap     KeyMap
	help       help.Model
	table      table.Model
	widths     []int
	width      int
	height     int
	colOffset  int
	state      State
	quitting   bool
}

// New creates the viewer model.
func New(ctx context.Context, source Source, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.TableHeader
	styles.Selected = cfg.Theme.TableSelected

	t := table.New(
		table.WithFocused(true),
		table.WithStyles(styles),
		table.WithHeight(max(cfg.Height-chromeHeight, 3)),
	)

	return Model{
		ctx:    ctx,
		source: source,
		config: cfg,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		table:  t,
		width:  cfg.Width,
		height: cfg.Height,
		state:  StateLoading,
	}
}

// Init starts the first load. It uses the session cache.
func (m Model) Init() tea.Cmd {
	return m.loadRecap(false)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKeys(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.height-chromeHeight, 3))
		m.layoutColumns()
		return m, nil

	case recapLoadedMsg:
		m.state = StateReady
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.result = msg.result
		m.widths = columnWidths(msg.result.Table, m.config.MaxColWidth)
		m.colOffset = min(m.colOffset, m.maxOffset())
		m.layoutColumns()
		return m, nil

	case exportDoneMsg:
		m.state = StateReady
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.exportedTo = msg.target
		m.exportedAt = msg.at
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleKeys handles the viewer's own keys. Anything else goes to the table.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit, true

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil, true

	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen, true

	case key.Matches(msg, m.keymap.Refresh):
		if m.state == StateLoading {
			return m, nil, true
		}
		m.state = StateLoading
		return m, m.loadRecap(true), true

	case key.Matches(msg, m.keymap.Export):
		if m.state != StateReady || m.result == nil || m.config.Writer == nil {
			return m, nil, true
		}
		m.state = StateExporting
		return m, m.exportRecap(), true

	case key.Matches(msg, m.keymap.ScrollLeft):
		if m.colOffset > 0 {
			m.colOffset--
			m.layoutColumns()
		}
		return m, nil, true

	case key.Matches(msg, m.keymap.ScrollRight):
		if m.colOffset < m.maxOffset() {
			m.colOffset++
			m.layoutColumns()
		}
		return m, nil, true
	}
	return m, nil, false
}

// maxOffset is the last scroll position; column 0 is pinned and never scrolls.
func (m Model) maxOffset() int {
	if m.result == nil {
		return 0
	}
	return max(len(m.result.Table.Columns)-2, 0)
}

// visibleColumns returns the column indexes that fit the terminal: the pinned
// first column, then as many as fit starting at colOffset+1.
func (m Model) visibleColumns() []int {
	if m.result == nil || len(m.result.Table.Columns) == 0 {
		return nil
	}

	// Each column renders with one cell of padding on both sides.
	budget := m.width - 2 - (m.widths[0] + 2)
	cols := []int{0}
	for i := m.colOffset + 1; i < len(m.result.Table.Columns); i++ {
		need := m.widths[i] + 2
		if budget < need && len(cols) > 1 {
			break
		}
		budget -= need
		cols = append(cols, i)
	}
	return cols
}

// layoutColumns rebuilds the table for the current scroll position.
func (m *Model) layoutColumns() {
	if m.result == nil {
		return
	}

	visible := m.visibleColumns()
	columns := make([]table.Column, len(visible))
	for i, idx := range visible {
		columns[i] = table.Column{Title: m.result.Table.Columns[idx], Width: m.widths[idx]}
	}

	rows := make([]table.Row, len(m.result.Table.Rows))
	for r, row := range m.result.Table.Rows {
		out := make(table.Row, len(visible))
		for i, idx := range visible {
			out[i] = row[idx].String()
		}
		rows[r] = out
	}

	// Rows must never be wider than the columns while they are swapped.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
}

// columnWidths sizes each column to its widest value, capped at limit.
func columnWidths(t *model.Table, limit int) []int {
	widths := make([]int, len(t.Columns))
	for i, name := range t.Columns {
		widths[i] = lipgloss.Width(name)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell.String()); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] = max(min(widths[i], limit), minColumnWidth)
	}
	return widths
}
