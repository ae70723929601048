package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap holds the viewer's shortcuts. Row movement belongs to the table;
// its bindings are kept here so the help view can list them.
type KeyMap struct {
	Rows table.KeyMap

	ScrollLeft  key.Binding
	ScrollRight key.Binding
	Refresh     key.Binding
	Export      key.Binding
	ToggleHelp  key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	ClearScreen key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Rows: table.DefaultKeyMap(),

		ScrollLeft: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "earlier products"),
		),
		ScrollRight: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "later products"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refetch from Odoo"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ClearScreen: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "redraw"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ScrollLeft, k.ScrollRight, k.Refresh, k.Export, k.ToggleHelp, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Rows.LineUp, k.Rows.LineDown, k.Rows.PageUp, k.Rows.PageDown, k.Rows.GotoTop, k.Rows.GotoBottom},
		{k.ScrollLeft, k.ScrollRight},
		{k.Refresh, k.Export},
		{k.ToggleHelp, k.ClearScreen, k.Quit},
	}
}
