// Package themes holds the color schemes of the recap viewer.
package themes

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the handful of colors a theme is derived from.
type Palette struct {
	Text    lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Error   lipgloss.Color
	Pending lipgloss.Color
	Bar     lipgloss.Color
}

// Theme is the set of styles the viewer renders with.
type Theme struct {
	Title         lipgloss.Style
	Normal        lipgloss.Style
	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
	StatusBar     lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
	Muted         lipgloss.Color
}

// New derives a theme from p.
func New(p Palette) Theme {
	return Theme{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Normal: lipgloss.NewStyle().Foreground(p.Text),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Border).
			BorderBottom(true).
			Padding(0, 1),
		TableSelected: lipgloss.NewStyle().Bold(true).Foreground(p.Bar).Background(p.Accent),
		StatusBar:     lipgloss.NewStyle().Foreground(p.Text).Background(p.Bar).Padding(0, 1),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.Muted),
		StatusError:   lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		StatusPending: lipgloss.NewStyle().Italic(true).Foreground(p.Pending),
		Muted:         p.Muted,
	}
}

var (
	// Default suits dark terminals.
	Default = New(Palette{
		Text:    "#fafafa",
		Accent:  "#38bdf8",
		Muted:   "#737373",
		Border:  "#404040",
		Error:   "#ef4444",
		Pending: "#facc15",
		Bar:     "#1f2937",
	})

	// CatppuccinMocha follows the Catppuccin Mocha palette.
	CatppuccinMocha = New(Palette{
		Text:    "#cdd6f4",
		Accent:  "#89b4fa",
		Muted:   "#6c7086",
		Border:  "#45475a",
		Error:   "#f38ba8",
		Pending: "#f9e2af",
		Bar:     "#181825",
	})

	// Light suits light terminals.
	Light = New(Palette{
		Text:    "#1f2937",
		Accent:  "#0369a1",
		Muted:   "#6b7280",
		Border:  "#d1d5db",
		Error:   "#b91c1c",
		Pending: "#a16207",
		Bar:     "#e5e7eb",
	})
)

var byName = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
	"light":            Light,
}

// GetTheme returns the named theme, or Default for unknown names.
func GetTheme(name string) Theme {
	if t, ok := byName[name]; ok {
		return t
	}
	return Default
}

// Names lists the theme names GetTheme accepts.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
