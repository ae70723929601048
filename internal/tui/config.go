package tui

import (
	"github.com/Veraticus/visit-recap/internal/service"
	"github.com/Veraticus/visit-recap/internal/tui/themes"
)

// Config holds the viewer settings. Width and Height are only the size used
// until the terminal reports its own.
type Config struct {
	Theme        themes.Theme
	Writer       service.TableWriter // nil disables the export key
	ExportTarget string
	Width        int
	Height       int
	MaxColWidth  int
}

// Option configures the viewer.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:       themes.Default,
		Width:       120,
		Height:      30,
		MaxColWidth: 32,
	}
}

// WithTheme sets the color scheme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithMaxColumnWidth caps how wide a column may grow to fit its longest cell.
// Values below the minimum column width are ignored.
func WithMaxColumnWidth(n int) Option {
	return func(c *Config) {
		if n >= minColumnWidth {
			c.MaxColWidth = n
		}
	}
}

// WithExporter sets where the export key writes to. target is shown in the
// status line after a successful export.
func WithExporter(w service.TableWriter, target string) Option {
	return func(c *Config) {
		c.Writer = w
		c.ExportTarget = target
	}
}
