// Package cli holds the terminal helpers shared by the recap commands:
// message styling, the fetch spinner and interrupt handling.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Message colors.
var (
	AccentColor  = lipgloss.Color("#0EA5E9")
	SuccessColor = lipgloss.Color("#22C55E")
	WarningColor = lipgloss.Color("#EAB308")
	ErrorColor   = lipgloss.Color("#EF4444")
	MutedColor   = lipgloss.Color("#6B7280")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	successStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	warningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	labelStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AccentColor).
			Padding(0, 1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	RecapIcon   = "📋"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return successStyle.Render(SuccessIcon + " " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return errorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning prefixes message with a warning mark.
func FormatWarning(message string) string {
	return warningStyle.Render(WarningIcon + " " + message)
}

// Field is one labelled line of a summary box.
type Field struct {
	Label string
	Value any
}

// FormatFields renders fields one per line with the labels padded to the
// same width.
func FormatFields(fields ...Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		label := labelStyle.Render(fmt.Sprintf("%-*s", width+1, f.Label+":"))
		lines = append(lines, label+" "+fmt.Sprint(f.Value))
	}
	return strings.Join(lines, "\n")
}

// RenderBox draws content in a rounded box under a recap title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(RecapIcon+" "+title),
		content,
	))
}
