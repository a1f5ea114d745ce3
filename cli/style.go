package cli

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used for help, errors and place listings.
type Theme struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Command lipgloss.Style
	Flag    lipgloss.Style
	Muted   lipgloss.Style
	Italic  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Kind    lipgloss.Style
	Name    lipgloss.Style
}

// DefaultTheme adapts to light and dark terminals.
var DefaultTheme = &Theme{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#d75f00", Dark: "#ff8700"}),
	Section: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#d75f00", Dark: "#ff8700"}),
	Command: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#005fd7", Dark: "#5fafff"}),
	Flag:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8700af", Dark: "#d787ff"}),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#767676", Dark: "#8a8a8a"}),
	Italic:  lipgloss.NewStyle().Italic(true),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#d70000", Dark: "#ff5f5f"}),
	Success: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008700", Dark: "#87d787"}),
	Kind:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#008787", Dark: "#5fd7d7"}),
	Name:    lipgloss.NewStyle().Bold(true),
}
