package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Console prints short styled status lines for interactive commands. Log
// records still go through NewLogger; Console is for results a user asked for.
type Console struct {
	w      io.Writer
	styles ConsoleStyles
}

// ConsoleStyles holds the lipgloss styles used by Console.
type ConsoleStyles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Path    lipgloss.Style
}

func DefaultConsoleStyles() ConsoleStyles {
	return ConsoleStyles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Path:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
	}
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, styles: DefaultConsoleStyles()}
}

// Success prints msg prefixed with a check mark.
func (c *Console) Success(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", c.styles.Success.Render("✓"), c.styles.Success.Render(msg))
}

// Warn prints msg prefixed with a warning sign.
func (c *Console) Warn(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", c.styles.Warning.Render("⚠"), c.styles.Warning.Render(msg))
}

// Field prints an aligned "key: value" line.
func (c *Console) Field(key string, value interface{}) {
	fmt.Fprintf(c.w, "%s %s\n", c.styles.Key.Render(fmt.Sprintf("%-10s", key+":")), c.styles.Value.Render(fmt.Sprint(value)))
}

// Path is Field for filesystem paths. Empty paths print as "(none)".
func (c *Console) Path(key, path string) {
	if path == "" {
		path = "(none)"
	}
	fmt.Fprintf(c.w, "%s %s\n", c.styles.Key.Render(fmt.Sprintf("%-10s", key+":")), c.styles.Path.Render(path))
}
