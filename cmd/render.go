package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/pkg/places"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderList prints one titled list of places.
func renderList(w io.Writer, title string, views []places.EntryView) {
	t := cli.DefaultTheme
	fmt.Fprintln(w, t.Kind.Render(strings.ToUpper(title)))
	if len(views) == 0 {
		fmt.Fprintln(w, "  "+t.Muted.Render("(none)"))
		return
	}

	width := 0
	for _, v := range views {
		if n := lipgloss.Width(v.Name); n > width {
			width = n
		}
	}
	name := t.Name.Width(width)
	for _, v := range views {
		target := v.URI
		if v.Path != "" {
			target = v.Path
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", name.Render(v.Name), target, t.Muted.Render(v.Icon))
	}
}

// renderSnapshot prints every list in Kinds order.
func renderSnapshot(w io.Writer, snap places.Snapshot) {
	for i, kind := range places.Kinds {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderList(w, kind.String(), snap.List(kind))
	}
}
