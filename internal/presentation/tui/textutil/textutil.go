// Package textutil flattens and clips feed titles and snippets so each item
// fits the terminal list and the plain-text output.
package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SingleLine collapses the line breaks and runs of whitespace that feed
// titles often carry into single spaces.
func SingleLine(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// Truncate clips text to width terminal cells, ending with "...".
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(text, width, "...")
}
