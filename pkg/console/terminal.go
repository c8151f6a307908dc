package console

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWidth is the wrap width used when the terminal size is unknown.
const DefaultWidth = 80

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the width of the terminal on f, or DefaultWidth.
func Width(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// NewMarkdownRenderer returns a function rendering replies as terminal
// markdown wrapped at width. Content is returned unchanged when rendering fails.
func NewMarkdownRenderer(width int) (func(string) string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return func(content string) string {
		rendered, err := r.Render(content)
		if err != nil {
			return content
		}
		return rendered
	}, nil
}
