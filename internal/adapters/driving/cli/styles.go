package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))
)

// isTerminal reports whether stream is an interactive terminal.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// render applies style when w is a terminal and returns s unchanged otherwise,
// so piped output stays plain.
func render(w io.Writer, style lipgloss.Style, s string) string {
	if !isTerminal(w) {
		return s
	}
	return style.Render(s)
}
