// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/styles"
)

// maxHistory bounds the number of remembered commands.
const maxHistory = 100

// CommandInput is a single-line command prompt with history recall.
type CommandInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	// cursor indexes history while recalling; len(history) means the
	// line being edited.
	cursor int
	draft  string
}

// NewCommandInput creates a focused command input.
func NewCommandInput(s *styles.Styles) *CommandInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "get KEY | put KEY VALUE | delete KEY | flush | compact | stats"
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 60

	return &CommandInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init starts the cursor blinking.
func (c *CommandInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *CommandInput) Update(msg tea.Msg) (*CommandInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the prompt and input.
func (c *CommandInput) View() string {
	label := c.styles.Title.Render("lsmkv> ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *CommandInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *CommandInput) SetValue(value string) {
	c.textinput.SetValue(value)
	c.textinput.CursorEnd()
}

// Submit records the current line in the history, clears the input and
// returns the line.
func (c *CommandInput) Submit() string {
	line := c.textinput.Value()
	if line != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != line) {
		c.history = append(c.history, line)
		if len(c.history) > maxHistory {
			c.history = c.history[len(c.history)-maxHistory:]
		}
	}
	c.cursor = len(c.history)
	c.draft = ""
	c.textinput.Reset()
	return line
}

// Previous replaces the input with the previous history entry.
func (c *CommandInput) Previous() {
	if c.cursor == 0 {
		return
	}
	if c.cursor == len(c.history) {
		c.draft = c.textinput.Value()
	}
	c.cursor--
	c.SetValue(c.history[c.cursor])
}

// Next moves forward in the history, restoring the draft at the end.
func (c *CommandInput) Next() {
	if c.cursor >= len(c.history) {
		return
	}
	c.cursor++
	if c.cursor == len(c.history) {
		c.SetValue(c.draft)
		return
	}
	c.SetValue(c.history[c.cursor])
}

// History returns remembered commands, oldest first.
func (c *CommandInput) History() []string {
	return c.history
}

// Focus sets focus on the input.
func (c *CommandInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *CommandInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *CommandInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *CommandInput) SetWidth(width int) {
	c.width = width
	// Account for prompt, border and padding
	inputWidth := width - 14
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *CommandInput) Width() int {
	return c.width
}
