package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// maxOutputLines bounds the scrollback of the output pane.
const maxOutputLines = 1000

type lineKind int

const (
	lineOutput lineKind = iota
	lineCommand
	lineError
)

type outputLine struct {
	text string
	kind lineKind
}

// App is the console model following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input     *input.CommandInput
	statusBar *status.Bar

	output []outputLine

	// running is set while a command is in flight. Further input is
	// ignored until it completes.
	running bool

	// err holds the error of the last command.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a console over ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		input:     input.NewCommandInput(s),
		statusBar: status.NewBar(s, km),
	}, nil
}

// WithContext sets the context commands run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("lsmkv"),
		statsCmd(a.ctx, a.ports),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.CommandCompleted:
		a.running = false
		a.err = msg.Err
		if msg.Err != nil {
			a.appendLine(msg.Err.Error(), lineError)
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		} else {
			for _, l := range msg.Output {
				a.appendLine(l, lineOutput)
			}
			a.statusBar.Clear()
		}
		return a, statsCmd(a.ctx, a.ports)

	case messages.StatsLoaded:
		// Stores without statistics keep the plain "Ready" status.
		if msg.Err == nil {
			a.statusBar.SetStats(msg.Stats)
		} else if !errors.Is(msg.Err, domain.ErrNotSupported) {
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.OutputCleared:
		a.output = nil
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(key, a.keymap.Clear):
		return a, func() tea.Msg { return messages.OutputCleared{} }
	case keymap.Matches(key, a.keymap.Help):
		for _, l := range helpText {
			a.appendLine(l, lineOutput)
		}
		return a, nil
	case keymap.Matches(key, a.keymap.Previous):
		a.input.Previous()
		return a, nil
	case keymap.Matches(key, a.keymap.Next):
		a.input.Next()
		return a, nil
	case keymap.Matches(key, a.keymap.Submit):
		return a.submit()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit runs the command line.
func (a *App) submit() (tea.Model, tea.Cmd) {
	if a.running {
		return a, nil
	}

	line := strings.TrimSpace(a.input.Submit())
	switch strings.ToLower(line) {
	case "":
		return a, nil
	case "exit", "quit":
		return a, tea.Quit
	case "clear":
		a.output = nil
		return a, nil
	}

	a.appendLine(line, lineCommand)
	a.running = true
	a.statusBar.SetState(status.StateRunning)
	return a, commandCmd(a.ctx, a.ports, line)
}

func (a *App) appendLine(text string, kind lineKind) {
	a.output = append(a.output, outputLine{text: text, kind: kind})
	if len(a.output) > maxOutputLines {
		a.output = a.output[len(a.output)-maxOutputLines:]
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("lsmkv console")
	prompt := a.input.View()
	bar := a.statusBar.View()

	// Remaining rows go to the output pane.
	rows := a.height - lipgloss.Height(header) - lipgloss.Height(prompt) - lipgloss.Height(bar) - 1
	if rows < 1 {
		rows = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		a.renderOutput(rows),
		prompt,
		bar,
	)
}

// renderOutput renders the last rows lines of output, padded to rows.
func (a *App) renderOutput(rows int) string {
	start := len(a.output) - rows
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, rows)
	for _, l := range a.output[start:] {
		switch l.kind {
		case lineCommand:
			lines = append(lines, a.styles.Command.Render("> "+l.text))
		case lineError:
			lines = append(lines, a.styles.Error.Render("error: "+l.text))
		default:
			lines = append(lines, a.styles.Normal.Render(l.text))
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Run starts the console on the terminal.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Output returns the plain text of the output pane.
func (a *App) Output() []string {
	lines := make([]string, len(a.output))
	for i, l := range a.output {
		lines[i] = l.text
	}
	return lines
}

// Running reports whether a command is in flight.
func (a *App) Running() bool {
	return a.running
}

// Err returns the error of the last command.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
}
