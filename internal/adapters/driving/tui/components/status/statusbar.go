// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// State represents the current console state for display.
type State string

const (
	StateReady   State = "ready"
	StateRunning State = "running"
	StateError   State = "error"
)

// Bar displays store statistics and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	stats   *domain.StoreStats
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state and, when known, the store summary.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateRunning:
		return s.styles.Muted.Render("Running...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateReady:
	}

	if s.stats == nil {
		return s.styles.Muted.Render("Ready")
	}
	return s.styles.Normal.Render(Summary(s.stats))
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// Summary describes stats on one line.
func Summary(stats *domain.StoreStats) string {
	parts := []string{string(stats.Backend)}
	if stats.Keys >= 0 {
		parts = append(parts, fmt.Sprintf("%d keys", stats.Keys))
	}
	if stats.Backend == domain.BackendLSM {
		parts = append(parts,
			fmt.Sprintf("memtable %d", stats.MemtableSize),
			fmt.Sprintf("%d sstables", len(stats.Tables)),
		)
	}
	if stats.CacheHits > 0 || stats.CacheMisses > 0 {
		parts = append(parts, fmt.Sprintf("cache %d/%d", stats.CacheHits, stats.CacheHits+stats.CacheMisses))
	}
	return strings.Join(parts, " · ")
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the error message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetStats sets the store statistics shown when ready.
func (s *Bar) SetStats(stats *domain.StoreStats) {
	s.stats = stats
}

// Stats returns the last statistics set.
func (s *Bar) Stats() *domain.StoreStats {
	return s.stats
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
