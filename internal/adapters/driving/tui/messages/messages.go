// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// CommandCompleted carries the outcome of a console command.
type CommandCompleted struct {
	// Command is the line as typed.
	Command string

	// Output is what the command printed, one entry per line.
	Output []string

	Err error
}

// StatsLoaded carries fresh store statistics for the status bar.
type StatsLoaded struct {
	Stats *domain.StoreStats
	Err   error
}

// OutputCleared is sent when the output pane is emptied.
type OutputCleared struct{}
