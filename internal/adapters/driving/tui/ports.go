// Package tui provides an interactive terminal console for lsmkv.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/lsmkv/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Store reads and writes keys. Required.
	Store driving.StoreService

	// Settings answers "config" commands. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Store == nil {
		return ErrMissingStoreService
	}
	return nil
}
