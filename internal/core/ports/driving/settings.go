package driving

import "github.com/custodia-labs/lsmkv/internal/core/domain"

// SettingsService manages engine settings.
type SettingsService interface {
	// Get retrieves current engine settings, falling back to defaults.
	Get() (*domain.EngineSettings, error)

	// Save persists engine settings.
	Save(settings *domain.EngineSettings) error

	// Set parses raw according to the key's type and persists it.
	// Returns domain.ErrInvalidInput for unknown keys or unparsable values.
	Set(key, raw string) error

	// Lookup returns the effective value of key formatted as a string.
	Lookup(key string) (string, error)

	// Keys returns every supported setting key in sorted order.
	Keys() []string

	// Validate checks the current settings.
	Validate() error

	// Effective returns the current settings with invalid values replaced by
	// their defaults, and a description of each replacement.
	Effective() (*domain.EngineSettings, []string, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.EngineSettings

	// Path returns where settings are persisted.
	Path() string
}
