package tui

import "errors"

// ErrMissingStoreService is returned when the store service is not provided.
var ErrMissingStoreService = errors.New("tui: store service is required")
