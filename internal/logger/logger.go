// Package logger provides leveled logging for lsmkv.
// Debug, info and warning messages are printed to stderr only when verbose
// mode is enabled via the --verbose flag; errors are always printed.
// Components log through a Scope so every line names its origin,
// e.g. "[DEBUG] lsm: flushed 1001 entries to sstable-...".
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write serialises output so concurrent callers never interleave lines.
func write(always bool, level, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !always && !verbose {
		return
	}
	fmt.Fprintf(output, "["+level+"] "+prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "DEBUG", "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "INFO", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "WARN", "", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "ERROR", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Scope prefixes every message with a component name.
type Scope struct {
	prefix string
}

// For returns a Scope for the named component.
func For(component string) Scope {
	return Scope{prefix: component + ": "}
}

// Debug prints a message if verbose mode is enabled.
func (s Scope) Debug(format string, args ...any) {
	write(false, "DEBUG", s.prefix, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (s Scope) Info(format string, args ...any) {
	write(false, "INFO", s.prefix, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (s Scope) Warn(format string, args ...any) {
	write(false, "WARN", s.prefix, format, args...)
}

// Error prints an error message regardless of verbose mode.
func (s Scope) Error(format string, args ...any) {
	write(true, "ERROR", s.prefix, format, args...)
}
