// Package logger provides verbose logging for clausewise.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace each pipeline stage and provider fallback.
// Errors are always printed.
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

func logf(always bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose || always {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, "[DEBUG] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	logf(false, "\n=== ", "%s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(false, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(true, "[ERROR] ", format, args...)
}

// Scoped prefixes every message with a fixed tag such as a request ID.
type Scoped struct {
	tag string
}

// With returns a logger that prefixes messages with [tag].
func With(tag string) *Scoped {
	return &Scoped{tag: "[" + tag + "] "}
}

// Debug prints a tagged debug message.
func (s *Scoped) Debug(format string, args ...any) {
	logf(false, "[DEBUG] "+s.tag, format, args...)
}

// Info prints a tagged informational message.
func (s *Scoped) Info(format string, args ...any) {
	logf(false, "[INFO] "+s.tag, format, args...)
}

// Warn prints a tagged warning.
func (s *Scoped) Warn(format string, args ...any) {
	logf(false, "[WARN] "+s.tag, format, args...)
}

// Error prints a tagged error regardless of verbose mode.
func (s *Scoped) Error(format string, args ...any) {
	logf(true, "[ERROR] "+s.tag, format, args...)
}

// Printer adapts the verbose logger to APIs that expect Print(v ...any),
// such as chi's request logger.
type Printer struct{}

// Print writes the values as one verbose INFO line.
func (Printer) Print(v ...any) {
	logf(false, "[HTTP] ", "%s", fmt.Sprint(v...))
}
