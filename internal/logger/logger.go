// Package logger carries the logger the CLI configures at startup, so
// library code can emit diagnostics without threading a *slog.Logger
// through every signature.
package logger

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var global atomic.Pointer[slog.Logger]

// SetGlobal installs the process-wide logger.
func SetGlobal(l *slog.Logger) {
	global.Store(l)
}

// Get returns the installed logger. Before SetGlobal runs it falls back
// to an info-level text logger on stderr.
func Get() *slog.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
