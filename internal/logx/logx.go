// Package logx provides the structured logging plumbing shared across the
// probe's packages. Its shape mirrors eventloop/logging.go: a package-level
// default that can be swapped out, so every component works standalone but
// integrates with a real structured-logging framework - here,
// github.com/joeycumines/logiface backed by github.com/joeycumines/stumpy.
package logx

import (
	"io"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type every package in this module accepts.
type Logger = *logiface.Logger[*stumpy.Event]

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewNop()
)

// New builds a Logger that writes newline-delimited JSON to w.
func New(w io.Writer) Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
	)
}

// NewStderr builds a Logger writing to os.Stderr, the stumpy package default.
func NewStderr() Logger {
	return New(os.Stderr)
}

// NewNop builds a Logger with logging disabled - used as the zero-value
// default so components never need a nil check before logging.
func NewNop() Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(),
		stumpy.L.WithLevel(logiface.LevelDisabled),
	)
}

// SetGlobal installs l as the package-level default logger.
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Global returns the current package-level default logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
