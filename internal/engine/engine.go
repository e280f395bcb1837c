// Package engine runs a single scenario at a time on a background
// worker. The atomic CAS-guarded "running" flag, rather than a mutex
// around the whole execute path, is grounded on eventloop's FastState
// (state.go), which uses the same pattern to let IsRunning be checked
// from any goroutine without contending with the worker itself.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/orchestrator"
)

// Scenario is anything the Engine can run to completion, reporting its
// outcome through the orchestrator it is handed rather than a return
// value alone.
type Scenario interface {
	Run(o *orchestrator.Orchestrator) error
}

// ScenarioFunc adapts a plain function to Scenario.
type ScenarioFunc func(o *orchestrator.Orchestrator) error

// Run implements Scenario.
func (f ScenarioFunc) Run(o *orchestrator.Orchestrator) error { return f(o) }

// Engine runs at most one Scenario at a time. Execute is non-blocking:
// it spawns exactly one worker goroutine and returns immediately,
// reporting whether the slot was free.
type Engine struct {
	running atomic.Bool
	wg      sync.WaitGroup
}

// New returns an idle Engine.
func New() *Engine {
	return &Engine{}
}

// Execute attempts to claim the single slot and run scenario on a new
// goroutine against o. It returns true if the slot was claimed, false if
// a scenario was already running (in which case nothing is started). A
// scenario that returns an error is reported to o as a CONNECTION_IDLE
// failure event rather than propagated to the caller, since Execute has
// already returned by the time the worker finishes.
func (e *Engine) Execute(o *orchestrator.Orchestrator, scenario Scenario) bool {
	if !e.running.CompareAndSwap(false, true) {
		return false
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.running.Store(false)

		if err := scenario.Run(o); err != nil {
			failErr := event.AsError(event.DomainInternal, event.CategoryUnknown, err)
			_ = o.Emit(event.Failure(event.ConnectionIdle, failErr))
		}
	}()
	return true
}

// IsRunning reports whether a scenario is currently executing.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Wait blocks until no scenario is running. Safe to call from any
// goroutine, including concurrently with Execute.
func (e *Engine) Wait() {
	e.wg.Wait()
}
