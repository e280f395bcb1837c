// Package sink defines the Sink contract that the orchestrator fans
// snapshots out to, plus two concrete implementations. The
// synchronous, side-effect-isolated shape (a sink's failure must never
// propagate back into the caller) is grounded on eventloop's listener
// dispatch in loop.go, which already treats each registered callback as
// independent and swallows its panics rather than letting one bad
// listener take down the loop.
package sink

import (
	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/session"
)

// Snapshot is the immutable view handed to every Sink on each emitted
// event: the event itself plus the post-transition FSM state of its
// session, so a sink never needs to query the orchestrator back.
type Snapshot struct {
	Event event.Event
	FSM   session.FSM
}

// Sink receives a synchronous callback for every event the orchestrator
// emits. Implementations must not block indefinitely and must not panic;
// OnEvent runs on the orchestrator's emitting goroutine.
type Sink interface {
	OnEvent(snap Snapshot)
}
