// Package orchestrator wires the timeline, the session manager, and the
// attached sinks into a single thread-safe emission pipeline. The
// single-coarse-mutex-plus-fan-out shape is grounded on eventloop's
// EventLoop.emit path (loop.go): one lock serialises state mutation,
// then registered listeners are invoked outside any lock-sensitive
// section so a slow or misbehaving listener cannot deadlock the loop.
package orchestrator

import (
	"sync"
	"sync/atomic"

	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/session"
	"github.com/pjh456/eunet/internal/sink"
	"github.com/pjh456/eunet/internal/timeline"
)

// Orchestrator owns the timeline, the per-session FSM manager, and the
// set of attached sinks, and is the sole writer of all three.
type Orchestrator struct {
	mu       sync.Mutex
	timeline *timeline.Timeline
	sessions *session.Manager
	sinks    []sink.Sink

	nextSessionID atomic.Uint64
}

// New returns an empty Orchestrator. Session IDs are allocated starting
// at 1 and are never recycled, even across Reset.
func New() *Orchestrator {
	return &Orchestrator{
		timeline: timeline.New(),
		sessions: session.NewManager(),
	}
}

// NewSession allocates and returns the next session_id.
func (o *Orchestrator) NewSession() uint64 {
	return o.nextSessionID.Add(1)
}

// Emit pushes e onto the timeline, advances its session's FSM, and fans
// the resulting snapshot out to every attached sink. The error return is
// reserved for the spec's resource-exhaustion push-failure path; Push
// itself cannot fail, so Emit always returns nil today. An individual
// sink's panic is recovered and otherwise ignored so it cannot take down
// emission for the rest of the fan-out.
func (o *Orchestrator) Emit(e event.Event) *event.Error {
	o.mu.Lock()

	o.timeline.Push(e)
	fsm := o.sessions.Apply(e)
	sinks := make([]sink.Sink, len(o.sinks))
	copy(sinks, o.sinks)

	o.mu.Unlock()

	snap := sink.Snapshot{Event: e, FSM: fsm}
	for _, s := range sinks {
		dispatch(s, snap)
	}
	return nil
}

// dispatch invokes s.OnEvent, recovering any panic so one faulty sink
// never interrupts fan-out to the rest.
func dispatch(s sink.Sink, snap sink.Snapshot) {
	defer func() { _ = recover() }()
	s.OnEvent(snap)
}

// Attach registers s to receive every future emission. Attaching the
// same sink value twice is permitted; it then receives each event twice,
// once per registration.
func (o *Orchestrator) Attach(s sink.Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, s)
}

// Detach removes the first registration matching s by identity. If s was
// attached more than once, only one registration is removed.
func (o *Orchestrator) Detach(s sink.Sink) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.sinks {
		if existing == s {
			o.sinks = append(o.sinks[:i], o.sinks[i+1:]...)
			return true
		}
	}
	return false
}

// Timeline returns the orchestrator's event log.
func (o *Orchestrator) Timeline() *timeline.Timeline {
	return o.timeline
}

// Session returns a snapshot of the named session's FSM.
func (o *Orchestrator) Session(sessionID uint64) (session.FSM, bool) {
	return o.sessions.Get(sessionID)
}

// Reset clears the timeline and every session's FSM state. Attached
// sinks are left in place; the session_id counter is not rewound.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.timeline = timeline.New()
	o.sessions.Reset()
}
