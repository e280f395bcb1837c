// Package session implements the per-session lifecycle state machine and
// its keyed manager. The state-machine shape (a small closed set of
// states, CAS-free because the manager serialises all mutation under one
// mutex) is grounded on eventloop's LoopState/FastState
// (state.go) - generalised from the event loop's own internal run state
// to the per-scenario lifecycle this probe tracks.
package session

import (
	"time"

	"github.com/pjh456/eunet/internal/event"
)

// State is the closed set of lifecycle states a session can occupy.
type State int

const (
	Init State = iota
	Resolving
	Connecting
	Handshaking
	Established
	Sending
	Receiving
	Finished
	Error
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case Resolving:
		return "Resolving"
	case Connecting:
		return "Connecting"
	case Handshaking:
		return "Handshaking"
	case Established:
		return "Established"
	case Sending:
		return "Sending"
	case Receiving:
		return "Receiving"
	case Finished:
		return "Finished"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions occur from this state.
func (s State) Terminal() bool {
	return s == Finished || s == Error
}

// FSM is the per-session lifecycle instance. Created lazily by the
// Manager on the first event for a session; never destroyed until the
// Manager is cleared.
type FSM struct {
	fd        int
	state     State
	startTS   time.Time
	lastTS    time.Time
	lastError *event.Error
}

// FD returns the file descriptor this session's FSM is tracking, as
// auxiliary metadata - not part of the keying (see Manager doc).
func (f FSM) FD() int { return f.fd }

// State returns the current lifecycle state.
func (f FSM) State() State { return f.state }

// StartTS returns when the first event for this session was observed.
func (f FSM) StartTS() time.Time { return f.startTS }

// LastTS returns when the most recent event for this session was observed.
func (f FSM) LastTS() time.Time { return f.lastTS }

// LastError returns the error latched on transition to Error, or nil.
func (f FSM) LastError() *event.Error { return f.lastError }

// HasError reports whether this session has latched an error.
func (f FSM) HasError() bool { return f.lastError != nil }

func newFSM(fd int) *FSM {
	return &FSM{fd: fd, state: Init}
}

// apply advances the FSM per e, per the transition table in the system
// specification: terminal states absorb every subsequent event (only
// last_ts advances); from any other state, an event carrying an error
// unconditionally moves to Error (and latches it).
func (f *FSM) apply(e event.Event) {
	now := e.WallTimestamp()
	if f.startTS.IsZero() {
		f.startTS = now
	}
	f.lastTS = now

	if f.state.Terminal() {
		return
	}

	if e.HasError() {
		f.lastError = e.Error()
		f.state = Error
		return
	}

	if next, ok := transition(f.state, e.Type()); ok {
		f.state = next
	}
}

// transition implements the state x event-type -> next-state table from
// the specification. ok is false when the event type has no defined
// transition from the given state (the event still updates last_ts via
// apply, but leaves state unchanged).
func transition(from State, typ event.Type) (State, bool) {
	switch from {
	case Init:
		switch typ {
		case event.DNSResolveStart:
			return Resolving, true
		case event.TCPConnectStart:
			return Connecting, true
		}
	case Resolving:
		if typ == event.DNSResolveDone {
			return Connecting, true
		}
	case Connecting:
		switch typ {
		case event.TCPConnectSuccess:
			return Established, true
		case event.TLSHandshakeStart:
			return Handshaking, true
		}
	case Handshaking:
		if typ == event.TLSHandshakeDone {
			return Established, true
		}
	case Established:
		switch typ {
		case event.HTTPRequestBuild, event.HTTPSent:
			return Sending, true
		}
	case Sending:
		if typ == event.HTTPSent {
			return Receiving, true
		}
	case Receiving:
		switch typ {
		case event.HTTPHeadersReceived:
			return Receiving, true
		case event.HTTPBodyDone, event.ConnectionClosed:
			return Finished, true
		}
	}
	return from, false
}
