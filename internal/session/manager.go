package session

import (
	"sync"

	"github.com/pjh456/eunet/internal/event"
)

// Manager owns every session's FSM, keyed by session_id rather than fd -
// an fd can be reused across retries within one session, but the spec's
// session_id never is. All mutation serialises under a single mutex,
// mirroring the rest of this probe's preference for one coarse lock per
// component over fine-grained per-entry locking.
type Manager struct {
	mu   sync.Mutex
	fsms map[uint64]*FSM
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{fsms: make(map[uint64]*FSM)}
}

// Apply advances (creating if necessary) the FSM for e's session and
// returns a snapshot copy of its post-transition state.
func (m *Manager) Apply(e event.Event) FSM {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.fsms[e.SessionID()]
	if !ok {
		f = newFSM(e.FD())
		m.fsms[e.SessionID()] = f
	}
	f.apply(e)
	return *f
}

// Get returns a snapshot copy of the named session's FSM and whether it
// exists.
func (m *Manager) Get(sessionID uint64) (FSM, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.fsms[sessionID]
	if !ok {
		return FSM{}, false
	}
	return *f, true
}

// Reset discards every tracked session, returning the Manager to its
// initial empty state.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fsms = make(map[uint64]*FSM)
}

// Len returns the number of sessions currently tracked.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fsms)
}
