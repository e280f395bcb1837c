package sink

import "sync"

// MemorySink accumulates every snapshot it receives, in order. It exists
// primarily for tests that need to assert on what the orchestrator fanned
// out without parsing console output.
type MemorySink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// OnEvent implements Sink.
func (m *MemorySink) OnEvent(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
}

// Snapshots returns a copy of every snapshot received so far, in order.
func (m *MemorySink) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.snaps))
	copy(out, m.snaps)
	return out
}

// Len returns the number of snapshots received so far.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

var _ Sink = (*MemorySink)(nil)
