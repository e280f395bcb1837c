// Package timeline implements the append-only event log with secondary
// indices by fd and by event type. The shape - a slice of record, plus
// maps of index slices into that slice - is grounded on eventloop's
// registry pattern (registry.go), which keeps auxiliary lookup
// structures as slices of stable keys into a single backing store rather
// than duplicating the records themselves.
package timeline

import (
	"sort"
	"sync"
	"time"

	"github.com/pjh456/eunet/internal/event"
)

// targetNotFoundError is returned by the "latest" family of queries when
// the timeline (or the requested fd/type slice of it) is empty.
type targetNotFoundError struct{ what string }

func (e *targetNotFoundError) Error() string { return "timeline: " + e.what + " not found" }

// IsTargetNotFound reports whether err is the "not found" sentinel
// returned by the LatestX family when the queried slice is empty.
func IsTargetNotFound(err error) bool {
	_, ok := err.(*targetNotFoundError)
	return ok
}

// Timeline is an append-only log of events with secondary indices for
// fast lookup by fd and by type. All queries return copies; callers can
// never mutate timeline state through a returned slice. Every operation
// takes an internal mutex, so a Timeline can be shared (e.g. handed out
// by an orchestrator for read access) while concurrently being written
// to. Callback-based methods (ReplayAll and friends) hold the lock for
// the duration of the callback - a callback must not call back into the
// same Timeline.
type Timeline struct {
	mu      sync.Mutex
	records []event.Event
	byFD    map[int][]int
	byType  map[event.Type][]int
}

// New returns an empty Timeline.
func New() *Timeline {
	return &Timeline{
		byFD:   make(map[int][]int),
		byType: make(map[event.Type][]int),
	}
}

// Push appends e, updating both secondary indices.
func (t *Timeline) Push(e event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pushLocked(e)
}

func (t *Timeline) pushLocked(e event.Event) {
	idx := len(t.records)
	t.records = append(t.records, e)
	t.byFD[e.FD()] = append(t.byFD[e.FD()], idx)
	t.byType[e.Type()] = append(t.byType[e.Type()], idx)
}

// PushBulk appends every event in es in order.
func (t *Timeline) PushBulk(es []event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range es {
		t.pushLocked(e)
	}
}

// Size returns the total number of events recorded.
func (t *Timeline) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// CountByFD returns how many events are indexed under fd.
func (t *Timeline) CountByFD(fd int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byFD[fd])
}

// CountByType returns how many events are indexed under typ.
func (t *Timeline) CountByType(typ event.Type) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byType[typ])
}

// CountByTime returns how many events fall within [from, to).
func (t *Timeline) CountByTime(from, to time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.records {
		if inRange(e.WallTimestamp(), from, to) {
			n++
		}
	}
	return n
}

// QueryByFD returns copies of every event indexed under fd, oldest first.
func (t *Timeline) QueryByFD(fd int) []event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gather(t.byFD[fd])
}

// QueryByType returns copies of every event indexed under typ, oldest first.
func (t *Timeline) QueryByType(typ event.Type) []event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gather(t.byType[typ])
}

// QueryByTime returns copies of every event within [from, to), oldest first.
func (t *Timeline) QueryByTime(from, to time.Time) []event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]event.Event, 0)
	for _, e := range t.records {
		if inRange(e.WallTimestamp(), from, to) {
			out = append(out, e)
		}
	}
	return out
}

// QueryErrors returns copies of every event carrying a failure, oldest first.
func (t *Timeline) QueryErrors() []event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]event.Event, 0)
	for _, e := range t.records {
		if e.HasError() {
			out = append(out, e)
		}
	}
	return out
}

// LatestEvent returns a copy of the most recently pushed event.
func (t *Timeline) LatestEvent() (event.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.records) == 0 {
		return event.Event{}, &targetNotFoundError{"latest event"}
	}
	return t.records[len(t.records)-1], nil
}

// LatestByFD returns a copy of the most recent event indexed under fd.
func (t *Timeline) LatestByFD(fd int) (event.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := t.byFD[fd]
	if len(idxs) == 0 {
		return event.Event{}, &targetNotFoundError{"latest event for fd"}
	}
	return t.records[idxs[len(idxs)-1]], nil
}

// LatestByType returns a copy of the most recent event indexed under typ.
func (t *Timeline) LatestByType(typ event.Type) (event.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := t.byType[typ]
	if len(idxs) == 0 {
		return event.Event{}, &targetNotFoundError{"latest event for type"}
	}
	return t.records[idxs[len(idxs)-1]], nil
}

// SortByTime stable-sorts the timeline's records in place by ascending
// wall timestamp, rebuilds both secondary indices against the new order,
// and returns the event count.
func (t *Timeline) SortByTime() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	sort.SliceStable(t.records, func(i, j int) bool {
		return t.records[i].WallTimestamp().Before(t.records[j].WallTimestamp())
	})
	t.rebuildIndices()
	return len(t.records)
}

// RemoveByFD destructively removes every event indexed under fd and
// rebuilds both indices.
func (t *Timeline) RemoveByFD(fd int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeWhere(func(e event.Event) bool { return e.FD() == fd })
}

// RemoveByType destructively removes every event indexed under typ and
// rebuilds both indices.
func (t *Timeline) RemoveByType(typ event.Type) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeWhere(func(e event.Event) bool { return e.Type() == typ })
}

// RemoveByTime destructively removes every event within [from, to) and
// rebuilds both indices.
func (t *Timeline) RemoveByTime(from, to time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeWhere(func(e event.Event) bool { return inRange(e.WallTimestamp(), from, to) })
}

// ReplayAll invokes fn once per event, oldest first, stopping early if fn
// returns false. fn runs with the timeline locked.
func (t *Timeline) ReplayAll(fn func(event.Event) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.records {
		if !fn(e) {
			return
		}
	}
}

// ReplayByFD invokes fn once per event indexed under fd, oldest first. fn
// runs with the timeline locked.
func (t *Timeline) ReplayByFD(fd int, fn func(event.Event) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, idx := range t.byFD[fd] {
		if !fn(t.records[idx]) {
			return
		}
	}
}

// ReplaySince invokes fn once per event at or after since, oldest first.
// fn runs with the timeline locked.
func (t *Timeline) ReplaySince(since time.Time, fn func(event.Event) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.records {
		if !e.WallTimestamp().Before(since) {
			if !fn(e) {
				return
			}
		}
	}
}

func (t *Timeline) gather(idxs []int) []event.Event {
	out := make([]event.Event, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, t.records[idx])
	}
	return out
}

func (t *Timeline) removeWhere(match func(event.Event) bool) int {
	kept := make([]event.Event, 0, len(t.records))
	removed := 0
	for _, e := range t.records {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	t.records = kept
	t.rebuildIndices()
	return removed
}

func (t *Timeline) rebuildIndices() {
	t.byFD = make(map[int][]int)
	t.byType = make(map[event.Type][]int)
	for idx, e := range t.records {
		t.byFD[e.FD()] = append(t.byFD[e.FD()], idx)
		t.byType[e.Type()] = append(t.byType[e.Type()], idx)
	}
}

// inRange reports whether ts falls in the half-open interval [from, to).
func inRange(ts, from, to time.Time) bool {
	return !ts.Before(from) && ts.Before(to)
}
