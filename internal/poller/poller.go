// Package poller abstracts a readiness notifier (epoll on Linux) behind a
// small register/wait interface, grounded on eventloop's FastPoller
// (poller_linux.go): an interest set keyed by fd, a preallocated event batch, and
// EINTR retried transparently inside Wait.
package poller

import (
	"errors"

	"github.com/pjh456/eunet/internal/logx"
)

// Mask is a bitset over the readiness conditions a caller can wait for.
type Mask uint32

const (
	Readable Mask = 1 << iota
	Writable
	ErrorOrHangup
)

// MaxBatch is the maximum number of events a single Wait call can return.
const MaxBatch = 64

// Event is a single readiness notification: the fd and the conditions
// that became ready. It is produced by Wait and consumed/discarded by the
// caller within the same iteration - it is never retained.
type Event struct {
	FD   int
	Mask Mask
}

var (
	// ErrClosed is returned by any operation on a closed Poller.
	ErrClosed = errors.New("poller: closed")
	// ErrAlreadyTracked would be returned by a strict add, but Add
	// degrades to Modify instead per the readiness-multiplexer contract.
	ErrAlreadyTracked = errors.New("poller: fd already tracked")
	// ErrNotTracked is returned by Remove on an fd that isn't registered.
	ErrNotTracked = errors.New("poller: fd not tracked")
)

// Poller manages the interest set for a set of file descriptors and
// delivers readiness batches on demand. It is move-only and
// single-threaded with respect to its interest set: external
// synchronisation across goroutines is the caller's responsibility. Wait
// may block and is safe to call from the owning goroutine only.
type Poller struct {
	impl   platformPoller
	log    logx.Logger
	closed bool
}

// New creates a fresh Poller, failing with a System-domain error if the
// OS-level notifier cannot be created (e.g. fd table exhaustion).
func New(log logx.Logger) (*Poller, error) {
	if log == nil {
		log = logx.NewNop()
	}
	impl, err := newPlatformPoller(log)
	if err != nil {
		return nil, err
	}
	return &Poller{impl: impl, log: log}, nil
}

// Add registers fd for the given mask. If fd is already tracked, Add
// silently degrades to Modify (idempotence per the spec).
func (p *Poller) Add(fd int, mask Mask) error {
	if p.closed {
		return ErrClosed
	}
	return p.impl.add(fd, mask)
}

// Modify updates the interest mask for fd. If fd is not tracked, Modify
// silently degrades to Add.
func (p *Poller) Modify(fd int, mask Mask) error {
	if p.closed {
		return ErrClosed
	}
	return p.impl.modify(fd, mask)
}

// Remove stops tracking fd. Removing an untracked fd returns
// ErrNotTracked without corrupting the interest set.
func (p *Poller) Remove(fd int) error {
	if p.closed {
		return ErrClosed
	}
	return p.impl.remove(fd)
}

// Wait blocks up to timeoutMs (negative = infinite, zero = non-blocking)
// and returns the batch of ready events, up to MaxBatch. A timeout
// returns an empty, non-error result. OS-level interrupts (EINTR) are
// retried transparently.
func (p *Poller) Wait(timeoutMs int) ([]Event, error) {
	if p.closed {
		return nil, ErrClosed
	}
	return p.impl.wait(timeoutMs)
}

// Close releases the underlying OS notifier. Idempotent.
func (p *Poller) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.impl.close()
}

// platformPoller is implemented once per OS in poller_linux.go / poller_darwin.go.
type platformPoller interface {
	add(fd int, mask Mask) error
	modify(fd int, mask Mask) error
	remove(fd int) error
	wait(timeoutMs int) ([]Event, error)
	close() error
}
