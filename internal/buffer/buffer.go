// Package buffer implements the split-cursor growable byte store used by
// the TCP socket to reserve syscall write targets without an intermediate
// copy. The cursor/compaction shape is grounded on eventloop's
// ChunkedIngress (readPos/writePos cursors over a reusable backing array),
// generalised from a fixed-size task ring to a growable byte slice.
package buffer

import "errors"

var (
	// ErrReservationOutstanding is returned by the checked Reserve when a
	// prior reservation has not yet been committed.
	ErrReservationOutstanding = errors.New("buffer: a reservation is already outstanding")
	// ErrNoReservation is returned by the checked Commit when there is no
	// outstanding reservation to commit against.
	ErrNoReservation = errors.New("buffer: no outstanding reservation")
	// ErrCommitTooLarge is returned when Commit is asked to advance past
	// the outstanding reservation's size.
	ErrCommitTooLarge = errors.New("buffer: commit exceeds outstanding reservation")
	// ErrConsumeOutOfRange is returned when Consume is asked to remove more
	// bytes than are currently readable.
	ErrConsumeOutOfRange = errors.New("buffer: consume out of range")
)

// Buffer is a contiguous byte region with two cursors r <= w <= cap(buf);
// reads and commits only advance them, and compaction moves both back so
// that r is 0. It is exclusively owned by
// whichever socket or caller uses it - no internal synchronisation.
type Buffer struct {
	buf []byte
	r   int
	w   int
	// reserved is the size of the outstanding reservation, or 0 if none.
	reserved int
}

// New creates a Buffer with the given initial capacity.
func New(initialCap int) *Buffer {
	if initialCap < 0 {
		initialCap = 0
	}
	return &Buffer{buf: make([]byte, initialCap)}
}

// Len returns the number of currently readable bytes.
func (b *Buffer) Len() int { return b.w - b.r }

// Cap returns the total backing capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// Readable returns the readable slice [r, w). The returned slice aliases
// the buffer's backing array and is only valid until the next mutation.
func (b *Buffer) Readable() []byte {
	return b.buf[b.r:b.w]
}

// Append reserves len(p) bytes via the grow path, copies p in, and
// commits - a convenience wrapping the two-phase protocol for callers
// that already have the full slice in hand.
func (b *Buffer) Append(p []byte) {
	dst := b.reserveUnchecked(len(p))
	copy(dst, p)
	b.commitUnchecked(len(p))
}

// Reserve returns a view into [w, w+n) after any required growth or
// compaction, failing if a prior reservation is still outstanding.
func (b *Buffer) Reserve(n int) ([]byte, error) {
	if b.reserved != 0 {
		return nil, ErrReservationOutstanding
	}
	return b.reserveUnchecked(n), nil
}

// ReserveUnchecked behaves like Reserve but does not check for a prior
// outstanding reservation - the caller assumes exclusivity.
func (b *Buffer) ReserveUnchecked(n int) []byte {
	return b.reserveUnchecked(n)
}

func (b *Buffer) reserveUnchecked(n int) []byte {
	b.growTo(b.w + n)
	b.reserved = n
	return b.buf[b.w : b.w+n]
}

// Commit advances w by n, failing if there is no outstanding reservation
// to commit against, or if n exceeds it.
func (b *Buffer) Commit(n int) error {
	if b.reserved == 0 {
		return ErrNoReservation
	}
	if n > b.reserved {
		return ErrCommitTooLarge
	}
	b.commitUnchecked(n)
	return nil
}

// CommitUnchecked behaves like Commit but does not validate against an
// outstanding reservation.
func (b *Buffer) CommitUnchecked(n int) {
	b.commitUnchecked(n)
}

func (b *Buffer) commitUnchecked(n int) {
	b.w += n
	b.reserved = 0
}

// Consume removes n bytes from the front of the readable region,
// advancing r, then compacts.
func (b *Buffer) Consume(n int) error {
	if n > b.Len() {
		return ErrConsumeOutOfRange
	}
	b.r += n
	b.compact()
	return nil
}

// Compact moves [r, w) to offset 0 using an overlap-safe move, resetting
// r to 0. It is automatically invoked by Consume; exposed for callers
// that want to reclaim space without consuming (e.g. before a large
// Reserve).
func (b *Buffer) Compact() { b.compact() }

func (b *Buffer) compact() {
	if b.r == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.r:b.w])
	b.w = n
	b.r = 0
}

// growTo ensures the backing array can hold at least need bytes,
// doubling capacity (or growing to need, whichever is larger).
func (b *Buffer) growTo(need int) {
	if need <= len(b.buf) {
		return
	}
	newCap := len(b.buf) * 2
	if newCap < need {
		newCap = need
	}
	grown := make([]byte, newCap)
	copy(grown, b.buf[:b.w])
	b.buf = grown
}
