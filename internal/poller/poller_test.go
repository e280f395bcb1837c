//go:build linux || darwin

package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newTestPoller(t *testing.T) *Poller {
	t.Helper()
	p, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func newTestPipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestPoller_AddDegradesToModifyWhenAlreadyTracked(t *testing.T) {
	p := newTestPoller(t)
	r, _ := newTestPipe(t)

	require.NoError(t, p.Add(r, Readable))
	require.NoError(t, p.Add(r, Readable|Writable))
}

func TestPoller_ModifyDegradesToAddWhenUntracked(t *testing.T) {
	p := newTestPoller(t)
	r, _ := newTestPipe(t)

	require.NoError(t, p.Modify(r, Readable))
}

func TestPoller_RemoveUntrackedFailsWithoutCorruption(t *testing.T) {
	p := newTestPoller(t)
	r, _ := newTestPipe(t)

	err := p.Remove(r)
	assert.Error(t, err)

	// state must not be corrupted: a subsequent add/remove cycle still works.
	require.NoError(t, p.Add(r, Readable))
	require.NoError(t, p.Remove(r))
}

func TestPoller_WaitReturnsEmptyOnTimeout(t *testing.T) {
	p := newTestPoller(t)
	r, _ := newTestPipe(t)
	require.NoError(t, p.Add(r, Readable))

	events, err := p.Wait(20)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPoller_WaitReportsReadable(t *testing.T) {
	p := newTestPoller(t)
	r, w := newTestPipe(t)
	require.NoError(t, p.Add(r, Readable))

	_, err := unix.Write(w, []byte("x"))
	require.NoError(t, err)

	events, err := p.Wait(1000)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, r, events[0].FD)
	assert.NotZero(t, events[0].Mask&Readable)
}

func TestPoller_CloseThenOperationsFail(t *testing.T) {
	p := newTestPoller(t)
	require.NoError(t, p.Close())

	_, err := p.Wait(0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.Add(0, Readable), ErrClosed)
}
