package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_TwoPhaseWrite(t *testing.T) {
	b := New(0)
	s, err := b.Reserve(5)
	require.NoError(t, err)
	copy(s, "ABCDE")
	require.NoError(t, b.Commit(5))
	assert.Equal(t, "ABCDE", string(b.Readable()))

	require.NoError(t, b.Consume(3))
	assert.Equal(t, "DE", string(b.Readable()))
}

func TestBuffer_RoundTrip(t *testing.T) {
	for _, s := range [][]byte{
		[]byte(""),
		[]byte("x"),
		[]byte("hello, world"),
		make([]byte, 10000),
	} {
		b := New(0)
		b.Append(s)
		assert.Equal(t, s, b.Readable())
	}
}

func TestBuffer_GrowthPreservesReadableBytes(t *testing.T) {
	b := New(4)
	b.Append([]byte("ab"))
	require.Equal(t, "ab", string(b.Readable()))

	big := make([]byte, 100)
	for i := range big {
		big[i] = byte(i)
	}
	b.Append(big)

	assert.GreaterOrEqual(t, b.Cap(), len(b.Readable()))
	got := b.Readable()
	require.Len(t, got, 2+len(big))
	assert.Equal(t, "ab", string(got[:2]))
	assert.Equal(t, big, got[2:])
}

func TestBuffer_ReserveFailsWhenOutstanding(t *testing.T) {
	b := New(8)
	_, err := b.Reserve(4)
	require.NoError(t, err)

	_, err = b.Reserve(2)
	assert.ErrorIs(t, err, ErrReservationOutstanding)
}

func TestBuffer_CommitRejectsOversize(t *testing.T) {
	b := New(8)
	_, err := b.Reserve(4)
	require.NoError(t, err)

	err = b.Commit(5)
	assert.ErrorIs(t, err, ErrCommitTooLarge)
}

func TestBuffer_CommitWithoutReservationFails(t *testing.T) {
	b := New(8)
	err := b.Commit(1)
	assert.ErrorIs(t, err, ErrNoReservation)

	_, err = b.Reserve(4)
	require.NoError(t, err)
	require.NoError(t, b.Commit(4))

	// reservation already consumed above; a second Commit has nothing
	// outstanding to commit against.
	err = b.Commit(1)
	assert.ErrorIs(t, err, ErrNoReservation)
}

func TestBuffer_ConsumeOutOfRange(t *testing.T) {
	b := New(8)
	b.Append([]byte("ab"))
	err := b.Consume(10)
	assert.ErrorIs(t, err, ErrConsumeOutOfRange)
}

func TestBuffer_ConsumeAllThenReuse(t *testing.T) {
	b := New(4)
	b.Append([]byte("ab"))
	require.NoError(t, b.Consume(2))
	assert.Equal(t, 0, b.Len())

	b.Append([]byte("cd"))
	assert.Equal(t, "cd", string(b.Readable()))
}

func TestBuffer_CompactMovesReadableToFront(t *testing.T) {
	b := New(8)
	b.Append([]byte("abcdef"))
	require.NoError(t, b.Consume(4))
	assert.Equal(t, "ef", string(b.Readable()))

	s, err := b.Reserve(2)
	require.NoError(t, err)
	copy(s, "gh")
	require.NoError(t, b.Commit(2))
	assert.Equal(t, "efgh", string(b.Readable()))
}
