package session

import (
	"testing"

	"github.com/pjh456/eunet/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSM_HappyPathToFinished(t *testing.T) {
	m := NewManager()
	const sid = uint64(1)

	steps := []event.Type{
		event.DNSResolveStart,
		event.DNSResolveDone,
		event.TCPConnectStart,
		event.TCPConnectSuccess,
		event.HTTPRequestBuild,
		event.HTTPSent,
		event.HTTPHeadersReceived,
		event.HTTPBodyDone,
	}

	var last FSM
	for _, typ := range steps {
		e := event.Info(typ, "").WithSessionID(sid)
		last = m.Apply(e)
	}

	assert.Equal(t, Finished, last.State())
	assert.False(t, last.HasError())

	got, ok := m.Get(sid)
	require.True(t, ok)
	assert.Equal(t, Finished, got.State())
}

func TestFSM_ErrorLatchesAndAbsorbsFurtherEvents(t *testing.T) {
	m := NewManager()
	const sid = uint64(2)

	m.Apply(event.Info(event.TCPConnectStart, "").WithSessionID(sid))

	failErr := event.NewError(event.DomainTransport).
		Category(event.CategoryTimeout).
		Message("connect: deadline exceeded").
		Build()
	afterFail := m.Apply(event.Failure(event.TCPConnectTimeout, failErr).WithSessionID(sid))

	require.Equal(t, Error, afterFail.State())
	require.True(t, afterFail.HasError())
	assert.Same(t, failErr, afterFail.LastError())

	// Terminal absorption: a later success-shaped event must not move the
	// FSM back out of Error.
	after := m.Apply(event.Info(event.TCPConnectSuccess, "").WithSessionID(sid))
	assert.Equal(t, Error, after.State())
	assert.True(t, after.HasError())
}

func TestFSM_UnknownTransitionLeavesStateUnchanged(t *testing.T) {
	m := NewManager()
	const sid = uint64(3)

	first := m.Apply(event.Info(event.HTTPBodyDone, "").WithSessionID(sid))
	assert.Equal(t, Init, first.State())
}

func TestManager_SeparateSessionsAreIndependent(t *testing.T) {
	m := NewManager()

	m.Apply(event.Info(event.TCPConnectStart, "").WithSessionID(1))
	m.Apply(event.Info(event.DNSResolveStart, "").WithSessionID(2))

	s1, _ := m.Get(1)
	s2, _ := m.Get(2)
	assert.Equal(t, Connecting, s1.State())
	assert.Equal(t, Resolving, s2.State())
	assert.Equal(t, 2, m.Len())
}

func TestManager_ResetClearsAllSessions(t *testing.T) {
	m := NewManager()
	m.Apply(event.Info(event.TCPConnectStart, "").WithSessionID(1))
	require.Equal(t, 1, m.Len())

	m.Reset()
	assert.Equal(t, 0, m.Len())

	_, ok := m.Get(1)
	assert.False(t, ok)
}
