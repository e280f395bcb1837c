package orchestrator

import (
	"testing"

	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/session"
	"github.com/pjh456/eunet/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_NewSessionAllocatesSequentially(t *testing.T) {
	o := New()
	assert.Equal(t, uint64(1), o.NewSession())
	assert.Equal(t, uint64(2), o.NewSession())
	assert.Equal(t, uint64(3), o.NewSession())
}

func TestOrchestrator_EmitPushesTimelineAndAdvancesFSM(t *testing.T) {
	o := New()
	sid := o.NewSession()

	err := o.Emit(event.Info(event.TCPConnectStart, "").WithSessionID(sid))
	require.Nil(t, err)

	assert.Equal(t, 1, o.Timeline().Size())

	fsm, ok := o.Session(sid)
	require.True(t, ok)
	assert.Equal(t, session.Connecting, fsm.State())
}

func TestOrchestrator_FansOutToEverySink(t *testing.T) {
	o := New()
	m1 := sink.NewMemorySink()
	m2 := sink.NewMemorySink()
	o.Attach(m1)
	o.Attach(m2)

	sid := o.NewSession()
	require.Nil(t, o.Emit(event.Info(event.TCPConnectStart, "").WithSessionID(sid)))

	assert.Equal(t, 1, m1.Len())
	assert.Equal(t, 1, m2.Len())
}

func TestOrchestrator_DuplicateAttachReceivesEventTwice(t *testing.T) {
	o := New()
	m := sink.NewMemorySink()
	o.Attach(m)
	o.Attach(m)

	sid := o.NewSession()
	require.Nil(t, o.Emit(event.Info(event.TCPConnectStart, "").WithSessionID(sid)))

	assert.Equal(t, 2, m.Len())
}

func TestOrchestrator_DetachRemovesOneRegistration(t *testing.T) {
	o := New()
	m := sink.NewMemorySink()
	o.Attach(m)
	o.Attach(m)

	require.True(t, o.Detach(m))

	sid := o.NewSession()
	require.Nil(t, o.Emit(event.Info(event.TCPConnectStart, "").WithSessionID(sid)))
	assert.Equal(t, 1, m.Len())
}

func TestOrchestrator_SinkFailureDoesNotBlockOthers(t *testing.T) {
	o := New()
	o.Attach(panicSink{})
	m := sink.NewMemorySink()
	o.Attach(m)

	sid := o.NewSession()
	require.Nil(t, o.Emit(event.Info(event.TCPConnectStart, "").WithSessionID(sid)))

	assert.Equal(t, 1, m.Len())
}

func TestOrchestrator_ResetClearsTimelineAndSessionsNotSinks(t *testing.T) {
	o := New()
	m := sink.NewMemorySink()
	o.Attach(m)

	sid := o.NewSession()
	require.Nil(t, o.Emit(event.Info(event.TCPConnectStart, "").WithSessionID(sid)))

	o.Reset()
	assert.Equal(t, 0, o.Timeline().Size())
	_, ok := o.Session(sid)
	assert.False(t, ok)

	require.Nil(t, o.Emit(event.Info(event.DNSResolveStart, "").WithSessionID(o.NewSession())))
	assert.Equal(t, 2, m.Len())
}

type panicSink struct{}

func (panicSink) OnEvent(sink.Snapshot) { panic("boom") }
