package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/orchestrator"
	"github.com/pjh456/eunet/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ExecuteRunsScenarioToCompletion(t *testing.T) {
	e := New()
	o := orchestrator.New()

	var ran bool
	var mu sync.Mutex

	ok := e.Execute(o, ScenarioFunc(func(o *orchestrator.Orchestrator) error {
		mu.Lock()
		ran = true
		mu.Unlock()
		return nil
	}))
	require.True(t, ok)

	e.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, ran)
	assert.False(t, e.IsRunning())
}

func TestEngine_SecondExecuteRejectedWhileRunning(t *testing.T) {
	e := New()
	o := orchestrator.New()

	release := make(chan struct{})
	started := make(chan struct{})

	ok1 := e.Execute(o, ScenarioFunc(func(o *orchestrator.Orchestrator) error {
		close(started)
		<-release
		return nil
	}))
	require.True(t, ok1)

	<-started
	ok2 := e.Execute(o, ScenarioFunc(func(o *orchestrator.Orchestrator) error {
		return nil
	}))
	assert.False(t, ok2)

	close(release)
	e.Wait()
	assert.False(t, e.IsRunning())
}

func TestEngine_ScenarioFailureEmitsConnectionIdleEvent(t *testing.T) {
	e := New()
	o := orchestrator.New()
	mem := sink.NewMemorySink()
	o.Attach(mem)

	ok := e.Execute(o, ScenarioFunc(func(o *orchestrator.Orchestrator) error {
		return errors.New("scenario boom")
	}))
	require.True(t, ok)
	e.Wait()

	deadline := time.Now().Add(time.Second)
	for mem.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	snaps := mem.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, event.ConnectionIdle, snaps[0].Event.Type())
	assert.True(t, snaps[0].Event.HasError())
}

func TestEngine_IsRunningFalseInitially(t *testing.T) {
	e := New()
	assert.False(t, e.IsRunning())
}
