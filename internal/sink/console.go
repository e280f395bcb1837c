package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// ConsoleSink renders every snapshot as a single colorized line to an
// io.Writer (typically a colorable-wrapped os.Stdout, so ANSI codes
// render correctly on Windows consoles as well as ANSI terminals).
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer

	info *color.Color
	fail *color.Color
	dim  *color.Color
}

// NewConsoleSink returns a ConsoleSink writing to os.Stdout via
// go-colorable, so colors render on every supported platform.
func NewConsoleSink() *ConsoleSink {
	return NewConsoleSinkWriter(colorable.NewColorableStdout())
}

// NewConsoleSinkWriter returns a ConsoleSink writing to an arbitrary
// writer, primarily for tests that want to capture output.
func NewConsoleSinkWriter(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		w:    w,
		info: color.New(color.FgGreen),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.FgHiBlack),
	}
}

// OnEvent implements Sink.
func (c *ConsoleSink) OnEvent(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := snap.Event.WallTimestamp().Format("15:04:05.000")
	c.dim.Fprintf(c.w, "[%s] ", ts)

	if snap.Event.HasError() {
		c.fail.Fprintf(c.w, "%-24s", snap.Event.Type().String())
		fmt.Fprintf(c.w, " session=%d state=%s err=%s\n",
			snap.Event.SessionID(), snap.FSM.State(), snap.Event.Error().Error())
		return
	}

	c.info.Fprintf(c.w, "%-24s", snap.Event.Type().String())
	fmt.Fprintf(c.w, " session=%d state=%s", snap.Event.SessionID(), snap.FSM.State())
	if msg := snap.Event.Message(); msg != "" {
		fmt.Fprintf(c.w, " msg=%q", msg)
	}
	fmt.Fprintln(c.w)
}

var _ Sink = (*ConsoleSink)(nil)
