package scanner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// ChannelBufferSize is the buffer size for event streams
const ChannelBufferSize = 64

// emitter writes events for one scan. It is safe for concurrent use by the
// worker goroutines of a strategy.
type emitter struct {
	// ctx is the caller's context; once it is done the consumer may have
	// stopped reading and sends are abandoned.
	ctx   context.Context
	out   chan<- Event
	mode  Mode
	start time.Time

	found     atomic.Int64
	foundSize atomic.Int64
}

func newEmitter(ctx context.Context, out chan<- Event, mode Mode, start time.Time) *emitter {
	return &emitter{
		ctx:   ctx,
		out:   out,
		mode:  mode,
		start: start,
	}
}

func (e *emitter) send(ev Event) bool {
	select {
	case e.out <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// item emits a finding. Findings with no reclaimable bytes are dropped.
func (e *emitter) item(f Finding) {
	if f.Size <= 0 {
		return
	}
	if f.Mode == "" {
		f.Mode = e.mode
	}
	if e.send(Event{Kind: EventItem, Finding: &f}) {
		e.found.Add(1)
		e.foundSize.Add(f.Size)
	}
}

func (e *emitter) status(format string, args ...interface{}) {
	e.send(Event{Kind: EventStatus, Message: fmt.Sprintf(format, args...)})
}

func (e *emitter) progress(current, total int) {
	e.send(Event{Kind: EventProgress, Current: current, Total: total, StartTime: e.start})
}

// done sends the terminal event. When the caller has cancelled, Done is only
// delivered if the buffer has room; the channel is closed either way.
func (e *emitter) done() {
	ev := Event{Kind: EventDone}
	if e.ctx.Err() != nil {
		select {
		case e.out <- ev:
		default:
		}
	} else {
		e.out <- ev
	}
}

// Collect drains a stream and returns its findings in arrival order.
func Collect(events <-chan Event) []Finding {
	var findings []Finding
	for ev := range events {
		if ev.Kind == EventItem && ev.Finding != nil {
			findings = append(findings, *ev.Finding)
		}
	}
	return findings
}
