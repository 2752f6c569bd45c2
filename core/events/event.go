package events

import (
	"log/slog"

	"agoradeals/core/types"
)

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(*types.Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(*types.Event) {}

// LogEmitter writes every event as a structured log line.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit implements the Emitter interface.
func (l LogEmitter) Emit(evt *types.Event) {
	if evt == nil {
		return
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, 2+2*len(evt.Attributes))
	attrs = append(attrs, "event", evt.Type)
	for k, v := range evt.Attributes {
		attrs = append(attrs, k, v)
	}
	logger.Info("event emitted", attrs...)
}

// Buffer collects events raised inside a state transition so they can be
// flushed after the transition commits, or dropped when it rolls back.
type Buffer struct {
	pending []*types.Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt *types.Event) {
	if b == nil || evt == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Flush forwards the buffered events to the sink in emission order and clears
// the buffer.
func (b *Buffer) Flush(sink Emitter) {
	if b == nil {
		return
	}
	if sink != nil {
		for _, evt := range b.pending {
			sink.Emit(evt)
		}
	}
	b.pending = nil
}

// Reset drops any buffered events without delivering them.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.pending = nil
}

// Pending returns the events buffered so far.
func (b *Buffer) Pending() []*types.Event {
	if b == nil {
		return nil
	}
	return b.pending
}
