package event

import (
	"fmt"
	"sync"
)

// Stream is a channel-backed Emitter. Producers never block on a slow
// consumer: when the buffer is full the oldest pending event is dropped,
// which is acceptable for telemetry (the audit log, not the stream, is
// the durable record).
type Stream struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewStream creates a Stream with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 256
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Events returns the read side of the stream.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Log emits a formatted log line.
func (s *Stream) Log(level Level, format string, args ...any) {
	s.send(LogEvent{Message: fmt.Sprintf(format, args...), Level: level})
}

// Progress emits a progress snapshot.
func (s *Stream) Progress(p ProgressEvent) {
	s.send(p)
}

func (s *Stream) send(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- e:
			return
		default:
		}
		// Full: shed the oldest event and retry.
		select {
		case <-s.ch:
		default:
		}
	}
}

// Close ends the stream. Emits after Close are discarded.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Discard is an Emitter that drops everything. Useful for tests and for
// callers that only care about return values.
type Discard struct{}

func (Discard) Log(Level, string, ...any) {}
func (Discard) Progress(ProgressEvent)    {}
