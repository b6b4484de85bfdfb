// File: internal/session/events.go
package session

import (
	"encoding/json"
	"sync"
)

// Status codes carried by events. They mirror the wire contract of the
// publishing backend: 200 for progress and success, 400 for request
// validation failures, 500 for runtime failures.
const (
	CodeOK         = 200
	CodeBadRequest = 400
	CodeFailure    = 500
)

// StatusEvent is one progress or outcome message delivered to the caller of
// a login run.
type StatusEvent struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// Terminal reports whether this event ends its stream. Progress events are
// always 200 with no payload; a 200 carrying data is the success outcome.
func (e StatusEvent) Terminal() bool {
	return e.Code != CodeOK || e.Data != nil
}

// JSON renders the event in the {code, msg, data} wire shape.
func (e StatusEvent) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return `{"code":500,"msg":"event encoding failed","data":null}`
	}
	return string(b)
}

// stream is a closable event channel. The terminal event closes the channel,
// making end-of-stream explicit instead of a caller convention. Publishing
// after termination is a silent no-op, so late failure paths cannot panic a
// finished run.
type stream struct {
	ch     chan StatusEvent
	mu     sync.Mutex
	closed bool
}

func newStream(buffer int) *stream {
	return &stream{ch: make(chan StatusEvent, buffer)}
}

// events exposes the receive side.
func (s *stream) events() <-chan StatusEvent {
	return s.ch
}

// publish delivers a progress event.
func (s *stream) publish(e StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- e
}

// terminate delivers the final event and closes the stream.
func (s *stream) terminate(e StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ch <- e
	close(s.ch)
}
