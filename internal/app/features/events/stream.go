// internal/app/features/events/stream.go
package events

import (
	"fmt"
	"io"
	"net/http"
	"sync"
)

// stream writes Server-Sent Event frames and flushes after each one. After
// the first failed write every call returns io.EOF.
type stream struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

func newStream(w io.Writer, f http.Flusher) *stream {
	return &stream{w: w, flusher: f}
}

// Send writes one named event with a single data line.
func (s *stream) Send(event string, payload []byte) error {
	return s.write("event: %s\ndata: %s\n\n", event, payload)
}

// Ping writes a comment frame that keeps proxies from closing the
// connection.
func (s *stream) Ping() error {
	return s.write(": ping\n\n")
}

func (s *stream) write(format string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return io.EOF
	}
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil {
		s.closed = true
		return err
	}
	s.flusher.Flush()
	return nil
}
