package progress

import (
	"net/http"
	"sync"

	"github.com/goccy/go-json"
)

// SSEWriter streams events as text/event-stream frames of the form
// "data: <json>\n\n", flushing after each frame. Writes after the consumer
// disconnects fail silently; the producer is not expected to notice.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	dead    bool
}

// NewSSEWriter prepares w for event streaming and writes the SSE headers.
// Returns false when the ResponseWriter cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	return &SSEWriter{w: w, flusher: flusher}, true
}

func (s *SSEWriter) Send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if _, err := s.w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
		s.dead = true
		return
	}
	s.flusher.Flush()
}
