package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MagicGod/shly/internal/notify"
)

// sseSink writes notification events as Server-Sent Events.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send writes one event with its type and id. The payload is the JSON
// encoding of the event data.
func (s sseSink) Send(ev notify.Event) error {
	b, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, b); err != nil {
		return err
	}
	return s.Flush()
}

// Ping writes an SSE comment to keep intermediaries from closing the stream.
func (s sseSink) Ping() error {
	if _, err := s.w.Write([]byte(": ping\n\n")); err != nil {
		return err
	}
	return s.Flush()
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
