package transports

import (
	"context"
	"encoding/json"
	"io"
)

// StartResult reports a (re)started review.
type StartResult struct {
	Queued  int    `json:"queued"`
	Message string `json:"message,omitempty"`
}

// Status mirrors the server's per-consumer summary.
type Status struct {
	ConsumerID     string `json:"consumer_id"`
	Pending        int    `json:"pending"`
	Accepted       int    `json:"accepted"`
	Retired        int    `json:"retired"`
	Current        string `json:"current,omitempty"`
	PresentationID string `json:"presentation_id,omitempty"`
}

// SkipResult reports whether a skip applied ("applied" or "ignored") and the
// queue after it.
type SkipResult struct {
	Status string `json:"status"`
	Queue  Status `json:"queue"`
}

type skipRequest struct {
	PresentationID string `json:"presentation_id,omitempty"`
}

// Presentation is the part of an outstanding presentation the CLI needs to
// bind an action to it.
type Presentation struct {
	PresentationID string `json:"presentation_id"`
	Key            string `json:"key"`
	Label          string `json:"label,omitempty"`
	Caption        string `json:"caption"`
	Remaining      int    `json:"remaining"`
}

// VerdictRequest judges the current item. Owner defaults to the caller.
type VerdictRequest struct {
	Owner          string `json:"owner,omitempty"`
	Action         string `json:"action"`
	PresentationID string `json:"presentation_id,omitempty"`
}

// VerdictResult is "applied" or "ignored" (the item was no longer current).
type VerdictResult struct {
	Status string `json:"status"`
	Action string `json:"action,omitempty"`
}

// Accepted lists the caller's accepted keys.
type Accepted struct {
	ConsumerID string   `json:"consumer_id"`
	Count      int      `json:"count"`
	Accepted   []string `json:"accepted"`
}

// Item is one stored item.
type Item struct {
	Key     string `json:"key"`
	Label   string `json:"label,omitempty"`
	Retired bool   `json:"retired"`
}

// ItemList is a page of stored items.
type ItemList struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// Event is one notification from the watch stream. Data is left encoded;
// its shape depends on Type (present, complete, notice).
type Event struct {
	ID   string
	Type string
	Data json.RawMessage
}

// ReviewTransport abstracts how the CLI reaches the server.
type ReviewTransport interface {
	Start(ctx context.Context, consumer string) (StartResult, error)
	Skip(ctx context.Context, consumer, presentationID string) (SkipResult, error)
	// Current returns the latest presentation delivered to consumer; ok is
	// false when there is none.
	Current(ctx context.Context, consumer string) (p Presentation, ok bool, err error)
	Verdict(ctx context.Context, consumer string, req VerdictRequest) (VerdictResult, error)
	Status(ctx context.Context, consumer string) (Status, error)
	Accepted(ctx context.Context, consumer string) (Accepted, error)
	Watch(ctx context.Context, consumer string, onEvent func(Event) error) error
	ListItems(ctx context.Context, limit int) (ItemList, error)
	ImportItems(ctx context.Context, list io.Reader) (int, error)
}
