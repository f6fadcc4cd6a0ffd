package review

import (
	"context"

	"github.com/MagicGod/shly/internal/itemstore"
)

// ItemStore is the part of the durable item list the engine relies on.
type ItemStore interface {
	ListAll(ctx context.Context) ([]itemstore.Item, error)
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Action is a verdict a consumer can attach to its current item.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// ParseAction accepts the canonical names and the short yes/no forms.
func ParseAction(s string) (Action, error) {
	switch s {
	case "accept", "yes":
		return ActionAccept, nil
	case "reject", "no":
		return ActionReject, nil
	default:
		return "", ErrUnknownAction
	}
}

// Profile is the metadata part of presentation data.
type Profile struct {
	DisplayName string `json:"display_name"`
	Restricted  bool   `json:"restricted"`
	Deactivated bool   `json:"deactivated,omitempty"`
}

// Media is an opaque blob passed through to the notifier untouched.
type Media struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// FetchResult is what the fetch collaborator could obtain. Either part may
// be nil.
type FetchResult struct {
	Media   *Media
	Profile *Profile
}

// Fetcher obtains presentation data for an item key. It may be slow.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (FetchResult, error)
}

// Presentation is one outstanding item shown to a consumer.
type Presentation struct {
	ConsumerID     string   `json:"consumer_id"`
	PresentationID string   `json:"presentation_id"`
	Key            string   `json:"key"`
	Label          string   `json:"label,omitempty"`
	Caption        string   `json:"caption"`
	Media          *Media   `json:"media,omitempty"`
	Profile        *Profile `json:"profile,omitempty"`
	Degraded       bool     `json:"degraded"`
	Remaining      int      `json:"remaining"`
	Actions        []Action `json:"actions"`
}

// Completion reports a drained queue.
type Completion struct {
	ConsumerID    string   `json:"consumer_id"`
	AcceptedCount int      `json:"accepted_count"`
	Accepted      []string `json:"accepted"`
}

// Notifier delivers messages to a consumer. Present is called with the
// consumer's session locked; it must not block or call back into the engine.
type Notifier interface {
	Present(ctx context.Context, p Presentation) error
	Complete(ctx context.Context, c Completion) error
	Notice(ctx context.Context, consumerID, text string) error
}
