package controllers

import "github.com/MagicGod/shly/internal/review"

// Common request/response types for HTTP controllers

// verdictReq represents a judgment of the caller's current item. Owner
// defaults to the caller.
type verdictReq struct {
	Owner          string `json:"owner"`
	Action         string `json:"action"`
	PresentationID string `json:"presentation_id"`
}

// skipReq optionally binds a skip to a presentation.
type skipReq struct {
	PresentationID string `json:"presentation_id"`
}

// skipResp reports whether the skip applied and the resulting queue.
type skipResp struct {
	Status string        `json:"status"`
	Queue  review.Status `json:"queue"`
}

// startResp reports how many items were queued by a start.
type startResp struct {
	Queued  int    `json:"queued"`
	Message string `json:"message,omitempty"`
}

// verdictResp acknowledges an applied verdict.
type verdictResp struct {
	Status string `json:"status"`
	Action string `json:"action"`
}

// acceptedResp lists the caller's accepted keys.
type acceptedResp struct {
	ConsumerID string   `json:"consumer_id"`
	Count      int      `json:"count"`
	Accepted   []string `json:"accepted"`
}

// itemsResp lists the backing store.
type itemsResp struct {
	Items []itemJSON `json:"items"`
	Total int        `json:"total"`
}

// itemJSON is one stored item with its retirement state.
type itemJSON struct {
	Key     string `json:"key"`
	Label   string `json:"label,omitempty"`
	Retired bool   `json:"retired"`
}

// importResp reports an import.
type importResp struct {
	Imported int `json:"imported"`
}
