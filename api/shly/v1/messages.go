package shlyv1

import "encoding/json"

type StartRequest struct{}

type StartResponse struct {
	Queued  int32  `json:"queued"`
	Message string `json:"message,omitempty"`
}

type SkipRequest struct {
	PresentationId string `json:"presentation_id,omitempty"`
}

type SkipResponse struct {
	// Status is "applied" or "ignored".
	Status string          `json:"status"`
	Queue  *StatusResponse `json:"queue"`
}

type VerdictRequest struct {
	Owner          string `json:"owner,omitempty"`
	Action         string `json:"action"`
	PresentationId string `json:"presentation_id,omitempty"`
}

type VerdictResponse struct {
	// Status is "applied" or "ignored".
	Status string `json:"status"`
	Action string `json:"action,omitempty"`
}

type StatusRequest struct{}

type StatusResponse struct {
	ConsumerId     string `json:"consumer_id"`
	Pending        int32  `json:"pending"`
	Accepted       int32  `json:"accepted"`
	Retired        int32  `json:"retired"`
	Current        string `json:"current,omitempty"`
	PresentationId string `json:"presentation_id,omitempty"`
}

type AcceptedRequest struct{}

type AcceptedResponse struct {
	ConsumerId string   `json:"consumer_id"`
	Accepted   []string `json:"accepted"`
}

type CurrentRequest struct{}

// CurrentResponse is the latest presentation delivered to the caller.
// Found is false when there is none.
type CurrentResponse struct {
	Found          bool   `json:"found"`
	PresentationId string `json:"presentation_id,omitempty"`
	Key            string `json:"key,omitempty"`
	Label          string `json:"label,omitempty"`
	Caption        string `json:"caption,omitempty"`
	Remaining      int32  `json:"remaining,omitempty"`
}

type ListItemsRequest struct {
	Limit int32 `json:"limit,omitempty"`
}

type Item struct {
	Key     string `json:"key"`
	Label   string `json:"label,omitempty"`
	Retired bool   `json:"retired"`
}

type ListItemsResponse struct {
	Items []*Item `json:"items"`
	Total int32   `json:"total"`
}

// ImportItemsRequest carries a list in the text format, one item per line.
type ImportItemsRequest struct {
	List string `json:"list"`
}

type ImportItemsResponse struct {
	Imported int32 `json:"imported"`
}

type WatchRequest struct{}

// Event is one notification. Data is the JSON encoding of a presentation,
// completion or notice depending on Type.
type Event struct {
	Id   uint64          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Status string `json:"status"`
}

func (x *StatusResponse) GetCurrent() string {
	if x == nil {
		return ""
	}
	return x.Current
}

func (x *SkipResponse) GetQueue() *StatusResponse {
	if x == nil {
		return nil
	}
	return x.Queue
}

func (x *Event) GetData() json.RawMessage {
	if x == nil {
		return nil
	}
	return x.Data
}
