package transports

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const consumerHeader = "X-Consumer-ID"

// ErrEndOfStream is returned by onEvent callbacks to stop Watch cleanly.
var ErrEndOfStream = errors.New("end of stream")

// HttpTransport talks to the shly HTTP API.
type HttpTransport struct {
	base   string
	client *http.Client
}

// NewHttpTransport returns a transport for base (e.g. http://127.0.0.1:8080).
// A nil client uses http.DefaultClient.
func NewHttpTransport(base string, client *http.Client) *HttpTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpTransport{base: strings.TrimRight(base, "/"), client: client}
}

func (t *HttpTransport) do(ctx context.Context, method, path, consumer, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.base+path, body)
	if err != nil {
		return err
	}
	if consumer != "" {
		req.Header.Set(consumerHeader, consumer)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (t *HttpTransport) postJSON(ctx context.Context, path, consumer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	return t.do(ctx, http.MethodPost, path, consumer, "application/json", body, out)
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Status + ": " + e.Message
	}
	return e.Status
}

func decodeError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	se := &StatusError{Code: resp.StatusCode, Status: resp.Status}
	if json.Unmarshal(b, &e) == nil {
		se.Message = e.Error
	}
	return se
}

// Start implements ReviewTransport.
func (t *HttpTransport) Start(ctx context.Context, consumer string) (StartResult, error) {
	var out StartResult
	err := t.postJSON(ctx, "/v1/review/start", consumer, nil, &out)
	return out, err
}

// Skip implements ReviewTransport.
func (t *HttpTransport) Skip(ctx context.Context, consumer, presentationID string) (SkipResult, error) {
	var out SkipResult
	err := t.postJSON(ctx, "/v1/review/skip", consumer, skipRequest{PresentationID: presentationID}, &out)
	return out, err
}

// Current implements ReviewTransport.
func (t *HttpTransport) Current(ctx context.Context, consumer string) (Presentation, bool, error) {
	var out Presentation
	err := t.do(ctx, http.MethodGet, "/v1/review/current", consumer, "", nil, &out)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return Presentation{}, false, nil
	}
	if err != nil {
		return Presentation{}, false, err
	}
	return out, true, nil
}

// Verdict implements ReviewTransport.
func (t *HttpTransport) Verdict(ctx context.Context, consumer string, req VerdictRequest) (VerdictResult, error) {
	var out VerdictResult
	err := t.postJSON(ctx, "/v1/review/verdict", consumer, req, &out)
	return out, err
}

// Status implements ReviewTransport.
func (t *HttpTransport) Status(ctx context.Context, consumer string) (Status, error) {
	var out Status
	err := t.do(ctx, http.MethodGet, "/v1/review/status", consumer, "", nil, &out)
	return out, err
}

// Accepted implements ReviewTransport.
func (t *HttpTransport) Accepted(ctx context.Context, consumer string) (Accepted, error) {
	var out Accepted
	err := t.do(ctx, http.MethodGet, "/v1/review/accepted", consumer, "", nil, &out)
	return out, err
}

// ListItems implements ReviewTransport.
func (t *HttpTransport) ListItems(ctx context.Context, limit int) (ItemList, error) {
	path := "/v1/items"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out ItemList
	err := t.do(ctx, http.MethodGet, path, "", "", nil, &out)
	return out, err
}

// ImportItems implements ReviewTransport.
func (t *HttpTransport) ImportItems(ctx context.Context, list io.Reader) (int, error) {
	var out struct {
		Imported int `json:"imported"`
	}
	err := t.do(ctx, http.MethodPost, "/v1/items", "", "text/plain", list, &out)
	return out.Imported, err
}

// Watch reads the consumer's event stream until ctx is done, the server
// closes it, or onEvent returns an error. ErrEndOfStream from onEvent
// ends the watch without error.
func (t *HttpTransport) Watch(ctx context.Context, consumer string, onEvent func(Event) error) error {
	path := "/v1/review/events?consumer=" + url.QueryEscape(consumer)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set(consumerHeader, consumer)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	err = readEvents(resp.Body, onEvent)
	if errors.Is(err, ErrEndOfStream) || ctx.Err() != nil {
		return nil
	}
	return err
}

// readEvents parses a text/event-stream body. Comment lines are skipped;
// multi-line data fields are joined with newlines.
func readEvents(r io.Reader, onEvent func(Event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 32<<20)
	var (
		ev   Event
		data []string
	)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				ev.Data = json.RawMessage(strings.Join(data, "\n"))
				if ev.Type == "" {
					ev.Type = "message"
				}
				if err := onEvent(ev); err != nil {
					return err
				}
			}
			ev, data = Event{}, nil
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "id":
				ev.ID = value
			case "event":
				ev.Type = value
			case "data":
				data = append(data, value)
			}
		}
	}
	return sc.Err()
}

var _ ReviewTransport = (*HttpTransport)(nil)
