package transports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadEvents(t *testing.T) {
	body := ": ping\n\n" +
		"id: 1\nevent: notice\ndata: {\"text\":\"hi\"}\n\n" +
		"id: 2\nevent: present\ndata: {\"key\":\n" + "data: \"k\"}\n\n" +
		"data: {}\n\n"
	var got []Event
	err := readEvents(strings.NewReader(body), func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("events %+v", got)
	}
	if got[0].Type != "notice" || got[0].ID != "1" || string(got[0].Data) != `{"text":"hi"}` {
		t.Fatalf("first %+v", got[0])
	}
	if got[1].Type != "present" || string(got[1].Data) != "{\"key\":\n\"k\"}" {
		t.Fatalf("second %+v", got[1])
	}
	if got[2].Type != "message" {
		t.Fatalf("default type %+v", got[2])
	}
}

func TestReadEventsStopsOnCallbackError(t *testing.T) {
	body := "data: 1\n\ndata: 2\n\n"
	n := 0
	err := readEvents(strings.NewReader(body), func(Event) error {
		n++
		return ErrEndOfStream
	})
	if !errors.Is(err, ErrEndOfStream) || n != 1 {
		t.Fatalf("err=%v n=%d", err, n)
	}
}

func TestErrorBodyIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(consumerHeader) != "u2" {
			t.Errorf("consumer header %q", r.Header.Get(consumerHeader))
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"not your session"}`)
	}))
	defer srv.Close()

	_, err := NewHttpTransport(srv.URL, nil).Verdict(context.Background(), "u2", VerdictRequest{Owner: "u1", Action: "reject"})
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "not your session") {
		t.Fatalf("got %v", err)
	}
}
