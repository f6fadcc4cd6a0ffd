package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MagicGod/shly/internal/config"
	"github.com/MagicGod/shly/internal/review"
)

// fakeVK serves users.get for a fixed set of screen names and the avatar
// image at /avatar.jpg.
type fakeVK struct {
	users   map[string]string
	lookups int32
	delay   time.Duration
}

func (f *fakeVK) handler(t *testing.T, srv **httptest.Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/method/users.get", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.lookups, 1)
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		q := r.URL.Query()
		if q.Get("access_token") != "secret" || q.Get("v") != "5.199" {
			t.Errorf("unexpected auth params %v", q)
		}
		if q.Get("fields") != profileFields {
			t.Errorf("fields %q", q.Get("fields"))
		}
		body, ok := f.users[q.Get("user_ids")]
		if !ok {
			fmt.Fprint(w, `{"response":[]}`)
			return
		}
		fmt.Fprintf(w, `{"response":[%s]}`, strings.ReplaceAll(body, "$BASE", (*srv).URL))
	})
	mux.HandleFunc("/avatar.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("JPEGDATA"))
	})
	mux.HandleFunc("/broken.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	return mux
}

func newFake(t *testing.T, f *fakeVK) *VK {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(f.handler(t, &srv))
	t.Cleanup(srv.Close)
	return NewVK(Options{APIBase: srv.URL, APIVersion: "5.199", Token: "secret", Timeout: 5 * time.Second})
}

func TestFetchProfiles(t *testing.T) {
	f := &fakeVK{users: map[string]string{
		"open":     `{"first_name":"Anna","last_name":"K","is_closed":false,"photo_max_orig":"$BASE/avatar.jpg"}`,
		"fallback": `{"first_name":"Ivan","last_name":"","photo_max":"$BASE/avatar.jpg"}`,
		"closed":   `{"first_name":"Olga","last_name":"P","is_closed":true,"photo_max_orig":"$BASE/avatar.jpg"}`,
		"gone":     `{"first_name":"DELETED","last_name":"","deactivated":"deleted"}`,
		"nophoto":  `{"first_name":"Petr","last_name":"S"}`,
		"broken":   `{"first_name":"Max","last_name":"B","photo_max_orig":"$BASE/broken.jpg"}`,
	}}
	v := newFake(t, f)

	tests := []struct {
		key        string
		name       string
		media      bool
		restricted bool
		dead       bool
	}{
		{"https://vk.com/open", "Anna K", true, false, false},
		{"https://vk.com/fallback/", "Ivan", true, false, false},
		{"https://vk.com/closed", "Olga P", false, true, false},
		{"https://vk.com/gone", "DELETED", false, false, true},
		{"https://vk.com/nophoto", "Petr S", false, false, false},
		{"https://vk.com/broken", "Max B", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			res, err := v.Fetch(context.Background(), tt.key)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if res.Profile == nil || res.Profile.DisplayName != tt.name {
				t.Fatalf("profile %+v", res.Profile)
			}
			if res.Profile.Restricted != tt.restricted || res.Profile.Deactivated != tt.dead {
				t.Fatalf("flags %+v", res.Profile)
			}
			if (res.Media != nil) != tt.media {
				t.Fatalf("media %+v", res.Media)
			}
			if tt.media && (string(res.Media.Data) != "JPEGDATA" || res.Media.ContentType != "image/jpeg") {
				t.Fatalf("media %+v", res.Media)
			}
		})
	}
}

func TestFetchUnknownUser(t *testing.T) {
	v := newFake(t, &fakeVK{users: map[string]string{}})
	_, err := v.Fetch(context.Background(), "https://vk.com/nobody")
	if !errors.Is(err, review.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"error_code":5,"error_msg":"User authorization failed"}}`)
	}))
	defer srv.Close()
	v := NewVK(Options{APIBase: srv.URL, Token: "secret"})
	_, err := v.Fetch(context.Background(), "https://vk.com/x")
	if !errors.Is(err, review.ErrFetchFailed) || !strings.Contains(err.Error(), "authorization failed") {
		t.Fatalf("got %v", err)
	}
}

func TestTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	v := NewVK(Options{APIBase: base, Token: "supersecret"})
	_, err := v.Fetch(context.Background(), "https://vk.com/x")
	if err == nil {
		t.Fatalf("expected error from closed server")
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Fatalf("token leaked in error: %v", err)
	}
}

func TestConcurrentFetchesShareLookup(t *testing.T) {
	f := &fakeVK{
		users: map[string]string{"same": `{"first_name":"A","last_name":"B","is_closed":true}`},
		delay: 100 * time.Millisecond,
	}
	v := newFake(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.Fetch(context.Background(), "https://vk.com/same"); err != nil {
				t.Errorf("fetch: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt32(&f.lookups); n >= 8 {
		t.Fatalf("expected coalesced lookups, got %d", n)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default().Fetch
	cfg.Token = "t"
	opts := OptionsFromConfig(cfg)
	if opts.Timeout != 15*time.Second || opts.APIVersion != "5.199" || opts.Token != "t" {
		t.Fatalf("options %+v", opts)
	}
}
