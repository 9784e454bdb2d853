package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/perch-labs/noticeboard/internal/board"
	"github.com/perch-labs/noticeboard/internal/domain"
)

var _ board.EventSink = (*Notifier)(nil)

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testEnvURL(t *testing.T) string {
	t.Helper()
	return os.Getenv("SINK_URL")
}

func TestPublishDeliversEnvelope(t *testing.T) {
	type received struct {
		path    string
		apiKey  string
		payload map[string]json.RawMessage
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]json.RawMessage
		_ = json.Unmarshal(body, &payload)
		got <- received{path: r.URL.Path, apiKey: r.Header.Get("X-API-Key"), payload: payload}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	notifier, err := NewNotifier(srv.URL, "sink-key", 2*time.Second, discardLogger())
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	ev := domain.VoteCast{RecordID: "e-1", Score: 9, Principal: "alice"}
	if err := notifier.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	rec := <-got
	if rec.path != "/events" {
		t.Fatalf("path = %s, want /events", rec.path)
	}
	if rec.apiKey != "sink-key" {
		t.Fatalf("api key = %q", rec.apiKey)
	}

	var kind string
	if err := json.Unmarshal(rec.payload["kind"], &kind); err != nil || kind != "catalog.vote_cast" {
		t.Fatalf("kind = %q (%v)", kind, err)
	}
	var inner domain.VoteCast
	if err := json.Unmarshal(rec.payload["event"], &inner); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if inner != ev {
		t.Fatalf("event round-trip = %+v, want %+v", inner, ev)
	}
}

func TestPublishRejectedByReceiver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	notifier, err := NewNotifier(srv.URL, "", 2*time.Second, discardLogger())
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	err = notifier.Publish(context.Background(), domain.NotePosted{ID: "n-1", Title: "A community note", Author: "alice"})
	if err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestPublishHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	notifier, err := NewNotifier(srv.URL, "", 5*time.Second, discardLogger())
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := notifier.Publish(ctx, domain.AdminTransferred{Old: "a", New: "b"}); err == nil {
		t.Fatalf("expected context deadline error")
	}
}

// TestNotifierSmoke delivers one event to a live receiver when SINK_URL is
// set, for use against cmd/sink-mock during local runs.
func TestNotifierSmoke(t *testing.T) {
	baseURL := testEnvURL(t)
	if baseURL == "" {
		t.Skip("SINK_URL not provided")
	}
	notifier, err := NewNotifier(baseURL, "", 3*time.Second, discardLogger())
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := notifier.Publish(ctx, domain.NotePosted{ID: "smoke", Title: "A community note", Author: "smoke"}); err != nil {
		t.Fatalf("publish to live sink: %v", err)
	}
}
