package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"call-cascade/internal/cascade"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() cascade.ExhaustionEvent {
	return cascade.ExhaustionEvent{
		CallSID:          "CA1",
		From:             "+1F",
		To:               "+1T",
		AttemptedNumbers: []string{"+1A", "+1B"},
		TotalAttempts:    2,
		FinalStatus:      cascade.OutcomeNoAnswer,
		OccurredAt:       time.Unix(1700000000, 0).UTC(),
	}
}

func drain(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

func TestDispatch_PostsPayloadWithSecret(t *testing.T) {
	var mu sync.Mutex
	var got Payload
	var secret string
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		secret = r.Header.Get("X-Workflow-Secret")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "s3cret", Options{Logger: quietLogger()})
	d.NotifyExhausted(context.Background(), testEvent())
	drain(t, d)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one delivery, got %d", calls)
	}
	if secret != "s3cret" {
		t.Fatalf("expected secret header, got %q", secret)
	}
	if got.Event != EventAllUnavailable {
		t.Fatalf("unexpected event name %q", got.Event)
	}
	if got.CallSID != "CA1" || got.TotalAttempts != 2 || len(got.AttemptedNumbers) != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.FinalStatus != "no_answer" {
		t.Fatalf("unexpected final status %q", got.FinalStatus)
	}
}

func TestDispatch_NoopWhenUnconfigured(t *testing.T) {
	d := NewDispatcher("", "", Options{Logger: quietLogger()})
	if d.Enabled() {
		t.Fatalf("expected disabled dispatcher")
	}
	// Must not panic or block.
	d.NotifyExhausted(context.Background(), testEvent())
	drain(t, d)
}

func TestDispatch_FailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "", Options{Logger: quietLogger()})
	d.NotifyExhausted(context.Background(), testEvent())
	drain(t, d) // no error surfaces anywhere
}

func TestDispatch_UnreachableEndpointIsSwallowed(t *testing.T) {
	d := NewDispatcher("http://127.0.0.1:1/unreachable", "", Options{
		Logger:  quietLogger(),
		Timeout: time.Second,
	})
	d.NotifyExhausted(context.Background(), testEvent())
	drain(t, d)
}

type fakeGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (g *fakeGuard) FirstDispatch(_ context.Context, callSID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[callSID] {
		return false, nil
	}
	g.seen[callSID] = true
	return true, nil
}

func TestDispatch_GuardSuppressesDuplicates(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "", Options{Logger: quietLogger(), Guard: &fakeGuard{}})
	d.NotifyExhausted(context.Background(), testEvent())
	d.NotifyExhausted(context.Background(), testEvent())
	drain(t, d)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected duplicate suppressed, got %d deliveries", calls)
	}
}

func TestNewPayload_EmptyAttemptListMarshalsAsArray(t *testing.T) {
	p := NewPayload(cascade.ExhaustionEvent{CallSID: "CA0"})
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `"attempted_numbers":[]`; !containsStr(string(b), want) {
		t.Fatalf("expected %s in %s", want, b)
	}
}

func containsStr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
