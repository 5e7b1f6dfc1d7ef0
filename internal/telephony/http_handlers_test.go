package telephony

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"call-cascade/internal/cascade"
	"call-cascade/internal/notify"
	"call-cascade/internal/recordings"

	"github.com/gin-gonic/gin"
)

func newTestRouter(ctrl *cascade.Controller, recs *recordings.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	h := VoiceWebhookHandler{Controller: ctrl, Recordings: recs, URLs: CallbackURLs{}}
	r := gin.New()
	r.POST(PathVoice, h.HandleInboundCall)
	r.POST(PathDialStatus, h.HandleDialStatus)
	r.POST(PathRecording, h.HandleRecording)
	return r
}

func doPost(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func voicemailPlan(numbers ...string) cascade.Plan {
	return cascade.Plan{
		Candidates:       numbers,
		RingTimeout:      20 * time.Second,
		VoicemailEnabled: true,
		FallbackMessage:  "Please leave a message.",
	}
}

func TestHandleInboundCall_DialsFirstCandidate(t *testing.T) {
	ctrl := cascade.NewController(voicemailPlan("+1A", "+1B"), nil)
	router := newTestRouter(ctrl, nil)

	w := doPost(router, PathVoice, url.Values{"CallSid": {"CA1"}, "From": {"+1F"}, "To": {"+1T"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("expected xml content type, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Number>+1A</Number>") {
		t.Fatalf("expected dial of first candidate: %s", body)
	}
	if !strings.Contains(body, "attempt=0") {
		t.Fatalf("expected attempt 0 callback: %s", body)
	}
}

func TestHandleDialStatus_AdvancesToNext(t *testing.T) {
	ctrl := cascade.NewController(voicemailPlan("+1A", "+1B"), nil)
	router := newTestRouter(ctrl, nil)

	w := doPost(router, PathDialStatus+"?attempt=0", url.Values{"CallSid": {"CA1"}, "DialCallStatus": {"no-answer"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Number>+1B</Number>") || !strings.Contains(body, "attempt=1") {
		t.Fatalf("expected dial of second candidate: %s", body)
	}
}

func TestHandleDialStatus_ConnectedEndsCall(t *testing.T) {
	ctrl := cascade.NewController(voicemailPlan("+1A", "+1B"), nil)
	router := newTestRouter(ctrl, nil)

	w := doPost(router, PathDialStatus+"?attempt=0", url.Values{"CallSid": {"CA1"}, "DialCallStatus": {"completed"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Hangup") || strings.Contains(body, "<Dial") {
		t.Fatalf("expected terminal hangup, got: %s", body)
	}
}

func TestHandleDialStatus_ExhaustionRendersVoicemail(t *testing.T) {
	ctrl := cascade.NewController(voicemailPlan("+1A"), nil)
	router := newTestRouter(ctrl, nil)

	w := doPost(router, PathDialStatus+"?attempt=0", url.Values{"CallSid": {"CA1"}, "DialCallStatus": {"busy"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Say>Please leave a message.</Say>") || !strings.Contains(body, "<Record") {
		t.Fatalf("expected voicemail fallback: %s", body)
	}
}

func TestHandleDialStatus_RejectsBadIndexes(t *testing.T) {
	ctrl := cascade.NewController(voicemailPlan("+1A", "+1B"), nil)
	router := newTestRouter(ctrl, nil)

	// Not an index at all.
	w := doPost(router, PathDialStatus+"?attempt=zzz", url.Values{"DialCallStatus": {"busy"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed index, got %d", w.Code)
	}

	// Typed but outside the plan.
	w = doPost(router, PathDialStatus+"?attempt=7", url.Values{"DialCallStatus": {"busy"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range index, got %d", w.Code)
	}
}

// A failing notification dispatch must not change the response already
// computed for the outcome event.
func TestHandleDialStatus_NotifierFailureDoesNotAffectResponse(t *testing.T) {
	dispatcher := notify.NewDispatcher("http://127.0.0.1:1/unreachable", "", notify.Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout: time.Second,
	})
	ctrl := cascade.NewController(voicemailPlan("+1A"), dispatcher)
	router := newTestRouter(ctrl, nil)

	w := doPost(router, PathDialStatus+"?attempt=0", url.Values{"CallSid": {"CA1"}, "DialCallStatus": {"failed"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite notifier failure, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Say>") {
		t.Fatalf("expected voicemail fallback: %s", w.Body.String())
	}
}

func TestHandleRecording_StoresAndHangsUp(t *testing.T) {
	recs := recordings.NewService(recordings.NewMemoryRepo())
	ctrl := cascade.NewController(voicemailPlan("+1A"), nil)
	router := newTestRouter(ctrl, recs)

	w := doPost(router, PathRecording, url.Values{
		"CallSid":           {"CA1"},
		"From":              {"+1F"},
		"RecordingSid":      {"RE1"},
		"RecordingUrl":      {"https://api.example.com/RE1"},
		"RecordingDuration": {"9"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Hangup") {
		t.Fatalf("expected hangup response: %s", w.Body.String())
	}

	stored, err := recs.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 || stored[0].CallSID != "CA1" || stored[0].DurationSeconds != 9 {
		t.Fatalf("unexpected stored recording: %+v", stored)
	}
}
