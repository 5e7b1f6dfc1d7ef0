package telephony

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"call-cascade/internal/cascade"
)

// Webhook route paths. The dial status callback carries the attempt index
// as a query parameter; that round-trip through the platform is the only
// per-call state in the system.
const (
	PathVoice      = "/webhooks/voice"
	PathDialStatus = "/webhooks/voice/status"
	PathRecording  = "/webhooks/voice/recording"

	queryAttempt = "attempt"
)

// CallbackURLs builds the callback addresses embedded in emitted TwiML.
// With an empty Base the URLs are relative and the platform resolves them
// against the webhook document URL, which keeps the service portable
// behind any ingress.
type CallbackURLs struct {
	Base string
}

func (u CallbackURLs) DialStatus(attempt int) string {
	return fmt.Sprintf("%s%s?%s=%d", u.Base, PathDialStatus, queryAttempt, attempt)
}

func (u CallbackURLs) Recording() string {
	return u.Base + PathRecording
}

// InboundForm captures the subset of voice webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
//
// Keep it minimal and provider-adapter-only. Cascade decisions are not
// made here.
type InboundForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	Direction  string
	CallStatus string
}

func ParseInboundCall(r *http.Request) (InboundForm, error) {
	if err := r.ParseForm(); err != nil {
		return InboundForm{}, err
	}
	return InboundForm{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		From:       normalizePhone(r.PostFormValue("From")),
		To:         normalizePhone(r.PostFormValue("To")),
		Direction:  r.PostFormValue("Direction"),
		CallStatus: r.PostFormValue("CallStatus"),
	}, nil
}

func (f InboundForm) ToCallEvent() cascade.CallEvent {
	return cascade.CallEvent{CallSID: f.CallSid, From: f.From, To: f.To}
}

// DialStatusForm is the Dial action callback: the inbound fields plus the
// outcome of the attempt that just finished.
type DialStatusForm struct {
	InboundForm

	// DialCallStatus is classified by the cascade package; an absent value
	// is passed through and counts as a failed attempt there.
	DialCallStatus   string
	DialCallSid      string
	DialCallDuration string
}

func ParseDialStatus(r *http.Request) (DialStatusForm, error) {
	inbound, err := ParseInboundCall(r)
	if err != nil {
		return DialStatusForm{}, err
	}
	return DialStatusForm{
		InboundForm:      inbound,
		DialCallStatus:   r.PostFormValue("DialCallStatus"),
		DialCallSid:      r.PostFormValue("DialCallSid"),
		DialCallDuration: r.PostFormValue("DialCallDuration"),
	}, nil
}

// AttemptIndex extracts and type-checks the attempt index from the
// callback query string. Range validation against the plan happens in the
// cascade controller; this only rejects values that are not a
// non-negative integer.
func AttemptIndex(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(queryAttempt))
	if raw == "" {
		return 0, fmt.Errorf("telephony: missing %q query parameter", queryAttempt)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("telephony: %q is not a valid attempt index", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("telephony: attempt index must be non-negative, got %d", n)
	}
	return n, nil
}

// RecordingForm is the recording/transcription callback. Passive sink:
// the fields are stored as-is, no branching happens on them.
type RecordingForm struct {
	CallSid           string
	From              string
	RecordingSid      string
	RecordingURL      string
	RecordingDuration string
	TranscriptionText string
}

func ParseRecording(r *http.Request) (RecordingForm, error) {
	if err := r.ParseForm(); err != nil {
		return RecordingForm{}, err
	}
	return RecordingForm{
		CallSid:           r.PostFormValue("CallSid"),
		From:              normalizePhone(r.PostFormValue("From")),
		RecordingSid:      r.PostFormValue("RecordingSid"),
		RecordingURL:      r.PostFormValue("RecordingUrl"),
		RecordingDuration: r.PostFormValue("RecordingDuration"),
		TranscriptionText: r.PostFormValue("TranscriptionText"),
	}, nil
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}
