package telephony

import (
	"strings"
	"testing"
	"time"

	"call-cascade/internal/cascade"
)

func TestRenderTwiMLDial(t *testing.T) {
	xml, err := RenderTwiML(cascade.Directive{
		Kind:         cascade.KindDial,
		Number:       "+15550000001",
		AttemptIndex: 2,
		RingTimeout:  20 * time.Second,
	}, CallbackURLs{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{
		`<Dial timeout="20" action="/webhooks/voice/status?attempt=2" method="POST">`,
		`<Number>+15550000001</Number>`,
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in xml: %s", want, xml)
		}
	}
}

func TestRenderTwiMLDialAbsoluteCallback(t *testing.T) {
	xml, err := RenderTwiML(cascade.Directive{
		Kind:        cascade.KindDial,
		Number:      "+15550000001",
		RingTimeout: 20 * time.Second,
	}, CallbackURLs{Base: "https://pbx.example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := `action="https://pbx.example.com/webhooks/voice/status?attempt=0"`; !strings.Contains(xml, want) {
		t.Fatalf("expected %q in xml: %s", want, xml)
	}
}

func TestRenderTwiMLDialRequiresNumber(t *testing.T) {
	if _, err := RenderTwiML(cascade.Directive{Kind: cascade.KindDial}, CallbackURLs{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderTwiMLEndCallAndHangup(t *testing.T) {
	for _, kind := range []cascade.DirectiveKind{cascade.KindEndCall, cascade.KindHangup} {
		xml, err := RenderTwiML(cascade.Directive{Kind: kind}, CallbackURLs{})
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", kind, err)
		}
		if !strings.Contains(xml, "<Hangup") {
			t.Fatalf("%s: expected Hangup in xml: %s", kind, xml)
		}
		if strings.Contains(xml, "<Dial") {
			t.Fatalf("%s: unexpected Dial in xml: %s", kind, xml)
		}
	}
}

func TestRenderTwiMLVoicemail(t *testing.T) {
	xml, err := RenderTwiML(cascade.Directive{
		Kind:    cascade.KindVoicemail,
		Message: "Leave a message.",
	}, CallbackURLs{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{
		"<Say>Leave a message.</Say>",
		`<Record action="/webhooks/voice/recording" method="POST" maxLength="120" playBeep="true">`,
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in xml: %s", want, xml)
		}
	}
}

func TestRenderTwiMLVoicemailDefaultsMessage(t *testing.T) {
	xml, err := RenderTwiML(cascade.Directive{Kind: cascade.KindVoicemail}, CallbackURLs{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(xml, defaultFallbackMessage) {
		t.Fatalf("expected default message in xml: %s", xml)
	}
}

func TestRenderTwiMLUnknownKind(t *testing.T) {
	if _, err := RenderTwiML(cascade.Directive{Kind: "party"}, CallbackURLs{}); err == nil {
		t.Fatalf("expected error")
	}
}
