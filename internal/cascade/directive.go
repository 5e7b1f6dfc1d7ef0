package cascade

import "time"

// Directive is the provider-agnostic output of the cascade controller.
//
// It must contain *only* information required for the provider adapter
// boundary (the TwiML builder) to execute the decision.
//
// No provider identity and no provider-specific fields belong here.

type Directive struct {
	Kind DirectiveKind `json:"kind"`

	// Number and AttemptIndex are set for KindDial. AttemptIndex is
	// round-tripped through the status-callback URL; it is the only
	// per-call state this system carries.
	Number       string        `json:"number,omitempty"`
	AttemptIndex int           `json:"attempt_index,omitempty"`
	RingTimeout  time.Duration `json:"ring_timeout,omitempty"`

	// Message is set for KindVoicemail.
	Message string `json:"message,omitempty"`

	// Reason is optional and intended for internal logs/metrics.
	Reason string `json:"reason,omitempty"`
}

type DirectiveKind string

const (
	// KindDial rings one candidate and reports the outcome back.
	KindDial DirectiveKind = "dial"
	// KindEndCall ends the interaction after a successful bridge.
	KindEndCall DirectiveKind = "end_call"
	// KindVoicemail speaks the fallback prompt and captures a recording.
	KindVoicemail DirectiveKind = "voicemail"
	// KindHangup is the fallback without voicemail mode.
	KindHangup DirectiveKind = "hangup"
)
