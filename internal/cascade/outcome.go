package cascade

// Outcome classifies the result of one dial attempt as reported by the
// telephony platform's status callback.
//
// Only OutcomeConnected terminates the cascade successfully; every other
// value, including unrecognized or missing statuses, is one uniform
// "attempt failed" class. This collapse is deliberate: there is no
// per-cause policy, no backoff, nothing to distinguish a busy signal from
// a timeout.

type Outcome string

const (
	OutcomeConnected Outcome = "connected"
	OutcomeNoAnswer  Outcome = "no_answer"
	OutcomeBusy      Outcome = "busy"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeOther     Outcome = "other"
)

// Connected reports terminal success.
func (o Outcome) Connected() bool { return o == OutcomeConnected }

// ClassifyDialStatus maps a raw DialCallStatus value to an Outcome.
// Twilio reports "completed" for a bridged call that has finished and
// "answered" for one still up; both mean the caller reached a human.
func ClassifyDialStatus(s string) Outcome {
	switch s {
	case "completed", "answered":
		return OutcomeConnected
	case "no-answer":
		return OutcomeNoAnswer
	case "busy":
		return OutcomeBusy
	case "failed":
		return OutcomeFailed
	case "canceled":
		return OutcomeCanceled
	default:
		// Missing or unknown statuses advance the cascade rather than
		// rejecting the event; caller progress wins over strict validation.
		return OutcomeOther
	}
}
