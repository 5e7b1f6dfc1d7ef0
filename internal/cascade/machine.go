package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Controller owns the dial cascade state machine.
//
// It is purely reactive: each webhook re-enters the controller with the
// attempt index carried in the callback URL, so no per-call state lives in
// this process and concurrent calls need no coordination.
//
// States: Idle -> Dialing(i) -> {Connected | Dialing(i+1) | Exhausted}.
//
// Exhaustion fires the notifier as a side effect; the notifier contract is
// non-blocking, so emitting a directive never waits on downstream HTTP.

type Controller struct {
	plan     Plan
	notifier Notifier
	now      func() time.Time
}

// Notifier receives the exhaustion event when every candidate has been
// tried without a connection. Implementations must not block: dispatch
// happens on the webhook path and the HTTP response must not wait for it.
type Notifier interface {
	NotifyExhausted(ctx context.Context, ev ExhaustionEvent)
}

// CallEvent is an inbound call notification (no prior attempt).
type CallEvent struct {
	CallSID string
	From    string
	To      string
}

// OutcomeEvent reports the result of the dial attempt at AttemptIndex.
type OutcomeEvent struct {
	CallEvent

	AttemptIndex int

	// DialStatus is the raw status string from the platform;
	// classification happens here, not at the boundary.
	DialStatus string
}

// ExhaustionEvent is built once, when the cascade exhausts, from the last
// webhook's call metadata. It is dispatched at most once and never
// persisted beyond that single dispatch.
type ExhaustionEvent struct {
	CallSID          string
	From             string
	To               string
	AttemptedNumbers []string
	TotalAttempts    int
	FinalStatus      Outcome
	OccurredAt       time.Time
}

// ErrAttemptOutOfRange rejects outcome events whose attempt index does not
// identify a dial this plan could have issued. The index is round-tripped
// through the platform, so it is validated rather than trusted.
var ErrAttemptOutOfRange = errors.New("cascade: attempt index out of range")

func NewController(plan Plan, notifier Notifier) *Controller {
	return &Controller{plan: plan, notifier: notifier, now: time.Now}
}

// WithClock overrides the controller clock. Tests only.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Plan returns the immutable forwarding plan.
func (c *Controller) Plan() Plan { return c.plan }

// StartCascade handles an inbound call: dial candidate 0, or degrade
// straight to the fallback path when no candidates are configured.
func (c *Controller) StartCascade(ctx context.Context, ev CallEvent) Directive {
	if c.plan.Size() == 0 {
		c.notifyExhausted(ctx, ev, 0, OutcomeOther)
		return c.fallback("no_candidates")
	}
	return c.dial(0)
}

// AdvanceCascade handles a dial outcome: terminal success on a connected
// outcome, the next candidate while one remains, the fallback path plus an
// asynchronous exhaustion notification otherwise.
func (c *Controller) AdvanceCascade(ctx context.Context, ev OutcomeEvent) (Directive, error) {
	if !c.plan.InRange(ev.AttemptIndex) {
		return Directive{}, fmt.Errorf("%w: %d of %d", ErrAttemptOutOfRange, ev.AttemptIndex, c.plan.Size())
	}

	outcome := ClassifyDialStatus(ev.DialStatus)
	if outcome.Connected() {
		// Call is already bridged; nothing left to do.
		return Directive{Kind: KindEndCall, Reason: "connected"}, nil
	}

	next := ev.AttemptIndex + 1
	if next < c.plan.Size() {
		return c.dial(next), nil
	}

	c.notifyExhausted(ctx, ev.CallEvent, c.plan.Size(), outcome)
	return c.fallback("exhausted"), nil
}

func (c *Controller) dial(i int) Directive {
	return Directive{
		Kind:         KindDial,
		Number:       c.plan.Candidate(i),
		AttemptIndex: i,
		RingTimeout:  c.plan.RingTimeout,
	}
}

func (c *Controller) fallback(reason string) Directive {
	if c.plan.VoicemailEnabled {
		return Directive{Kind: KindVoicemail, Message: c.plan.FallbackMessage, Reason: reason}
	}
	return Directive{Kind: KindHangup, Reason: reason}
}

func (c *Controller) notifyExhausted(ctx context.Context, ev CallEvent, attempts int, final Outcome) {
	if c.notifier == nil {
		return
	}
	attempted := make([]string, attempts)
	copy(attempted, c.plan.Candidates[:attempts])
	c.notifier.NotifyExhausted(ctx, ExhaustionEvent{
		CallSID:          ev.CallSID,
		From:             ev.From,
		To:               ev.To,
		AttemptedNumbers: attempted,
		TotalAttempts:    attempts,
		FinalStatus:      final,
		OccurredAt:       c.now().UTC(),
	})
}
