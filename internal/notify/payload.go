package notify

import (
	"time"

	"call-cascade/internal/cascade"
)

// EventAllUnavailable is the event name the downstream workflow keys on.
const EventAllUnavailable = "all_numbers_unavailable"

// Payload is the JSON body posted to the workflow endpoint. Built once per
// exhausted call and dispatched at most once; never persisted or retried.
type Payload struct {
	Event            string    `json:"event"`
	Timestamp        time.Time `json:"timestamp"`
	CallSID          string    `json:"call_sid"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	AttemptedNumbers []string  `json:"attempted_numbers"`
	TotalAttempts    int       `json:"total_attempts"`
	FinalStatus      string    `json:"final_status"`
}

// NewPayload builds the wire payload from a cascade exhaustion event.
func NewPayload(ev cascade.ExhaustionEvent) Payload {
	attempted := ev.AttemptedNumbers
	if attempted == nil {
		attempted = []string{}
	}
	return Payload{
		Event:            EventAllUnavailable,
		Timestamp:        ev.OccurredAt,
		CallSID:          ev.CallSID,
		From:             ev.From,
		To:               ev.To,
		AttemptedNumbers: attempted,
		TotalAttempts:    ev.TotalAttempts,
		FinalStatus:      string(ev.FinalStatus),
	}
}
