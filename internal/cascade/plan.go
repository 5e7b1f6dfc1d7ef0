package cascade

import "time"

// Plan is the immutable forwarding plan for this process: the ordered
// candidate numbers, the per-attempt ring timeout, and the fallback mode
// once every candidate has been tried.
//
// Invariants:
// - Candidates are tried strictly in list order, one outstanding dial at a time.
// - The plan is never mutated after startup; no locking is needed.
type Plan struct {
	Candidates  []string
	RingTimeout time.Duration

	// VoicemailEnabled selects the exhaustion fallback: spoken prompt plus
	// recording capture when true, plain hangup when false.
	VoicemailEnabled bool
	FallbackMessage  string
}

// Size returns the candidate count.
func (p Plan) Size() int { return len(p.Candidates) }

// Candidate returns the number at attempt index i.
// Callers must range-check i first.
func (p Plan) Candidate(i int) string { return p.Candidates[i] }

// InRange reports whether i is a valid attempt index for this plan.
func (p Plan) InRange(i int) bool { return i >= 0 && i < len(p.Candidates) }
