package recordings

import "time"

// Recording is one stored voicemail: the metadata reported by the
// recording/transcription callback after an exhausted cascade.
//
// Invariants:
// - Records are append-only; no update or delete path exists.
// - Only recording metadata is stored, never per-attempt call history.

type Recording struct {
	ID      string `json:"id" db:"id"`
	CallSID string `json:"call_sid" db:"call_sid"`
	From    string `json:"from" db:"from_number"`

	RecordingSID string `json:"recording_sid,omitempty" db:"recording_sid"`
	URL          string `json:"url,omitempty" db:"url"`

	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	TranscriptionText string `json:"transcription_text,omitempty" db:"transcription_text"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
