package recordings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for recordings.
//
// It MUST be append-only for writes.

type Repository interface {
	Append(ctx context.Context, rec Recording) error
	List(ctx context.Context, limit int) ([]Recording, error)
}

// Service stores voicemail recording metadata.
//
// Callers on the webhook path should treat storage as best-effort: a
// failure here is logged by the handler and never changes the call-control
// response.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidRecording = errors.New("recordings: call_sid is required")

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// StoreInput carries the callback fields; the ID and timestamp are
// assigned here.
type StoreInput struct {
	CallSID           string
	From              string
	RecordingSID      string
	URL               string
	DurationSeconds   int
	TranscriptionText string
}

func (s *Service) Store(ctx context.Context, in StoreInput) (Recording, error) {
	if s.repo == nil {
		return Recording{}, errors.New("recordings: repository not configured")
	}
	if in.CallSID == "" {
		return Recording{}, ErrInvalidRecording
	}

	rec := Recording{
		ID:                uuid.NewString(),
		CallSID:           in.CallSID,
		From:              in.From,
		RecordingSID:      in.RecordingSID,
		URL:               in.URL,
		DurationSeconds:   in.DurationSeconds,
		TranscriptionText: in.TranscriptionText,
		CreatedAt:         s.clock().UTC(),
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return Recording{}, err
	}
	return rec, nil
}

// List returns the most recent recordings, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Recording, error) {
	if s.repo == nil {
		return nil, errors.New("recordings: repository not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, limit)
}
