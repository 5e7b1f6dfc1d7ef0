package recordings

import (
	"context"
	"database/sql"
)

// PostgresRepo persists recordings via database/sql (pgx stdlib driver).
//
// NOTE: This repository assumes the following table exists:
//
//	CREATE TABLE recordings (
//	    id                 UUID PRIMARY KEY,
//	    call_sid           TEXT NOT NULL,
//	    from_number        TEXT NOT NULL DEFAULT '',
//	    recording_sid      TEXT NOT NULL DEFAULT '',
//	    url                TEXT NOT NULL DEFAULT '',
//	    duration_seconds   INT  NOT NULL DEFAULT 0,
//	    transcription_text TEXT NOT NULL DEFAULT '',
//	    created_at         TIMESTAMPTZ NOT NULL
//	);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, rec Recording) error {
	const q = `
INSERT INTO recordings (id, call_sid, from_number, recording_sid, url, duration_seconds, transcription_text, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.CallSID,
		rec.From,
		rec.RecordingSID,
		rec.URL,
		rec.DurationSeconds,
		rec.TranscriptionText,
		rec.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Recording, error) {
	const q = `
SELECT id, call_sid, from_number, recording_sid, url, duration_seconds, transcription_text, created_at
FROM recordings
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		var rec Recording
		if err := rows.Scan(
			&rec.ID,
			&rec.CallSID,
			&rec.From,
			&rec.RecordingSID,
			&rec.URL,
			&rec.DurationSeconds,
			&rec.TranscriptionText,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
