package store

import (
	"context"

	"social-graph-atlas/internal/models"
)

// InsertRawFetch appends one paged upstream response. Never updated.
func (s *Store) InsertRawFetch(ctx context.Context, f models.RawFetch) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO raw_fetches (run_id, endpoint, params_hash, cursor_in, cursor_out, truncated, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		f.RunID, f.Endpoint, f.ParamsHash, f.CursorIn, f.CursorOut, f.Truncated, f.Payload,
	).Scan(&id)
	return id, err
}
