package store

import (
	"context"

	"social-graph-atlas/internal/models"
)

// UpsertPostAttribution writes one attribution row. An existing row for the
// same (post_id, timeframe_days) gets its interval_id and payload
// overwritten and built_at refreshed. The rebuild=false/true choice is made
// by the caller, which deletes the old row first when rebuilding.
func (s *Store) UpsertPostAttribution(ctx context.Context, a models.PostAttribution) (models.PostAttribution, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO post_attributions (post_id, interval_id, timeframe_days, created_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, timeframe_days) DO UPDATE SET
			interval_id = EXCLUDED.interval_id,
			payload = EXCLUDED.payload,
			built_at = now()
		RETURNING id, built_at`,
		a.PostID, a.IntervalID, a.TimeframeDays, a.CreatedAt, a.Payload,
	).Scan(&a.ID, &a.BuiltAt)
	return a, err
}

func (s *Store) DeletePostAttribution(ctx context.Context, postID string, timeframeDays int) error {
	_, err := s.db.Exec(ctx, `DELETE FROM post_attributions WHERE post_id = $1 AND timeframe_days = $2`, postID, timeframeDays)
	return err
}

func (s *Store) GetPostAttribution(ctx context.Context, postID string, timeframeDays int) (models.PostAttribution, error) {
	var a models.PostAttribution
	err := s.db.QueryRow(ctx, `
		SELECT id, post_id, interval_id, timeframe_days, created_at, payload, built_at
		FROM post_attributions WHERE post_id = $1 AND timeframe_days = $2`, postID, timeframeDays,
	).Scan(&a.ID, &a.PostID, &a.IntervalID, &a.TimeframeDays, &a.CreatedAt, &a.Payload, &a.BuiltAt)
	return a, err
}

func (s *Store) ListPostAttributions(ctx context.Context, timeframeDays, limit int) ([]models.PostAttribution, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, interval_id, timeframe_days, created_at, payload, built_at
		FROM post_attributions WHERE timeframe_days = $1
		ORDER BY created_at DESC LIMIT $2`, timeframeDays, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PostAttribution
	for rows.Next() {
		var a models.PostAttribution
		if err := rows.Scan(&a.ID, &a.PostID, &a.IntervalID, &a.TimeframeDays, &a.CreatedAt, &a.Payload, &a.BuiltAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
