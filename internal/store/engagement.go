package store

import (
	"context"
	"time"

	"social-graph-atlas/internal/models"
)

func (s *Store) UpsertPost(ctx context.Context, p models.Post) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO posts (post_id, author_id, created_at, text, metrics_json, conversation_id, in_reply_to_id, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (post_id) DO UPDATE SET
			metrics_json = EXCLUDED.metrics_json,
			last_seen_at = EXCLUDED.last_seen_at`,
		p.PostID, p.AuthorID, p.CreatedAt, p.Text, p.MetricsJSON, p.ConversationID, p.InReplyToID, p.LastSeenAt,
	)
	return err
}

func (s *Store) GetPost(ctx context.Context, postID string) (models.Post, error) {
	var p models.Post
	err := s.db.QueryRow(ctx, `
		SELECT post_id, author_id, created_at, text, metrics_json, conversation_id, in_reply_to_id, last_seen_at
		FROM posts WHERE post_id = $1`, postID,
	).Scan(&p.PostID, &p.AuthorID, &p.CreatedAt, &p.Text, &p.MetricsJSON, &p.ConversationID, &p.InReplyToID, &p.LastSeenAt)
	return p, err
}

// ListTopPostsByAuthor returns up to limit of the author's posts, most
// recent first.
func (s *Store) ListTopPostsByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT post_id, author_id, created_at, text, metrics_json, conversation_id, in_reply_to_id, last_seen_at
		FROM posts WHERE author_id = $1 ORDER BY created_at DESC LIMIT $2`, authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.PostID, &p.AuthorID, &p.CreatedAt, &p.Text, &p.MetricsJSON, &p.ConversationID, &p.InReplyToID, &p.LastSeenAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) InsertInteractionEvent(ctx context.Context, e models.InteractionEvent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO interaction_events (interval_id, created_at, src_id, dst_id, type, post_id, raw_fetch_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		e.IntervalID, e.CreatedAt, e.SrcID, e.DstID, e.Type, e.PostID, e.RawFetchID,
	)
	return err
}

// ListInteractionEventsInWindow returns every interaction with created_at in
// [start, end), the edge builder's direct-interaction source (spec §4.4.1).
func (s *Store) ListInteractionEventsInWindow(ctx context.Context, start, end time.Time) ([]models.InteractionEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, interval_id, created_at, src_id, dst_id, type, COALESCE(post_id, ''), raw_fetch_id
		FROM interaction_events WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.InteractionEvent
	for rows.Next() {
		var e models.InteractionEvent
		if err := rows.Scan(&e.ID, &e.IntervalID, &e.CreatedAt, &e.SrcID, &e.DstID, &e.Type, &e.PostID, &e.RawFetchID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) InsertPostEngager(ctx context.Context, e models.PostEngager) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO post_engagers (interval_id, post_id, account_id, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, account_id, type) DO NOTHING`,
		e.IntervalID, e.PostID, e.AccountID, e.Type,
	)
	return err
}

// ListPostEngagersInWindow backs co-engagement edge construction: every
// engager of every post created in [start, end), which the frame builder
// groups by post to pair accounts that engaged the same post (spec §4.4.1
// co-engagement source).
func (s *Store) ListPostEngagersInWindow(ctx context.Context, start, end time.Time) ([]models.PostEngager, error) {
	rows, err := s.db.Query(ctx, `
		SELECT pe.interval_id, pe.post_id, pe.account_id, pe.type
		FROM post_engagers pe
		JOIN posts p ON p.post_id = pe.post_id
		WHERE p.created_at >= $1 AND p.created_at < $2`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PostEngager
	for rows.Next() {
		var e models.PostEngager
		if err := rows.Scan(&e.IntervalID, &e.PostID, &e.AccountID, &e.Type); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListPostEngagers(ctx context.Context, postID string) ([]models.PostEngager, error) {
	rows, err := s.db.Query(ctx, `
		SELECT interval_id, post_id, account_id, type FROM post_engagers WHERE post_id = $1`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PostEngager
	for rows.Next() {
		var e models.PostEngager
		if err := rows.Scan(&e.IntervalID, &e.PostID, &e.AccountID, &e.Type); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListInteractionEventsForPost backs post attribution's evidence gathering.
func (s *Store) ListInteractionEventsForPost(ctx context.Context, postID string) ([]models.InteractionEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, interval_id, created_at, src_id, dst_id, type, COALESCE(post_id, ''), raw_fetch_id
		FROM interaction_events WHERE post_id = $1 ORDER BY created_at ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.InteractionEvent
	for rows.Next() {
		var e models.InteractionEvent
		if err := rows.Scan(&e.ID, &e.IntervalID, &e.CreatedAt, &e.SrcID, &e.DstID, &e.Type, &e.PostID, &e.RawFetchID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
