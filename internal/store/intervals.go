package store

import (
	"context"

	"social-graph-atlas/internal/models"
)

func (s *Store) CreateInterval(ctx context.Context, iv models.Interval) (models.Interval, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO intervals (snapshot_start_id, snapshot_end_id, kind, start_at, end_at, new_count, lost_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		iv.SnapshotStartID, iv.SnapshotEndID, iv.Kind, iv.StartAt, iv.EndAt, iv.NewCount, iv.LostCount,
	).Scan(&iv.ID)
	return iv, err
}

func (s *Store) GetInterval(ctx context.Context, intervalID int64) (models.Interval, error) {
	var iv models.Interval
	err := s.db.QueryRow(ctx, `
		SELECT id, snapshot_start_id, snapshot_end_id, kind, start_at, end_at, new_count, lost_count
		FROM intervals WHERE id = $1`, intervalID,
	).Scan(&iv.ID, &iv.SnapshotStartID, &iv.SnapshotEndID, &iv.Kind, &iv.StartAt, &iv.EndAt, &iv.NewCount, &iv.LostCount)
	return iv, err
}

func (s *Store) GetLatestInterval(ctx context.Context) (models.Interval, error) {
	var iv models.Interval
	err := s.db.QueryRow(ctx, `
		SELECT id, snapshot_start_id, snapshot_end_id, kind, start_at, end_at, new_count, lost_count
		FROM intervals ORDER BY end_at DESC LIMIT 1`,
	).Scan(&iv.ID, &iv.SnapshotStartID, &iv.SnapshotEndID, &iv.Kind, &iv.StartAt, &iv.EndAt, &iv.NewCount, &iv.LostCount)
	return iv, err
}

func (s *Store) ListIntervals(ctx context.Context, limit int) ([]models.Interval, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, snapshot_start_id, snapshot_end_id, kind, start_at, end_at, new_count, lost_count
		FROM intervals ORDER BY end_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Interval
	for rows.Next() {
		var iv models.Interval
		if err := rows.Scan(&iv.ID, &iv.SnapshotStartID, &iv.SnapshotEndID, &iv.Kind, &iv.StartAt, &iv.EndAt, &iv.NewCount, &iv.LostCount); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// ListIntervalsBefore returns up to limit intervals with end_at <= cutoff,
// most recent first — used by the attribution lookback window and by the
// frame builder to find the previous interval for layout seeding.
func (s *Store) ListIntervalsBefore(ctx context.Context, cutoff interface{}, limit int) ([]models.Interval, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, snapshot_start_id, snapshot_end_id, kind, start_at, end_at, new_count, lost_count
		FROM intervals WHERE end_at <= $1 ORDER BY end_at DESC LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Interval
	for rows.Next() {
		var iv models.Interval
		if err := rows.Scan(&iv.ID, &iv.SnapshotStartID, &iv.SnapshotEndID, &iv.Kind, &iv.StartAt, &iv.EndAt, &iv.NewCount, &iv.LostCount); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// InsertFollowEvents bulk-writes the diff output of compute_interval_diff.
func (s *Store) InsertFollowEvents(ctx context.Context, intervalID int64, events []models.FollowEvent) error {
	if len(events) == 0 {
		return nil
	}
	accountIDs := make([]string, len(events))
	kinds := make([]string, len(events))
	for i, e := range events {
		accountIDs[i] = e.AccountID
		kinds[i] = string(e.Kind)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO follow_events (interval_id, account_id, kind)
		SELECT $1, u.account_id, u.kind
		FROM UNNEST($2::text[], $3::text[]) AS u(account_id, kind)`,
		intervalID, accountIDs, kinds,
	)
	return err
}

func (s *Store) ListFollowEvents(ctx context.Context, intervalID int64, kind models.FollowEventKind) ([]models.FollowEvent, error) {
	query := `SELECT id, interval_id, account_id, kind FROM follow_events WHERE interval_id = $1`
	args := []any{intervalID}
	if kind != "" {
		query += ` AND kind = $2`
		args = append(args, kind)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FollowEvent
	for rows.Next() {
		var e models.FollowEvent
		if err := rows.Scan(&e.ID, &e.IntervalID, &e.AccountID, &e.Kind); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
