package store

import (
	"context"

	"social-graph-atlas/internal/models"
)

// Stats is the payload behind GET /stats — a cheap aggregate snapshot of
// the whole graph, not a per-interval derived artifact.
type Stats struct {
	AccountCount  int64
	RunCount      int64
	IntervalCount int64
	LatestRunID   *int64
	LatestStatus  models.RunStatus
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&st.AccountCount)
	if err != nil {
		return st, err
	}
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM runs`).Scan(&st.RunCount); err != nil {
		return st, err
	}
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM intervals`).Scan(&st.IntervalCount); err != nil {
		return st, err
	}

	var latestID int64
	var status models.RunStatus
	err = s.db.QueryRow(ctx, `SELECT id, status FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&latestID, &status)
	if err == nil {
		st.LatestRunID = &latestID
		st.LatestStatus = status
	} else if !isNoRows(err) {
		return st, err
	}
	return st, nil
}

// ListPositionHistory backs GET /positions/history: every recorded position
// for one account across intervals, oldest first.
func (s *Store) ListPositionHistory(ctx context.Context, accountID string, limit int) ([]models.PositionHistory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, interval_id, account_id, x, y, z, recorded_at, source
		FROM position_history WHERE account_id = $1
		ORDER BY recorded_at ASC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PositionHistory
	for rows.Next() {
		var h models.PositionHistory
		if err := rows.Scan(&h.ID, &h.IntervalID, &h.AccountID, &h.X, &h.Y, &h.Z, &h.RecordedAt, &h.Source); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CumulativeFollowerIDs returns every account id that has ever appeared in a
// followers snapshot captured at or before the given time — one half of the
// frame builder's cumulative node set (spec §4.4.3).
func (s *Store) CumulativeFollowerIDs(ctx context.Context, upToEndAt interface{}) (map[string]bool, error) {
	return s.cumulativeMembershipIDs(ctx, "snapshot_followers", upToEndAt)
}

// CumulativeFollowingIDs is CumulativeFollowerIDs for the following side.
func (s *Store) CumulativeFollowingIDs(ctx context.Context, upToEndAt interface{}) (map[string]bool, error) {
	return s.cumulativeMembershipIDs(ctx, "snapshot_following", upToEndAt)
}

func (s *Store) cumulativeMembershipIDs(ctx context.Context, table string, upToEndAt interface{}) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT m.account_id
		FROM `+table+` m
		JOIN snapshots s ON s.id = m.snapshot_id
		WHERE s.captured_at <= $1`, upToEndAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// CumulativeNodeSet returns every account id that has ever appeared as a
// follower or following member up to and including the given interval's
// end, in one query. The frame builder does not call it; it reads the two
// halves through CumulativeFollowerIDs and CumulativeFollowingIDs.
func (s *Store) CumulativeNodeSet(ctx context.Context, upToEndAt interface{}) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT sf.account_id
		FROM snapshot_followers sf
		JOIN snapshots s ON s.id = sf.snapshot_id
		WHERE s.captured_at <= $1
		UNION
		SELECT DISTINCT sg.account_id
		FROM snapshot_following sg
		JOIN snapshots s ON s.id = sg.snapshot_id
		WHERE s.captured_at <= $1`, upToEndAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
