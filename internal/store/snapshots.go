package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"social-graph-atlas/internal/models"
)

func (s *Store) CreateSnapshot(ctx context.Context, runID int64, kind models.SnapshotKind) (models.Snapshot, error) {
	snap := models.Snapshot{RunID: runID, Kind: kind}
	err := s.db.QueryRow(ctx, `
		INSERT INTO snapshots (run_id, kind) VALUES ($1, $2)
		RETURNING id, captured_at, account_count`,
		runID, kind,
	).Scan(&snap.ID, &snap.CapturedAt, &snap.AccountCount)
	return snap, err
}

func membershipTable(kind models.SnapshotKind) string {
	if kind == models.KindFollowing {
		return "snapshot_following"
	}
	return "snapshot_followers"
}

// AddSnapshotMembers bulk-inserts one page of membership rows. follow_position
// must already be globally monotonic across the whole run (spec §3) — the
// caller passes the running counter in, this just persists it.
func (s *Store) AddSnapshotMembers(ctx context.Context, snapshotID int64, kind models.SnapshotKind, members []models.SnapshotMember) error {
	if len(members) == 0 {
		return nil
	}
	accountIDs := make([]string, len(members))
	positions := make([]int32, len(members))
	for i, m := range members {
		accountIDs[i] = m.AccountID
		positions[i] = int32(m.FollowPosition)
	}
	table := membershipTable(kind)
	_, err := s.db.Exec(ctx, `
		INSERT INTO `+table+` (snapshot_id, account_id, follow_position)
		SELECT $1, u.account_id, u.follow_position
		FROM UNNEST($2::text[], $3::int[]) AS u(account_id, follow_position)
		ON CONFLICT (snapshot_id, account_id) DO UPDATE SET follow_position = EXCLUDED.follow_position`,
		snapshotID, accountIDs, positions,
	)
	return err
}

// FinalizeSnapshotCount stamps the final account_count once collection for
// that snapshot completes.
func (s *Store) FinalizeSnapshotCount(ctx context.Context, snapshotID int64, kind models.SnapshotKind) error {
	table := membershipTable(kind)
	_, err := s.db.Exec(ctx, `
		UPDATE snapshots SET account_count = (SELECT count(*) FROM `+table+` WHERE snapshot_id = $1)
		WHERE id = $1`, snapshotID)
	return err
}

func (s *Store) GetLatestSnapshot(ctx context.Context, kind models.SnapshotKind) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.db.QueryRow(ctx, `
		SELECT id, run_id, captured_at, kind, account_count
		FROM snapshots WHERE kind = $1
		ORDER BY captured_at DESC LIMIT 1`, kind,
	).Scan(&snap.ID, &snap.RunID, &snap.CapturedAt, &snap.Kind, &snap.AccountCount)
	return snap, err
}

func (s *Store) GetSnapshot(ctx context.Context, snapshotID int64) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.db.QueryRow(ctx, `
		SELECT id, run_id, captured_at, kind, account_count
		FROM snapshots WHERE id = $1`, snapshotID,
	).Scan(&snap.ID, &snap.RunID, &snap.CapturedAt, &snap.Kind, &snap.AccountCount)
	return snap, err
}

func (s *Store) ListSnapshots(ctx context.Context, kind models.SnapshotKind, limit int) ([]models.Snapshot, error) {
	var rows pgx.Rows
	var err error
	if kind == "" {
		rows, err = s.db.Query(ctx, `
			SELECT id, run_id, captured_at, kind, account_count
			FROM snapshots ORDER BY captured_at DESC LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT id, run_id, captured_at, kind, account_count
			FROM snapshots WHERE kind = $1 ORDER BY captured_at DESC LIMIT $2`, kind, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(&snap.ID, &snap.RunID, &snap.CapturedAt, &snap.Kind, &snap.AccountCount); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetSnapshotMemberIDs returns the account id set of one snapshot, used by
// compute_interval_diff's set-difference logic.
func (s *Store) GetSnapshotMemberIDs(ctx context.Context, snapshotID int64, kind models.SnapshotKind) (map[string]bool, error) {
	table := membershipTable(kind)
	rows, err := s.db.Query(ctx, `SELECT account_id FROM `+table+` WHERE snapshot_id = $1`, snapshotID)
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

// GCEmptySnapshots deletes snapshots whose membership collection never
// completed (account_count still zero) left behind by a crashed run.
func (s *Store) GCEmptySnapshots(ctx context.Context) (int64, error) {
	const emptySnapshots = `
		SELECT id FROM snapshots
		WHERE account_count = 0
		AND id NOT IN (SELECT snapshot_start_id FROM intervals UNION SELECT snapshot_end_id FROM intervals)`
	// Membership rows written before the crash reference the snapshot, so
	// they go first.
	for _, table := range []string{"snapshot_followers", "snapshot_following"} {
		if _, err := s.db.Exec(ctx, `DELETE FROM `+table+` WHERE snapshot_id IN (`+emptySnapshots+`)`); err != nil {
			return 0, err
		}
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM snapshots WHERE id IN (`+emptySnapshots+`)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
