package store

import (
	"context"

	"social-graph-atlas/internal/models"
)

// ReplaceIntervalDerived atomically replaces the edges/communities/positions/
// frame rows for one interval — the delete-then-insert critical section
// spec §5 requires for idempotent frame rebuilds. Single-writer-per-run: the
// caller (the frame builder) is expected to serialize calls per interval.
func (s *Store) ReplaceIntervalDerived(ctx context.Context, intervalID int64, edges []models.Edge, communities []models.Community, positions []models.Position, frame models.Frame) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM edges WHERE interval_id = $1`, intervalID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM communities WHERE interval_id = $1`, intervalID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM positions WHERE interval_id = $1`, intervalID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM frames WHERE interval_id = $1 AND timeframe_days = $2`, intervalID, frame.TimeframeDays); err != nil {
		return err
	}

	if len(edges) > 0 {
		srcIDs := make([]string, len(edges))
		dstIDs := make([]string, len(edges))
		types := make([]string, len(edges))
		weights := make([]float64, len(edges))
		metas := make([]string, len(edges))
		for i, e := range edges {
			srcIDs[i] = e.SrcID
			dstIDs[i] = e.DstID
			types[i] = e.Type
			weights[i] = e.Weight
			if len(e.Metadata) == 0 {
				metas[i] = "{}"
			} else {
				metas[i] = string(e.Metadata)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO edges (interval_id, src_id, dst_id, type, weight, metadata)
			SELECT $1, u.src_id, u.dst_id, u.type, u.weight, u.metadata::jsonb
			FROM UNNEST($2::text[], $3::text[], $4::text[], $5::double precision[], $6::text[])
				AS u(src_id, dst_id, type, weight, metadata)`,
			intervalID, srcIDs, dstIDs, types, weights, metas,
		); err != nil {
			return err
		}
	}

	if len(communities) > 0 {
		accountIDs := make([]string, len(communities))
		communityIDs := make([]int32, len(communities))
		confidences := make([]float64, len(communities))
		for i, c := range communities {
			accountIDs[i] = c.AccountID
			communityIDs[i] = int32(c.CommunityID)
			confidences[i] = c.Confidence
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO communities (interval_id, account_id, community_id, confidence)
			SELECT $1, u.account_id, u.community_id, u.confidence
			FROM UNNEST($2::text[], $3::int[], $4::double precision[]) AS u(account_id, community_id, confidence)`,
			intervalID, accountIDs, communityIDs, confidences,
		); err != nil {
			return err
		}
	}

	if len(positions) > 0 {
		accountIDs := make([]string, len(positions))
		xs := make([]float64, len(positions))
		ys := make([]float64, len(positions))
		zs := make([]float64, len(positions))
		for i, p := range positions {
			accountIDs[i] = p.AccountID
			xs[i] = p.X
			ys[i] = p.Y
			zs[i] = p.Z
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO positions (interval_id, account_id, x, y, z)
			SELECT $1, u.account_id, u.x, u.y, u.z
			FROM UNNEST($2::text[], $3::double precision[], $4::double precision[], $5::double precision[])
				AS u(account_id, x, y, z)`,
			intervalID, accountIDs, xs, ys, zs,
		); err != nil {
			return err
		}

		for _, p := range positions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO position_history (interval_id, account_id, x, y, z, source)
				VALUES ($1, $2, $3, $4, $5, 'frame_build')`,
				intervalID, p.AccountID, p.X, p.Y, p.Z,
			); err != nil {
				return err
			}
		}
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO frames (interval_id, timeframe_days, payload, node_count, edge_count, build_metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, built_at`,
		intervalID, frame.TimeframeDays, frame.Payload, frame.NodeCount, frame.EdgeCount, frame.BuildMetadata,
	).Scan(&frame.ID, &frame.BuiltAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetPositions(ctx context.Context, intervalID int64) (map[string]models.Position, error) {
	rows, err := s.db.Query(ctx, `SELECT interval_id, account_id, x, y, z FROM positions WHERE interval_id = $1`, intervalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.Position)
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.IntervalID, &p.AccountID, &p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		out[p.AccountID] = p
	}
	return out, rows.Err()
}

func (s *Store) GetEdges(ctx context.Context, intervalID int64) ([]models.Edge, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, interval_id, src_id, dst_id, type, weight, metadata
		FROM edges WHERE interval_id = $1`, intervalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.ID, &e.IntervalID, &e.SrcID, &e.DstID, &e.Type, &e.Weight, &e.Metadata); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetCommunities(ctx context.Context, intervalID int64) (map[string]models.Community, error) {
	rows, err := s.db.Query(ctx, `
		SELECT interval_id, account_id, community_id, confidence
		FROM communities WHERE interval_id = $1`, intervalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.Community)
	for rows.Next() {
		var c models.Community
		if err := rows.Scan(&c.IntervalID, &c.AccountID, &c.CommunityID, &c.Confidence); err != nil {
			return nil, err
		}
		out[c.AccountID] = c
	}
	return out, rows.Err()
}

func (s *Store) GetFrame(ctx context.Context, intervalID int64, timeframeDays int) (models.Frame, error) {
	var f models.Frame
	err := s.db.QueryRow(ctx, `
		SELECT id, interval_id, timeframe_days, payload, node_count, edge_count, build_metadata, built_at
		FROM frames WHERE interval_id = $1 AND timeframe_days = $2`, intervalID, timeframeDays,
	).Scan(&f.ID, &f.IntervalID, &f.TimeframeDays, &f.Payload, &f.NodeCount, &f.EdgeCount, &f.BuildMetadata, &f.BuiltAt)
	return f, err
}

func (s *Store) GetLatestFrame(ctx context.Context, timeframeDays int) (models.Frame, error) {
	var f models.Frame
	err := s.db.QueryRow(ctx, `
		SELECT id, interval_id, timeframe_days, payload, node_count, edge_count, build_metadata, built_at
		FROM frames WHERE timeframe_days = $1
		ORDER BY built_at DESC LIMIT 1`, timeframeDays,
	).Scan(&f.ID, &f.IntervalID, &f.TimeframeDays, &f.Payload, &f.NodeCount, &f.EdgeCount, &f.BuildMetadata, &f.BuiltAt)
	return f, err
}

func (s *Store) ListFrames(ctx context.Context, timeframeDays, limit int) ([]models.Frame, error) {
	rows, err := s.db.Query(ctx, `
		SELECT f.id, f.interval_id, f.timeframe_days, f.node_count, f.edge_count, f.build_metadata, f.built_at
		FROM frames f WHERE f.timeframe_days = $1
		ORDER BY f.built_at DESC LIMIT $2`, timeframeDays, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Frame
	for rows.Next() {
		var f models.Frame
		if err := rows.Scan(&f.ID, &f.IntervalID, &f.TimeframeDays, &f.NodeCount, &f.EdgeCount, &f.BuildMetadata, &f.BuiltAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
