package store

import (
	"context"
	"time"

	"social-graph-atlas/internal/models"
)

// StartRun inserts a new running Run row, freezing the config JSON and a
// trace id for the lifetime of the run.
func (s *Store) StartRun(ctx context.Context, configVersion string, configJSON []byte, traceID string) (models.Run, error) {
	run := models.Run{
		StartedAt:     time.Now().UTC(),
		Status:        models.RunRunning,
		ConfigVersion: configVersion,
		ConfigJSON:    configJSON,
		TraceID:       traceID,
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO runs (started_at, status, config_version, config_json, trace_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		run.StartedAt, run.Status, run.ConfigVersion, run.ConfigJSON, run.TraceID,
	).Scan(&run.ID)
	return run, err
}

// SetRunEgo records the resolved ego account once the collector knows it.
// Run rows are created before ego resolution so a resolution failure can
// still finish the run with a note.
func (s *Store) SetRunEgo(ctx context.Context, runID int64, egoAccountID string) error {
	_, err := s.db.Exec(ctx, `UPDATE runs SET ego_account_id = $2 WHERE id = $1`, runID, egoAccountID)
	return err
}

// FinishRun transitions a run to completed or failed, recording a note.
func (s *Store) FinishRun(ctx context.Context, runID int64, status models.RunStatus, notes string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE runs SET status = $2, finished_at = $3, notes = $4
		WHERE id = $1`,
		runID, status, time.Now().UTC(), notes,
	)
	return err
}

func (s *Store) GetRun(ctx context.Context, runID int64) (models.Run, error) {
	var r models.Run
	err := s.db.QueryRow(ctx, `
		SELECT id, started_at, finished_at, status, config_version, config_json, notes, trace_id, ego_account_id
		FROM runs WHERE id = $1`, runID,
	).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.ConfigVersion, &r.ConfigJSON, &r.Notes, &r.TraceID, &r.EgoAccountID)
	return r, err
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, started_at, finished_at, status, config_version, config_json, notes, trace_id, ego_account_id
		FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Run
	for rows.Next() {
		var r models.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.ConfigVersion, &r.ConfigJSON, &r.Notes, &r.TraceID, &r.EgoAccountID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecoverStaleRuns marks any run still "running" as failed. Called once at
// startup, before the collector accepts new work — a previous process that
// died mid-run left its Run row stuck in "running".
func (s *Store) RecoverStaleRuns(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE runs SET status = $1, finished_at = $2, notes = 'recovered at startup: stale running run'
		WHERE status = $3`,
		models.RunFailed, time.Now().UTC(), models.RunRunning,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
