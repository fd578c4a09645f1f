// Package collector orchestrates paginated snapshot collection and the
// pure interval-diff step that turns two snapshots into FollowEvent rows.
package collector

import (
	"sort"

	"social-graph-atlas/internal/apperr"
	"social-graph-atlas/internal/models"
)

// ComputeIntervalDiff is the pure, deterministic set-difference at the heart
// of spec §4.3: new = end \ start, lost = start \ end. Both snapshots must
// be the same SnapshotKind or the comparison is meaningless.
func ComputeIntervalDiff(startKind, endKind models.SnapshotKind, start, end map[string]bool) ([]models.FollowEvent, error) {
	if startKind != endKind {
		return nil, apperr.KindMismatch("cannot diff a " + string(startKind) + " snapshot against a " + string(endKind) + " snapshot")
	}

	var newIDs, lostIDs []string
	for id := range end {
		if !start[id] {
			newIDs = append(newIDs, id)
		}
	}
	for id := range start {
		if !end[id] {
			lostIDs = append(lostIDs, id)
		}
	}
	// Deterministic ordering: map iteration order is random in Go.
	sort.Strings(newIDs)
	sort.Strings(lostIDs)

	events := make([]models.FollowEvent, 0, len(newIDs)+len(lostIDs))
	for _, id := range newIDs {
		events = append(events, models.FollowEvent{AccountID: id, Kind: models.FollowNew})
	}
	for _, id := range lostIDs {
		events = append(events, models.FollowEvent{AccountID: id, Kind: models.FollowLost})
	}
	return events, nil
}
