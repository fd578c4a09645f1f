package collector

import (
	"testing"

	"social-graph-atlas/internal/apperr"
	"social-graph-atlas/internal/models"
)

func set(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestComputeIntervalDiff(t *testing.T) {
	t.Parallel()

	start := set("a", "b", "c")
	end := set("b", "c", "d")

	events, err := ComputeIntervalDiff(models.KindFollowers, models.KindFollowers, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gained, lost []string
	for _, e := range events {
		switch e.Kind {
		case models.FollowNew:
			gained = append(gained, e.AccountID)
		case models.FollowLost:
			lost = append(lost, e.AccountID)
		}
	}

	if len(gained) != 1 || gained[0] != "d" {
		t.Fatalf("gained = %v, want [d]", gained)
	}
	if len(lost) != 1 || lost[0] != "a" {
		t.Fatalf("lost = %v, want [a]", lost)
	}
}

func TestComputeIntervalDiff_NoChange(t *testing.T) {
	t.Parallel()

	s := set("a", "b")
	events, err := ComputeIntervalDiff(models.KindFollowing, models.KindFollowing, s, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %v, want none", events)
	}
}

func TestComputeIntervalDiff_KindMismatch(t *testing.T) {
	t.Parallel()

	_, err := ComputeIntervalDiff(models.KindFollowers, models.KindFollowing, set("a"), set("a"))
	if err == nil {
		t.Fatal("expected error for mismatched snapshot kinds")
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindKindMismatch {
		t.Fatalf("error = %v, want apperr.KindKindMismatch", err)
	}
}
