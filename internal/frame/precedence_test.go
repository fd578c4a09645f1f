package frame

import "testing"

func TestResolveRoutingPrecedence_HigherWeightBeatsRank(t *testing.T) {
	t.Parallel()

	candidates := []edgeCandidate{
		{Src: "a", Dst: "ego", Type: "mutual", Weight: 0.1},
		{Src: "a", Dst: "ego", Type: "network_growth", Weight: 0.9},
	}

	resolved := resolveRoutingPrecedence(candidates)
	if len(resolved) != 1 {
		t.Fatalf("resolved = %+v, want exactly one surviving routing edge", resolved)
	}
	if resolved[0].Type != "network_growth" {
		t.Fatalf("winner type = %q, want network_growth: higher weight wins regardless of rank", resolved[0].Type)
	}
}

func TestResolveRoutingPrecedence_TieBreaksOnRank(t *testing.T) {
	t.Parallel()

	candidates := []edgeCandidate{
		{Src: "a", Dst: "ego", Type: "cohort", Weight: 0.5},
		{Src: "a", Dst: "ego", Type: "mutual", Weight: 0.5},
	}

	resolved := resolveRoutingPrecedence(candidates)
	if len(resolved) != 1 || resolved[0].Type != "mutual" {
		t.Fatalf("resolved = %+v, want mutual to win the equal-weight tie by rank", resolved)
	}
}

func TestResolveRoutingPrecedence_SameRankKeepsHigherWeight(t *testing.T) {
	t.Parallel()

	candidates := []edgeCandidate{
		{Src: "a", Dst: "ego", Type: "cohort", Weight: 0.3},
		{Src: "a", Dst: "ego", Type: "cohort", Weight: 0.7},
	}

	resolved := resolveRoutingPrecedence(candidates)
	if len(resolved) != 1 || resolved[0].Weight != 0.7 {
		t.Fatalf("resolved = %+v, want the heavier same-rank edge to survive", resolved)
	}
}

func TestResolveRoutingPrecedence_NonRoutingPassesThroughUntouched(t *testing.T) {
	t.Parallel()

	candidates := []edgeCandidate{
		{Src: "a", Dst: "ego", Type: "mutual", Weight: 1},
		{Src: "a", Dst: "ego", Type: "direct_interaction", Weight: 5},
		{Src: "a", Dst: "ego", Type: "co_engagement", Weight: 2},
	}

	resolved := resolveRoutingPrecedence(candidates)
	if len(resolved) != 3 {
		t.Fatalf("resolved = %+v, want mutual plus both additive-evidence edges to coexist", resolved)
	}
}

func TestRoutingRank_FullOrder(t *testing.T) {
	t.Parallel()

	order := []string{"mutual", "tier_3_2", "you_follow", "followers_you", "network_growth", "cohort", "ego_follow", "fallback_ego"}
	var ranks []int
	for _, ty := range order {
		r, ok := routingRank(ty)
		if !ok {
			t.Fatalf("routingRank(%q) not recognized as a routing type", ty)
		}
		ranks = append(ranks, r)
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i] < ranks[i-1] {
			t.Fatalf("routing rank order violated at %q: ranks=%v", order[i], ranks)
		}
	}

	if _, ok := routingRank("direct_interaction"); ok {
		t.Fatalf("direct_interaction must not be classified as a routing type")
	}
}
