package frame

import "testing"

func TestClassifyTier_Bounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		followers int64
		wantTier  int
	}{
		{200000, 1},
		{100000, 1},
		{99999, 2},
		{50000, 2},
		{10000, 3},
		{5000, 4},
		{2000, 5},
		{0, 6},
	}
	for _, c := range cases {
		if got := classifyTier(c.followers); got != c.wantTier {
			t.Errorf("classifyTier(%d) = %d, want %d", c.followers, got, c.wantTier)
		}
	}
}

func TestTierRoutingEdges_Tier1ConnectsDirectlyToEgo(t *testing.T) {
	t.Parallel()

	accounts := []tierAccount{
		{ID: "ego", Followers: 0},
		{ID: "whale", Followers: 500000},
	}

	edges, connected := tierRoutingEdges("ego", accounts)

	if len(edges) != 1 || edges[0].Type != "tier_1_ego" || edges[0].Dst != "ego" {
		t.Fatalf("tier-1 account should connect directly to ego, got %+v", edges)
	}
	if !connected["whale"] {
		t.Fatalf("tier-1 account should be marked connected")
	}
}

func TestTierRoutingEdges_HigherTierRoutesUpward(t *testing.T) {
	t.Parallel()

	accounts := []tierAccount{
		{ID: "ego", Followers: 0},
		{ID: "mid", Followers: 3000},  // tier 5
		{ID: "big", Followers: 60000}, // tier 2
	}

	edges, connected := tierRoutingEdges("ego", accounts)

	var midEdge *edgeCandidate
	for i := range edges {
		if edges[i].Src == "mid" {
			midEdge = &edges[i]
		}
	}
	if midEdge == nil {
		t.Fatalf("expected mid to receive a routing edge, got %+v", edges)
	}
	if !connected["mid"] {
		t.Fatalf("mid should be marked connected after routing")
	}
}

func TestMutualEdges_ExcludesEgo(t *testing.T) {
	t.Parallel()

	mutual := map[string]bool{"a": true, "ego": true}
	edges := mutualEdges("ego", mutual)

	if len(edges) != 1 || edges[0].Src != "a" {
		t.Fatalf("mutualEdges = %+v, want only non-ego accounts", edges)
	}
}

func TestDisconnectedEgoEdges_SkipsAlreadyConnected(t *testing.T) {
	t.Parallel()

	accounts := []tierAccount{{ID: "a"}, {ID: "b"}}
	connected := map[string]bool{"a": true}
	onlyFollowing := map[string]bool{"a": true, "b": true}

	edges := disconnectedEgoEdges("ego", accounts, connected, onlyFollowing, nil)

	if len(edges) != 1 || edges[0].Dst != "b" {
		t.Fatalf("disconnectedEgoEdges = %+v, want only the still-unconnected account", edges)
	}
}
