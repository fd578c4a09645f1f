package frame

import "testing"

func TestScoreNodes_NormalizedAgainstOwnMax(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c"}
	followers := map[string]int64{"a": 1000, "b": 100, "c": 0}
	edges := []edgeCandidate{
		{Src: "a", Dst: "b", Weight: 10},
	}

	scores := scoreNodes(ids, followers, edges)

	byID := make(map[string]nodeScore)
	for _, s := range scores {
		byID[s.ID] = s
	}

	if byID["c"].Importance != 0 {
		t.Fatalf("isolated, zero-follower node importance = %v, want 0", byID["c"].Importance)
	}
	if byID["a"].Importance <= byID["b"].Importance {
		t.Fatalf("a (more followers and edge weight) should outscore b: a=%v b=%v", byID["a"].Importance, byID["b"].Importance)
	}
}

func TestPrune_FollowerFloorExcludesSmallAccounts(t *testing.T) {
	t.Parallel()

	nodes := []nodeScore{
		{ID: "big", Followers: 10000, Importance: 0.5},
		{ID: "small", Followers: 10, Importance: 0.9},
	}

	result := prune(nodes, nil)

	if len(result.Nodes) != 1 || result.Nodes[0].ID != "big" {
		t.Fatalf("nodes = %+v, want only 'big' to survive the follower floor", result.Nodes)
	}
}

func TestPrune_EdgesRestrictedToSurvivingNodes(t *testing.T) {
	t.Parallel()

	nodes := []nodeScore{
		{ID: "big1", Followers: 10000, Importance: 0.9},
		{ID: "big2", Followers: 10000, Importance: 0.8},
		{ID: "small", Followers: 1, Importance: 0.7},
	}
	edges := []edgeCandidate{
		{Src: "big1", Dst: "big2", Weight: 5},
		{Src: "big1", Dst: "small", Weight: 5},
	}

	result := prune(nodes, edges)

	for _, e := range result.Edges {
		if e.Src == "small" || e.Dst == "small" {
			t.Fatalf("edge touching pruned node survived: %+v", e)
		}
	}
	if len(result.Edges) != 1 {
		t.Fatalf("edges = %+v, want exactly the big1-big2 edge", result.Edges)
	}
}

func TestCapPerNodeEdges_BoundsIncidentCount(t *testing.T) {
	t.Parallel()

	var edges []edgeCandidate
	for i := 0; i < 10; i++ {
		edges = append(edges, edgeCandidate{Src: "hub", Dst: string(rune('a' + i)), Weight: float64(10 - i)})
	}

	capped := capPerNodeEdges(edges, 3)

	count := make(map[string]int)
	for _, e := range capped {
		count[e.Src]++
		count[e.Dst]++
	}
	if count["hub"] > 3 {
		t.Fatalf("hub incident count = %d, want at most 3", count["hub"])
	}
	if len(capped) != 3 {
		t.Fatalf("capped edges = %d, want 3 (heaviest kept)", len(capped))
	}
	// The three heaviest (weights 10, 9, 8) should be the survivors.
	for _, e := range capped {
		if e.Weight < 8 {
			t.Fatalf("expected only the heaviest edges retained, got weight %v", e.Weight)
		}
	}
}
