package frame

import "testing"

func TestLabelPropagation_TwoCliques(t *testing.T) {
	t.Parallel()

	nodes := []string{"ego", "a1", "a2", "a3", "b1", "b2", "b3"}
	edges := []edgeCandidate{
		{Src: "ego", Dst: "a1", Weight: 1},
		{Src: "a1", Dst: "a2", Weight: 5},
		{Src: "a2", Dst: "a3", Weight: 5},
		{Src: "a1", Dst: "a3", Weight: 5},
		{Src: "b1", Dst: "b2", Weight: 5},
		{Src: "b2", Dst: "b3", Weight: 5},
		{Src: "b1", Dst: "b3", Weight: 5},
	}

	communities := labelPropagation(nodes, edges, "ego")

	if communities["ego"] != 0 {
		t.Fatalf("ego community = %d, want 0 (pinned)", communities["ego"])
	}
	if communities["a1"] != communities["a2"] || communities["a2"] != communities["a3"] {
		t.Fatalf("clique a not unified: %v", communities)
	}
	if communities["b1"] != communities["b2"] || communities["b2"] != communities["b3"] {
		t.Fatalf("clique b not unified: %v", communities)
	}
	if communities["a1"] == communities["b1"] {
		t.Fatalf("distinct cliques merged into one community: %v", communities)
	}

	seen := make(map[int]bool)
	max := -1
	for _, c := range communities {
		seen[c] = true
		if c > max {
			max = c
		}
	}
	for i := 0; i <= max; i++ {
		if !seen[i] {
			t.Fatalf("community ids not densely renumbered 0..K: missing %d in %v", i, communities)
		}
	}
}

func TestLabelPropagation_IsolatedNodesGetOwnCommunity(t *testing.T) {
	t.Parallel()

	nodes := []string{"ego", "solo1", "solo2"}
	communities := labelPropagation(nodes, nil, "ego")

	if communities["ego"] != 0 {
		t.Fatalf("ego community = %d, want 0", communities["ego"])
	}
	if communities["solo1"] == communities["solo2"] {
		t.Fatalf("two isolated nodes should not collapse into the same community: %v", communities)
	}
}

func TestLabelPropagation_Deterministic(t *testing.T) {
	t.Parallel()

	nodes := []string{"x", "a", "z", "ego"}
	edges := []edgeCandidate{
		{Src: "x", Dst: "a", Weight: 1},
		{Src: "x", Dst: "z", Weight: 1},
		{Src: "ego", Dst: "x", Weight: 2},
	}

	first := labelPropagation(nodes, edges, "ego")
	second := labelPropagation(nodes, edges, "ego")

	for _, id := range nodes {
		if first[id] != second[id] {
			t.Fatalf("non-deterministic community for %q: %d vs %d", id, first[id], second[id])
		}
	}
}
