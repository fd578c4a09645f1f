package frame

import "testing"

func TestInterpolate_MovesSharedNodesLinearly(t *testing.T) {
	t.Parallel()

	fa := Payload{
		EgoID: "ego",
		Nodes: []NodeRecord{
			{ID: "ego", X: 0, Y: 0, Z: 0},
			{ID: "shared", X: 0, Y: 0, Z: 0},
		},
		Edges: []EdgeRecord{{Source: "ego", Target: "shared", Type: "mutual", Weight: 1}},
	}
	fb := Payload{
		EgoID: "ego",
		Nodes: []NodeRecord{
			{ID: "ego", X: 0, Y: 0, Z: 0},
			{ID: "shared", X: 10, Y: 20, Z: 0},
		},
		Edges: []EdgeRecord{{Source: "ego", Target: "shared", Type: "mutual", Weight: 2}},
	}

	mid := Interpolate(fa, fb, 0.5)

	var shared NodeRecord
	for _, n := range mid.Nodes {
		if n.ID == "shared" {
			shared = n
		}
	}
	if shared.X != 5 || shared.Y != 10 {
		t.Fatalf("midpoint position = (%v, %v), want (5, 10)", shared.X, shared.Y)
	}
}

func TestInterpolate_OnlyInAFreezesInPlace(t *testing.T) {
	t.Parallel()

	fa := Payload{Nodes: []NodeRecord{{ID: "leaving", X: 3, Y: 4, Z: 0}}}
	fb := Payload{Nodes: []NodeRecord{}}

	mid := Interpolate(fa, fb, 0.9)

	if len(mid.Nodes) != 1 || mid.Nodes[0].X != 3 || mid.Nodes[0].Y != 4 {
		t.Fatalf("node only in A should freeze at its original position, got %+v", mid.Nodes)
	}
}

func TestInterpolate_OnlyInBAppearsAtTarget(t *testing.T) {
	t.Parallel()

	fa := Payload{Nodes: []NodeRecord{}}
	fb := Payload{Nodes: []NodeRecord{{ID: "arriving", X: 7, Y: 8, Z: 0}}}

	mid := Interpolate(fa, fb, 0.1)

	if len(mid.Nodes) != 1 || mid.Nodes[0].X != 7 || mid.Nodes[0].Y != 8 {
		t.Fatalf("node only in B should appear at its target position, got %+v", mid.Nodes)
	}
}

func TestInterpolate_EdgeSetTakenFromNearerEndpoint(t *testing.T) {
	t.Parallel()

	fa := Payload{Edges: []EdgeRecord{{Source: "a", Target: "b", Type: "x"}}}
	fb := Payload{Edges: []EdgeRecord{{Source: "c", Target: "d", Type: "y"}}}

	early := Interpolate(fa, fb, 0.1)
	if len(early.Edges) != 1 || early.Edges[0].Type != "x" {
		t.Fatalf("progress<0.5 should take edges from fa, got %+v", early.Edges)
	}

	late := Interpolate(fa, fb, 0.9)
	if len(late.Edges) != 1 || late.Edges[0].Type != "y" {
		t.Fatalf("progress>=0.5 should take edges from fb, got %+v", late.Edges)
	}
}

func TestInterpolate_ClampsProgress(t *testing.T) {
	t.Parallel()

	fa := Payload{Nodes: []NodeRecord{{ID: "n", X: 0}}}
	fb := Payload{Nodes: []NodeRecord{{ID: "n", X: 100}}}

	below := Interpolate(fa, fb, -5)
	if below.Nodes[0].X != 0 {
		t.Fatalf("progress below 0 should clamp to 0, got x=%v", below.Nodes[0].X)
	}

	above := Interpolate(fa, fb, 5)
	if above.Nodes[0].X != 100 {
		t.Fatalf("progress above 1 should clamp to 1, got x=%v", above.Nodes[0].X)
	}
}
