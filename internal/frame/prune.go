package frame

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

type nodeScore struct {
	ID         string
	Followers  int64
	EdgeScore  float64
	Importance float64
}

// scoreNodes computes the edge-weight-sum and log-follower components of
// importance, each independently normalized to [0,1] against the node
// set's own maximum before blending.
func scoreNodes(nodeIDs []string, followers map[string]int64, edges []edgeCandidate) []nodeScore {
	edgeSum := make(map[string]float64, len(nodeIDs))
	for _, e := range edges {
		edgeSum[e.Src] += e.Weight
		edgeSum[e.Dst] += e.Weight
	}

	rawEdge := make([]float64, len(nodeIDs))
	rawFollower := make([]float64, len(nodeIDs))
	for i, id := range nodeIDs {
		rawEdge[i] = edgeSum[id]
		rawFollower[i] = math.Log1p(float64(followers[id]))
	}

	maxEdge := 0.0
	maxFollower := 0.0
	if len(rawEdge) > 0 {
		maxEdge = floats.Max(rawEdge)
		maxFollower = floats.Max(rawFollower)
	}

	out := make([]nodeScore, len(nodeIDs))
	for i, id := range nodeIDs {
		edgeNorm := 0.0
		if maxEdge > 0 {
			edgeNorm = rawEdge[i] / maxEdge
		}
		followerNorm := 0.0
		if maxFollower > 0 {
			followerNorm = rawFollower[i] / maxFollower
		}
		out[i] = nodeScore{
			ID:         id,
			Followers:  followers[id],
			EdgeScore:  rawEdge[i],
			Importance: 0.7*edgeNorm + 0.3*followerNorm,
		}
	}
	return out
}

const (
	minFollowerFloor = 500
	maxNodes         = 2000
	maxEdgesPerNode  = 50
	maxEdgesGlobal   = 12000
)

// pruneResult is the output of the pruning pipeline: the surviving node set
// and the surviving edge set.
type pruneResult struct {
	Nodes []nodeScore
	Edges []edgeCandidate
}

// prune applies the five-step pipeline in order: a follower floor, top-N_max
// by importance, edge restriction to surviving nodes, a global per-node
// incident-edge cap, then a global edge-count cap.
func prune(nodes []nodeScore, edges []edgeCandidate) pruneResult {
	kept := make([]nodeScore, 0, len(nodes))
	for _, n := range nodes {
		if n.Followers >= minFollowerFloor {
			kept = append(kept, n)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Importance > kept[j].Importance })
	if len(kept) > maxNodes {
		kept = kept[:maxNodes]
	}

	keepSet := make(map[string]bool, len(kept))
	for _, n := range kept {
		keepSet[n.ID] = true
	}

	restricted := make([]edgeCandidate, 0, len(edges))
	for _, e := range edges {
		if keepSet[e.Src] && keepSet[e.Dst] {
			restricted = append(restricted, e)
		}
	}

	capped := capPerNodeEdges(restricted, maxEdgesPerNode)

	sort.SliceStable(capped, func(i, j int) bool { return capped[i].Weight > capped[j].Weight })
	if len(capped) > maxEdgesGlobal {
		capped = capped[:maxEdgesGlobal]
	}

	return pruneResult{Nodes: kept, Edges: capped}
}

// capPerNodeEdges greedily keeps the heaviest edges first, skipping any
// edge once either endpoint has already reached limit incident retained
// edges — this bounds every node's incident count regardless of direction.
func capPerNodeEdges(edges []edgeCandidate, limit int) []edgeCandidate {
	sorted := make([]edgeCandidate, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })

	count := make(map[string]int)
	out := make([]edgeCandidate, 0, len(edges))
	for _, e := range sorted {
		if count[e.Src] >= limit || count[e.Dst] >= limit {
			continue
		}
		out = append(out, e)
		count[e.Src]++
		if e.Dst != e.Src {
			count[e.Dst]++
		}
	}
	return out
}
