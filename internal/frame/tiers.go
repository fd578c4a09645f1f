package frame

import (
	"fmt"
	"sort"
)

type tierAccount struct {
	ID        string
	Followers int64
}

var tierBounds = []int64{100000, 50000, 10000, 5000, 2000, 0}
var tierWeights = []float64{0.9, 0.7, 0.5, 0.4, 0.3, 0.2}

// classifyTier returns the 1-indexed tier (1..6) for a follower count.
func classifyTier(followers int64) int {
	for i, bound := range tierBounds {
		if followers >= bound {
			return i + 1
		}
	}
	return 6
}

// tierRoutingEdges implements the hierarchical routing design: each non-ego
// account connects to the nearest candidate one tier above it by follower
// ratio, searching further upward through empty tiers with a x0.8 weight
// penalty per skip, falling back to a direct ego edge for tiers 1-3 with no
// reachable higher tier. Tier 1 always connects straight to the ego.
func tierRoutingEdges(egoID string, accounts []tierAccount) ([]edgeCandidate, map[string]bool) {
	byTier := make(map[int][]tierAccount)
	for _, a := range accounts {
		if a.ID == egoID {
			continue
		}
		t := classifyTier(a.Followers)
		byTier[t] = append(byTier[t], a)
	}
	for t := range byTier {
		list := byTier[t]
		sort.Slice(list, func(i, j int) bool { return list[i].Followers > list[j].Followers })
		byTier[t] = list
	}

	var out []edgeCandidate
	connected := make(map[string]bool)

	for _, a := range accounts {
		if a.ID == egoID {
			continue
		}
		t := classifyTier(a.Followers)
		if t == 1 {
			out = append(out, edgeCandidate{Src: a.ID, Dst: egoID, Type: "tier_1_ego", Weight: tierWeights[0]})
			connected[a.ID] = true
			continue
		}

		scale := 1.0
		placed := false
		for target := t - 1; target >= 1; target-- {
			candidates := byTier[target]
			if len(candidates) == 0 {
				scale *= 0.8
				continue
			}
			best := nearestByRatio(a, candidates)
			out = append(out, edgeCandidate{
				Src:    a.ID,
				Dst:    best.ID,
				Type:   fmt.Sprintf("tier_%d_%d", t, target),
				Weight: tierWeights[t-1] * scale,
			})
			connected[a.ID] = true
			placed = true
			break
		}
		if !placed && t <= 3 {
			out = append(out, edgeCandidate{Src: a.ID, Dst: egoID, Type: "fallback_ego", Weight: 0.4})
			connected[a.ID] = true
		}
	}

	return out, connected
}

// nearestByRatio finds the candidate whose follower-count ratio to a is
// smallest, searching at most the 50 highest-follower candidates of the
// target tier (already sorted descending).
func nearestByRatio(a tierAccount, candidates []tierAccount) tierAccount {
	limit := len(candidates)
	if limit > 50 {
		limit = 50
	}
	best := candidates[0]
	bestRatio := followerRatio(a.Followers, best.Followers)
	for _, c := range candidates[1:limit] {
		r := followerRatio(a.Followers, c.Followers)
		if r < bestRatio {
			bestRatio = r
			best = c
		}
	}
	return best
}

// mutualEdges gives every mutual-follow account an additional ego edge,
// regardless of tier.
func mutualEdges(egoID string, mutual map[string]bool) []edgeCandidate {
	var out []edgeCandidate
	for id := range mutual {
		if id == egoID {
			continue
		}
		out = append(out, edgeCandidate{Src: id, Dst: egoID, Type: "mutual", Weight: 1.0})
	}
	return out
}

// disconnectedEgoEdges gives every account that tier routing left
// unconnected a direct you_follow (only-following) or followers_you
// (only-follower) edge. Mutual accounts get none here; mutualEdges already
// links them to the ego.
func disconnectedEgoEdges(egoID string, accounts []tierAccount, connected map[string]bool, onlyFollowing, onlyFollower map[string]bool) []edgeCandidate {
	var out []edgeCandidate
	for _, a := range accounts {
		if a.ID == egoID || connected[a.ID] {
			continue
		}
		switch {
		case onlyFollowing[a.ID]:
			out = append(out, edgeCandidate{Src: egoID, Dst: a.ID, Type: "you_follow", Weight: 0.8})
		case onlyFollower[a.ID]:
			out = append(out, edgeCandidate{Src: a.ID, Dst: egoID, Type: "followers_you", Weight: 0.6})
		}
	}
	return out
}
