package frame

import "strings"

// routingRank orders the "routing" edge types from strongest to weakest
// claim on a given (src,dst) pair. Lower is stronger. direct_interaction and
// co_engagement are separate additive-evidence edges and never participate
// in this precedence — they coexist with whichever routing edge wins.
func routingRank(edgeType string) (int, bool) {
	switch {
	case edgeType == "mutual":
		return 0, true
	case strings.HasPrefix(edgeType, "tier_"):
		return 1, true
	case edgeType == "you_follow" || edgeType == "followers_you":
		return 2, true
	case edgeType == "network_growth":
		return 3, true
	case edgeType == "cohort":
		return 4, true
	case edgeType == "ego_follow":
		return 5, true
	case edgeType == "fallback_ego":
		return 6, true
	default:
		return 0, false
	}
}

// resolveRoutingPrecedence collapses multiple routing edges on the same
// (src,dst) pair down to one, keeping the heavier weight and breaking ties
// by rank. Non-routing edges (direct_interaction, co_engagement) pass
// through untouched.
func resolveRoutingPrecedence(candidates []edgeCandidate) []edgeCandidate {
	type pairKey struct{ src, dst string }
	best := make(map[pairKey]edgeCandidate)
	bestRank := make(map[pairKey]int)

	var passthrough []edgeCandidate
	for _, c := range candidates {
		rank, isRouting := routingRank(c.Type)
		if !isRouting {
			passthrough = append(passthrough, c)
			continue
		}
		k := pairKey{c.Src, c.Dst}
		cur, exists := best[k]
		if !exists {
			best[k] = c
			bestRank[k] = rank
			continue
		}
		switch {
		case c.Weight > cur.Weight:
			best[k] = c
			bestRank[k] = rank
		case c.Weight == cur.Weight && rank < bestRank[k]:
			best[k] = c
			bestRank[k] = rank
		}
	}

	out := make([]edgeCandidate, 0, len(best)+len(passthrough))
	out = append(out, passthrough...)
	for _, c := range best {
		out = append(out, c)
	}
	return out
}
