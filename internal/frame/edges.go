package frame

import (
	"math"
	"sort"
	"time"

	"social-graph-atlas/internal/models"
)

// edgeCandidate is the common intermediate shape every edge source produces
// before precedence resolution and pruning (spec's edge aggregation step).
type edgeCandidate struct {
	Src    string
	Dst    string
	Type   string
	Weight float64
}

const recencyHalfLifeDays = 14.0

// decay is the recency half-life curve: Δdays is computed from seconds so
// sub-day differences still decay smoothly. Future events and missing
// timestamps never reduce a weight.
func decay(createdAt, ref time.Time) float64 {
	if createdAt.IsZero() || ref.IsZero() {
		return 1
	}
	deltaDays := ref.Sub(createdAt).Seconds() / 86400
	if deltaDays < 0 {
		return 1
	}
	return math.Pow(2, -deltaDays/recencyHalfLifeDays)
}

// directInteractionEdges sums same-(src,dst) interaction evidence within the
// window into one weighted edge per pair.
func directInteractionEdges(events []models.InteractionEvent, ref time.Time) []edgeCandidate {
	type key struct{ src, dst string }
	sums := make(map[key]float64)
	for _, e := range events {
		k := key{e.SrcID, e.DstID}
		sums[k] += e.Type.BaseWeight() * decay(e.CreatedAt, ref)
	}
	out := make([]edgeCandidate, 0, len(sums))
	for k, w := range sums {
		out = append(out, edgeCandidate{Src: k.src, Dst: k.dst, Type: "direct_interaction", Weight: w})
	}
	return out
}

// coEngagementEdges groups engagers by post and emits one undirected edge
// per pair of accounts that engaged the same post, normalized min(id) ->
// max(id), weight equal to the number of shared posts.
func coEngagementEdges(engagers []models.PostEngager) []edgeCandidate {
	byPost := make(map[string][]string)
	for _, e := range engagers {
		byPost[e.PostID] = append(byPost[e.PostID], e.AccountID)
	}

	type key struct{ a, b string }
	counts := make(map[key]int)
	for _, accounts := range byPost {
		seen := dedupeStrings(accounts)
		sort.Strings(seen)
		for i := 0; i < len(seen); i++ {
			for j := i + 1; j < len(seen); j++ {
				counts[key{seen[i], seen[j]}]++
			}
		}
	}

	out := make([]edgeCandidate, 0, len(counts))
	for k, c := range counts {
		out = append(out, edgeCandidate{Src: k.a, Dst: k.b, Type: "co_engagement", Weight: float64(c)})
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// egoFollowEdges emits a thin ego->account edge for every new follow in the
// interval.
func egoFollowEdges(events []models.FollowEvent, egoID string) []edgeCandidate {
	out := make([]edgeCandidate, 0, len(events))
	for _, e := range events {
		if e.Kind != models.FollowNew {
			continue
		}
		out = append(out, edgeCandidate{Src: egoID, Dst: e.AccountID, Type: "ego_follow", Weight: 0.5})
	}
	return out
}

// followerRatio is max/min of the two follower counts, min floored at 1 to
// avoid division by zero for brand-new accounts.
func followerRatio(a, b int64) float64 {
	maxF := math.Max(float64(a), float64(b))
	minF := math.Max(math.Min(float64(a), float64(b)), 1)
	return maxF / minF
}

// growthEdges connects each newly followed account to up to 5 pre-existing
// network accounts with similar follower counts.
func growthEdges(newAccounts, existing []models.Account) []edgeCandidate {
	var out []edgeCandidate
	for _, n := range newAccounts {
		type scored struct {
			account models.Account
			score   float64
		}
		var candidates []scored
		for _, e := range existing {
			if e.AccountID == n.AccountID {
				continue
			}
			ratio := followerRatio(n.FollowersCount, e.FollowersCount)
			if ratio >= 100 {
				continue
			}
			score := 1 / (1 + math.Log10(ratio+1))
			candidates = append(candidates, scored{e, score})
		}
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
		if len(candidates) > 5 {
			candidates = candidates[:5]
		}
		for _, c := range candidates {
			out = append(out, edgeCandidate{Src: c.account.AccountID, Dst: n.AccountID, Type: "network_growth", Weight: c.score})
		}
	}
	return out
}

// cohortEdges links pairs of new accounts with similar follower counts
// (ratio < 5), capped at 3 peers per node.
func cohortEdges(newAccounts []models.Account) []edgeCandidate {
	type pair struct {
		a, b   models.Account
		weight float64
	}
	var pairs []pair
	for i := 0; i < len(newAccounts); i++ {
		for j := i + 1; j < len(newAccounts); j++ {
			ratio := followerRatio(newAccounts[i].FollowersCount, newAccounts[j].FollowersCount)
			if ratio >= 5 {
				continue
			}
			pairs = append(pairs, pair{newAccounts[i], newAccounts[j], 0.5 / ratio})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].weight > pairs[j].weight })

	peerCount := make(map[string]int)
	out := make([]edgeCandidate, 0, len(pairs))
	for _, p := range pairs {
		if peerCount[p.a.AccountID] >= 3 || peerCount[p.b.AccountID] >= 3 {
			continue
		}
		out = append(out, edgeCandidate{Src: p.a.AccountID, Dst: p.b.AccountID, Type: "cohort", Weight: p.weight})
		peerCount[p.a.AccountID]++
		peerCount[p.b.AccountID]++
	}
	return out
}
