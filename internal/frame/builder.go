// Package frame computes the derived-layer graph (nodes, edges,
// communities, positions) for one interval and serializes it into the
// stable frame payload consumed by the timeline API.
package frame

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"social-graph-atlas/internal/apperr"
	"social-graph-atlas/internal/models"
	"social-graph-atlas/internal/store"
)

// Builder computes and persists frames from normalized store state. It
// never mutates normalized tables; every write lands in the derived layer
// through a single transactional replace.
type Builder struct {
	st *store.Store
}

func New(st *store.Store) *Builder {
	return &Builder{st: st}
}

// Build computes the frame for (interval, timeframeDays, egoID) and
// persists it, replacing any prior derived state for that interval. The
// write is all-or-nothing.
func (b *Builder) Build(ctx context.Context, intervalID int64, timeframeDays int, egoID string) (models.Frame, error) {
	interval, err := b.st.GetInterval(ctx, intervalID)
	if err != nil {
		return models.Frame{}, apperr.NotFound("interval not found")
	}
	ref := interval.EndAt

	windowStart := time.Time{}
	if timeframeDays > 0 {
		windowStart = ref.AddDate(0, 0, -timeframeDays)
	}

	// The two membership sets are independent reads; fetch them concurrently.
	// The two edge-source windows are fetched the same way further down.
	var followerIDs, followingIDs map[string]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followerIDs, err = b.st.CumulativeFollowerIDs(gctx, ref)
		return err
	})
	g.Go(func() error {
		var err error
		followingIDs, err = b.st.CumulativeFollowingIDs(gctx, ref)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Frame{}, apperr.Internal("load membership sets", err)
	}

	nodeSet := make(map[string]bool, len(followerIDs)+len(followingIDs)+1)
	for id := range followerIDs {
		nodeSet[id] = true
	}
	for id := range followingIDs {
		nodeSet[id] = true
	}
	nodeSet[egoID] = true

	nodeIDs := make([]string, 0, len(nodeSet))
	for id := range nodeSet {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	accounts, err := b.st.GetAccounts(ctx, nodeIDs)
	if err != nil {
		return models.Frame{}, apperr.Internal("load accounts", err)
	}

	newEvents, err := b.st.ListFollowEvents(ctx, intervalID, models.FollowNew)
	if err != nil {
		return models.Frame{}, apperr.Internal("load follow events", err)
	}
	isNew := make(map[string]bool, len(newEvents))
	for _, e := range newEvents {
		isNew[e.AccountID] = true
	}

	mutual := make(map[string]bool)
	onlyFollower := make(map[string]bool)
	onlyFollowing := make(map[string]bool)
	for id := range followerIDs {
		if followingIDs[id] {
			mutual[id] = true
		} else {
			onlyFollower[id] = true
		}
	}
	for id := range followingIDs {
		if !followerIDs[id] {
			onlyFollowing[id] = true
		}
	}

	var interactions []models.InteractionEvent
	var engagers []models.PostEngager
	g2, g2ctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		var err error
		interactions, err = b.st.ListInteractionEventsInWindow(g2ctx, windowStart, ref)
		return err
	})
	g2.Go(func() error {
		var err error
		engagers, err = b.st.ListPostEngagersInWindow(g2ctx, windowStart, ref)
		return err
	})
	if err := g2.Wait(); err != nil {
		return models.Frame{}, apperr.Internal("load edge-source windows", err)
	}

	var newAccounts, existingAccounts []models.Account
	for _, id := range nodeIDs {
		if id == egoID {
			continue
		}
		a := accounts[id]
		if isNew[id] {
			newAccounts = append(newAccounts, a)
		} else {
			existingAccounts = append(existingAccounts, a)
		}
	}

	tierAccounts := make([]tierAccount, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		tierAccounts = append(tierAccounts, tierAccount{ID: id, Followers: accounts[id].FollowersCount})
	}

	var candidates []edgeCandidate
	candidates = append(candidates, directInteractionEdges(interactions, ref)...)
	candidates = append(candidates, coEngagementEdges(engagers)...)
	candidates = append(candidates, egoFollowEdges(newEvents, egoID)...)
	candidates = append(candidates, growthEdges(newAccounts, existingAccounts)...)
	candidates = append(candidates, cohortEdges(newAccounts)...)

	tierEdges, connected := tierRoutingEdges(egoID, tierAccounts)
	candidates = append(candidates, tierEdges...)
	candidates = append(candidates, mutualEdges(egoID, mutual)...)
	candidates = append(candidates, disconnectedEgoEdges(egoID, tierAccounts, connected, onlyFollowing, onlyFollower)...)

	candidates = resolveRoutingPrecedence(candidates)

	followers := make(map[string]int64, len(nodeIDs))
	for _, id := range nodeIDs {
		followers[id] = accounts[id].FollowersCount
	}
	scored := scoreNodes(nodeIDs, followers, candidates)

	pruned := prune(scored, candidates)

	prunedIDs := make([]string, len(pruned.Nodes))
	importanceByID := make(map[string]float64, len(pruned.Nodes))
	for i, n := range pruned.Nodes {
		prunedIDs[i] = n.ID
		importanceByID[n.ID] = n.Importance
	}
	sort.Strings(prunedIDs)

	communities := labelPropagation(prunedIDs, pruned.Edges, egoID)

	previousPositions := b.seedSource(ctx, interval)

	seed := intervalID*1000003 + int64(timeframeDays)
	rng := rand.New(rand.NewSource(seed))

	initial := seedPositions(prunedIDs, pruned.Edges, communities, previousPositions, egoID, rng)
	final := relax(prunedIDs, pruned.Edges, initial, egoID)

	nodeRecords := make([]NodeRecord, 0, len(prunedIDs))
	for _, id := range prunedIDs {
		a := accounts[id]
		p := final[id]
		nodeRecords = append(nodeRecords, NodeRecord{
			ID: id, Handle: a.Handle, Name: a.Name, Avatar: a.AvatarURL,
			Followers: a.FollowersCount, Importance: importanceByID[id],
			Community: communities[id], X: p.X, Y: p.Y, Z: p.Z,
			IsNew: isNew[id], IsEgo: id == egoID,
		})
	}
	sort.SliceStable(nodeRecords, func(i, j int) bool { return nodeRecords[i].Importance > nodeRecords[j].Importance })

	edgeRecords := make([]EdgeRecord, 0, len(pruned.Edges))
	for _, e := range pruned.Edges {
		edgeRecords = append(edgeRecords, EdgeRecord{Source: e.Src, Target: e.Dst, Type: e.Type, Weight: e.Weight})
	}
	sort.SliceStable(edgeRecords, func(i, j int) bool {
		if edgeRecords[i].Source != edgeRecords[j].Source {
			return edgeRecords[i].Source < edgeRecords[j].Source
		}
		return edgeRecords[i].Target < edgeRecords[j].Target
	})

	communitySet := make(map[int]bool)
	for _, c := range communities {
		communitySet[c] = true
	}
	communityList := make([]int, 0, len(communitySet))
	for c := range communitySet {
		communityList = append(communityList, c)
	}
	sort.Ints(communityList)

	payload := Payload{
		IntervalID: intervalID, TimeframeDays: timeframeDays, ReferenceTime: ref, EgoID: egoID,
		Nodes: nodeRecords, Edges: edgeRecords, Communities: communityList,
		Stats: Stats{
			NodeCount: len(nodeRecords), EdgeCount: len(edgeRecords),
			CommunityCount: len(communityList), NewFollowers: interval.NewCount,
		},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return models.Frame{}, apperr.Internal("marshal frame payload", err)
	}
	buildMeta, err := json.Marshal(map[string]any{
		"candidateEdges": len(candidates),
		"candidateNodes": len(nodeIDs),
	})
	if err != nil {
		return models.Frame{}, apperr.Internal("marshal build metadata", err)
	}

	positions := make([]models.Position, 0, len(prunedIDs))
	communityRows := make([]models.Community, 0, len(prunedIDs))
	for _, id := range prunedIDs {
		p := final[id]
		positions = append(positions, models.Position{IntervalID: intervalID, AccountID: id, X: p.X, Y: p.Y, Z: p.Z})
		communityRows = append(communityRows, models.Community{IntervalID: intervalID, AccountID: id, CommunityID: communities[id], Confidence: 1})
	}
	edgeRows := make([]models.Edge, 0, len(pruned.Edges))
	for _, e := range pruned.Edges {
		edgeRows = append(edgeRows, models.Edge{IntervalID: intervalID, SrcID: e.Src, DstID: e.Dst, Type: e.Type, Weight: e.Weight})
	}

	frame := models.Frame{
		IntervalID: intervalID, TimeframeDays: timeframeDays, Payload: payloadJSON,
		NodeCount: len(nodeRecords), EdgeCount: len(edgeRecords), BuildMetadata: buildMeta,
	}

	if err := b.st.ReplaceIntervalDerived(ctx, intervalID, edgeRows, communityRows, positions, frame); err != nil {
		return models.Frame{}, apperr.Internal("persist frame", err)
	}

	return b.st.GetFrame(ctx, intervalID, timeframeDays)
}

// seedSource resolves the previous interval's positions for layout
// seeding, best-effort: a missing prior interval just means every node
// seeds fresh.
func (b *Builder) seedSource(ctx context.Context, interval models.Interval) map[string]position {
	prior, err := b.st.ListIntervalsBefore(ctx, interval.StartAt, 1)
	if err != nil || len(prior) == 0 {
		return nil
	}
	positions, err := b.st.GetPositions(ctx, prior[0].ID)
	if err != nil {
		return nil
	}
	out := make(map[string]position, len(positions))
	for id, p := range positions {
		out[id] = position{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}
