package frame

// Interpolate produces a synthetic in-between frame for two frames Fa and Fb
// at progress p (clamped to [0,1]): nodes present in both frames move along
// a straight line between their two positions, nodes only in Fa freeze in
// place (fading out), nodes only in Fb appear at their target position. The
// edge set is taken from whichever endpoint frame p is closer to. This is a
// pure function over the two payloads; it touches no store state.
func Interpolate(fa, fb Payload, p float64) Payload {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	byID := make(map[string]NodeRecord, len(fa.Nodes)+len(fb.Nodes))
	order := make([]string, 0, len(fa.Nodes)+len(fb.Nodes))

	inA := make(map[string]NodeRecord, len(fa.Nodes))
	for _, n := range fa.Nodes {
		inA[n.ID] = n
	}
	inB := make(map[string]NodeRecord, len(fb.Nodes))
	for _, n := range fb.Nodes {
		inB[n.ID] = n
	}

	for _, n := range fa.Nodes {
		if _, ok := byID[n.ID]; ok {
			continue
		}
		order = append(order, n.ID)
		if b, ok := inB[n.ID]; ok {
			merged := b
			merged.X = n.X + (b.X-n.X)*p
			merged.Y = n.Y + (b.Y-n.Y)*p
			merged.Z = n.Z + (b.Z-n.Z)*p
			byID[n.ID] = merged
		} else {
			byID[n.ID] = n
		}
	}
	for _, n := range fb.Nodes {
		if _, ok := byID[n.ID]; ok {
			continue
		}
		order = append(order, n.ID)
		byID[n.ID] = n
	}

	nodes := make([]NodeRecord, 0, len(order))
	for _, id := range order {
		nodes = append(nodes, byID[id])
	}

	var edges []EdgeRecord
	var communities []int
	egoID := fb.EgoID
	intervalID := fb.IntervalID
	timeframe := fb.TimeframeDays
	ref := fb.ReferenceTime
	if p < 0.5 {
		edges = fa.Edges
		communities = fa.Communities
		egoID = fa.EgoID
		intervalID = fa.IntervalID
		timeframe = fa.TimeframeDays
		ref = fa.ReferenceTime
	} else {
		edges = fb.Edges
		communities = fb.Communities
	}

	newFollowers := 0
	for _, n := range nodes {
		if n.IsNew {
			newFollowers++
		}
	}

	return Payload{
		IntervalID:    intervalID,
		TimeframeDays: timeframe,
		ReferenceTime: ref,
		EgoID:         egoID,
		Nodes:         nodes,
		Edges:         edges,
		Communities:   communities,
		Stats: Stats{
			NodeCount:      len(nodes),
			EdgeCount:      len(edges),
			CommunityCount: len(communities),
			NewFollowers:   newFollowers,
		},
	}
}
