package frame

import "sort"

// labelPropagation runs weighted label propagation over the undirected
// projection of the retained edges: each node starts in its own community,
// at most 10 passes reassign every node to the community with the greatest
// sum of incident edge weight, and the pass stops early once nothing
// changes. Communities are renumbered 0..K by order of first appearance
// with the ego pinned to community 0.
func labelPropagation(nodeIDs []string, edges []edgeCandidate, egoID string) map[string]int {
	adjacency := make(map[string]map[string]float64, len(nodeIDs))
	for _, id := range nodeIDs {
		adjacency[id] = make(map[string]float64)
	}
	for _, e := range edges {
		if e.Src == e.Dst {
			continue
		}
		if _, ok := adjacency[e.Src]; !ok {
			continue
		}
		if _, ok := adjacency[e.Dst]; !ok {
			continue
		}
		adjacency[e.Src][e.Dst] += e.Weight
		adjacency[e.Dst][e.Src] += e.Weight
	}

	label := make(map[string]string, len(nodeIDs))
	for _, id := range nodeIDs {
		label[id] = id
	}

	order := make([]string, len(nodeIDs))
	copy(order, nodeIDs)
	sort.Strings(order)

	for iter := 0; iter < 10; iter++ {
		changed := false
		for _, id := range order {
			neighbors := adjacency[id]
			if len(neighbors) == 0 {
				continue
			}
			scores := make(map[string]float64)
			for n, w := range neighbors {
				scores[label[n]] += w
			}
			bestScore := -1.0
			var tied []string
			for l, s := range scores {
				switch {
				case s > bestScore:
					bestScore = s
					tied = []string{l}
				case s == bestScore:
					tied = append(tied, l)
				}
			}
			if len(tied) == 0 {
				continue
			}
			sort.Strings(tied)
			if tied[0] != label[id] {
				label[id] = tied[0]
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	renumbered := make(map[string]int)
	next := 0
	if egoLabel, ok := label[egoID]; ok {
		renumbered[egoLabel] = 0
		next = 1
	}
	for _, id := range nodeIDs {
		if _, ok := renumbered[label[id]]; !ok {
			renumbered[label[id]] = next
			next++
		}
	}

	out := make(map[string]int, len(nodeIDs))
	for _, id := range nodeIDs {
		out[id] = renumbered[label[id]]
	}
	return out
}
