package frame

import (
	"hash/fnv"
	"math"
	"math/rand"
)

type position struct{ X, Y, Z float64 }

const (
	layoutIterations   = 50
	initialTemperature = 10.0
	coolingRate        = 0.95
)

// seedPositions assigns an initial position to every node: reuse the
// previous interval's position when available, otherwise seed near the
// strongest-weighted already-placed neighbor with jitter, and fall back to
// a per-community ring placement for anything left over (isolated nodes or
// neighbor cycles that never resolve).
func seedPositions(nodeIDs []string, edges []edgeCandidate, community map[string]int, previous map[string]position, egoID string, rng *rand.Rand) map[string]position {
	out := make(map[string]position, len(nodeIDs))
	placed := make(map[string]bool, len(nodeIDs))

	for _, id := range nodeIDs {
		if id == egoID {
			out[id] = position{0, 0, 0}
			placed[id] = true
		} else if p, ok := previous[id]; ok {
			out[id] = p
			placed[id] = true
		}
	}

	strongestNeighbor, _ := strongestNeighbors(edges)

	for {
		progress := false
		for _, id := range nodeIDs {
			if placed[id] {
				continue
			}
			neighbor, ok := strongestNeighbor[id]
			if !ok || !placed[neighbor] {
				continue
			}
			np := out[neighbor]
			out[id] = position{np.X + jitter(rng), np.Y + jitter(rng), np.Z + jitter(rng)}
			placed[id] = true
			progress = true
		}
		if !progress {
			break
		}
	}

	communityCount := countCommunities(community)
	for _, id := range nodeIDs {
		if placed[id] {
			continue
		}
		c := community[id]
		angle := float64(c) * 2 * math.Pi / float64(communityCount)
		radius := 50 + float64(hashMod(id, 30))
		out[id] = position{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
			Z: -10 + 20*rng.Float64(),
		}
		placed[id] = true
	}

	return out
}

func strongestNeighbors(edges []edgeCandidate) (map[string]string, map[string]float64) {
	neighbor := make(map[string]string)
	weight := make(map[string]float64)
	for _, e := range edges {
		if e.Weight > weight[e.Src] {
			weight[e.Src] = e.Weight
			neighbor[e.Src] = e.Dst
		}
		if e.Weight > weight[e.Dst] {
			weight[e.Dst] = e.Weight
			neighbor[e.Dst] = e.Src
		}
	}
	return neighbor, weight
}

func countCommunities(community map[string]int) int {
	max := 0
	for _, c := range community {
		if c+1 > max {
			max = c + 1
		}
	}
	if max == 0 {
		max = 1
	}
	return max
}

func jitter(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * 2
}

func hashMod(id string, mod uint32) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32() % mod
}

// relax runs the bounded force-directed layout relaxation: every pair
// repels with F_r = 1000/d^2, every edge attracts its endpoints with
// F_a = 0.01 * d * weight, movement is clamped to a temperature that cools
// 5% per iteration, and the ego is re-pinned to the origin after every
// step.
func relax(nodeIDs []string, edges []edgeCandidate, positions map[string]position, egoID string) map[string]position {
	pos := make(map[string]position, len(nodeIDs))
	for _, id := range nodeIDs {
		if p, ok := positions[id]; ok {
			pos[id] = p
		}
	}

	neighborWeights := make(map[string]map[string]float64, len(nodeIDs))
	for _, id := range nodeIDs {
		neighborWeights[id] = make(map[string]float64)
	}
	for _, e := range edges {
		if _, ok := pos[e.Src]; !ok {
			continue
		}
		if _, ok := pos[e.Dst]; !ok {
			continue
		}
		neighborWeights[e.Src][e.Dst] += e.Weight
		neighborWeights[e.Dst][e.Src] += e.Weight
	}

	temperature := initialTemperature
	for iter := 0; iter < layoutIterations; iter++ {
		disp := make(map[string]position, len(nodeIDs))

		for i, a := range nodeIDs {
			for _, b := range nodeIDs[i+1:] {
				pa, pb := pos[a], pos[b]
				dx, dy, dz := pa.X-pb.X, pa.Y-pb.Y, pa.Z-pb.Z
				d2 := dx*dx + dy*dy + dz*dz
				if d2 < 0.01 {
					d2 = 0.01
				}
				d := math.Sqrt(d2)
				force := 1000 / d2
				ux, uy, uz := dx/d, dy/d, dz/d
				da, db := disp[a], disp[b]
				disp[a] = position{da.X + ux*force, da.Y + uy*force, da.Z + uz*force}
				disp[b] = position{db.X - ux*force, db.Y - uy*force, db.Z - uz*force}
			}
		}

		for a, neighbors := range neighborWeights {
			pa := pos[a]
			for b, w := range neighbors {
				pb := pos[b]
				dx, dy, dz := pb.X-pa.X, pb.Y-pa.Y, pb.Z-pa.Z
				d := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if d < 0.01 {
					continue
				}
				force := 0.01 * d * w
				ux, uy, uz := dx/d, dy/d, dz/d
				da := disp[a]
				disp[a] = position{da.X + ux*force, da.Y + uy*force, da.Z + uz*force}
			}
		}

		for _, id := range nodeIDs {
			d := disp[id]
			mag := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
			if mag > temperature && mag > 0 {
				scale := temperature / mag
				d = position{d.X * scale, d.Y * scale, d.Z * scale}
			}
			p := pos[id]
			pos[id] = position{p.X + d.X, p.Y + d.Y, p.Z + d.Z}
		}

		pos[egoID] = position{0, 0, 0}
		temperature *= coolingRate
	}

	return pos
}
