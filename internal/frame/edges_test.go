package frame

import (
	"testing"
	"time"

	"social-graph-atlas/internal/models"
)

func TestDecay_HalfLife(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := decay(ref, ref); got != 1 {
		t.Fatalf("decay at zero age = %v, want 1", got)
	}

	halfLifeAgo := ref.AddDate(0, 0, -int(recencyHalfLifeDays))
	got := decay(halfLifeAgo, ref)
	if got < 0.49 || got > 0.51 {
		t.Fatalf("decay at one half-life = %v, want ~0.5", got)
	}

	future := ref.AddDate(0, 0, 1)
	if got := decay(future, ref); got != 1 {
		t.Fatalf("decay for a future event = %v, want 1 (never reduced)", got)
	}
}

func TestDirectInteractionEdges_SumsWeightedByType(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.InteractionEvent{
		{SrcID: "u1", DstID: "ego", Type: models.InteractionReply, CreatedAt: ref},
		{SrcID: "u1", DstID: "ego", Type: models.InteractionLike, CreatedAt: ref},
		{SrcID: "u2", DstID: "ego", Type: models.InteractionRetweet, CreatedAt: ref},
	}

	edges := directInteractionEdges(events, ref)

	byPair := make(map[string]edgeCandidate)
	for _, e := range edges {
		byPair[e.Src+"->"+e.Dst] = e
	}

	u1 := byPair["u1->ego"]
	wantU1 := models.InteractionReply.BaseWeight() + models.InteractionLike.BaseWeight()
	if u1.Weight != wantU1 {
		t.Fatalf("u1->ego weight = %v, want %v", u1.Weight, wantU1)
	}

	u2 := byPair["u2->ego"]
	if u2.Weight != models.InteractionRetweet.BaseWeight() {
		t.Fatalf("u2->ego weight = %v, want %v", u2.Weight, models.InteractionRetweet.BaseWeight())
	}
}

func TestCoEngagementEdges_OneEdgePerPairPerPost(t *testing.T) {
	t.Parallel()

	engagers := []models.PostEngager{
		{PostID: "p1", AccountID: "a"},
		{PostID: "p1", AccountID: "b"},
		{PostID: "p1", AccountID: "c"},
		{PostID: "p2", AccountID: "a"},
		{PostID: "p2", AccountID: "b"},
	}

	edges := coEngagementEdges(engagers)

	byPair := make(map[string]float64)
	for _, e := range edges {
		byPair[e.Src+"-"+e.Dst] = e.Weight
	}

	if byPair["a-b"] != 2 {
		t.Fatalf("a-b weight = %v, want 2 (shared p1 and p2)", byPair["a-b"])
	}
	if byPair["a-c"] != 1 {
		t.Fatalf("a-c weight = %v, want 1 (shared p1 only)", byPair["a-c"])
	}
	if byPair["b-c"] != 1 {
		t.Fatalf("b-c weight = %v, want 1 (shared p1 only)", byPair["b-c"])
	}
}

func TestGrowthEdges_OrderedByRatioCappedAtFive(t *testing.T) {
	t.Parallel()

	newAccount := models.Account{AccountID: "new", FollowersCount: 100}
	var existing []models.Account
	for i := 0; i < 10; i++ {
		existing = append(existing, models.Account{
			AccountID:      string(rune('a' + i)),
			FollowersCount: int64(100 + i*10),
		})
	}

	edges := growthEdges([]models.Account{newAccount}, existing)

	if len(edges) > 5 {
		t.Fatalf("growthEdges returned %d edges, want at most 5", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i].Weight > edges[i-1].Weight {
			t.Fatalf("growth edges not ordered by descending score: %+v", edges)
		}
	}
}

func TestCohortEdges_CapsPeersPerNode(t *testing.T) {
	t.Parallel()

	var accounts []models.Account
	for i := 0; i < 6; i++ {
		accounts = append(accounts, models.Account{
			AccountID:      string(rune('a' + i)),
			FollowersCount: 100,
		})
	}

	edges := cohortEdges(accounts)

	peerCount := make(map[string]int)
	for _, e := range edges {
		peerCount[e.Src]++
		peerCount[e.Dst]++
	}
	for id, c := range peerCount {
		if c > 3 {
			t.Fatalf("account %q has %d cohort peers, want at most 3", id, c)
		}
	}
}
