// Package attribution implements the post-attribution heuristic: for a
// given post, which accounts plausibly discovered the ego because of it,
// and with what confidence.
package attribution

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"social-graph-atlas/internal/apperr"
	"social-graph-atlas/internal/config"
	"social-graph-atlas/internal/models"
	"social-graph-atlas/internal/store"
)

// Confidence is the three-tier classification a post's attributed
// followers fall into.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// AttributedAccount is one row of the attribution payload.
type AttributedAccount struct {
	AccountID  string     `json:"accountId"`
	Confidence Confidence `json:"confidence"`
	Community  *int       `json:"community,omitempty"`
}

// Payload is the persisted shape of a post attribution.
type Payload struct {
	PostID        string              `json:"postId"`
	IntervalID    *int64              `json:"intervalId,omitempty"`
	TimeframeDays int                 `json:"timeframeDays"`
	Accounts      []AttributedAccount `json:"accounts"`
	FollowerDelta int                 `json:"followerDelta"`
	Communities   []int               `json:"communities"`
	Evidence      []string            `json:"evidence"`
}

const intervalLookbackLimit = 200

// Attributor computes and persists post attributions from normalized and
// derived store state.
type Attributor struct {
	st  *store.Store
	cfg config.Settings
}

func New(st *store.Store, cfg config.Settings) *Attributor {
	return &Attributor{st: st, cfg: cfg}
}

// Attribute builds (or returns the cached) attribution for postID at
// timeframeDays. rebuild=false leaves an existing row untouched;
// rebuild=true deletes then recomputes.
func (a *Attributor) Attribute(ctx context.Context, postID string, timeframeDays int, rebuild bool) (models.PostAttribution, error) {
	if !rebuild {
		if existing, err := a.st.GetPostAttribution(ctx, postID, timeframeDays); err == nil {
			return existing, nil
		}
	} else {
		if err := a.st.DeletePostAttribution(ctx, postID, timeframeDays); err != nil {
			return models.PostAttribution{}, apperr.Internal("delete existing attribution", err)
		}
	}

	post, err := a.st.GetPost(ctx, postID)
	if err != nil {
		return models.PostAttribution{}, apperr.NotFound("post not found")
	}

	ownInterval, err := a.resolveInterval(ctx, post.CreatedAt)
	if err != nil {
		return models.PostAttribution{}, err
	}

	lookbackEnd := post.CreatedAt.AddDate(0, 0, a.cfg.AttributionLookback)
	lookbackIntervals, err := a.intervalsInRange(ctx, post.CreatedAt, lookbackEnd, ownInterval)
	if err != nil {
		return models.PostAttribution{}, err
	}

	newFollowers := make(map[string]bool)
	sameIntervalNew := make(map[string]bool)
	for _, iv := range lookbackIntervals {
		events, err := a.st.ListFollowEvents(ctx, iv.ID, models.FollowNew)
		if err != nil {
			return models.PostAttribution{}, apperr.Internal("load follow events", err)
		}
		for _, e := range events {
			newFollowers[e.AccountID] = true
			if ownInterval != nil && iv.ID == ownInterval.ID {
				sameIntervalNew[e.AccountID] = true
			}
		}
	}

	engagers := make(map[string]bool)
	engagerRows, err := a.st.ListPostEngagers(ctx, postID)
	if err != nil {
		return models.PostAttribution{}, apperr.Internal("load post engagers", err)
	}
	for _, e := range engagerRows {
		engagers[e.AccountID] = true
	}
	interactions, err := a.st.ListInteractionEventsForPost(ctx, postID)
	if err != nil {
		return models.PostAttribution{}, apperr.Internal("load interaction events", err)
	}
	for _, e := range interactions {
		engagers[e.SrcID] = true
	}

	var communities map[string]models.Community
	if ownInterval != nil {
		communities, err = a.st.GetCommunities(ctx, ownInterval.ID)
		if err != nil {
			return models.PostAttribution{}, apperr.Internal("load communities", err)
		}
	}

	var accounts []AttributedAccount
	communitySet := make(map[int]bool)
	for id := range newFollowers {
		var conf Confidence
		switch {
		case engagers[id]:
			conf = ConfidenceHigh
		case sameIntervalNew[id]:
			conf = ConfidenceMedium
		default:
			conf = ConfidenceLow
		}

		var communityPtr *int
		if c, ok := communities[id]; ok {
			cid := c.CommunityID
			communityPtr = &cid
			communitySet[cid] = true
		}

		accounts = append(accounts, AttributedAccount{
			AccountID: id, Confidence: conf, Community: communityPtr,
		})
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })

	followerDelta := 0
	for _, acc := range accounts {
		if acc.Confidence == ConfidenceMedium {
			followerDelta++
		}
	}

	communityList := make([]int, 0, len(communitySet))
	for c := range communitySet {
		communityList = append(communityList, c)
	}
	sort.Ints(communityList)

	var intervalID *int64
	if ownInterval != nil {
		id := ownInterval.ID
		intervalID = &id
	}

	payload := Payload{
		PostID: postID, IntervalID: intervalID, TimeframeDays: timeframeDays,
		Accounts: accounts, FollowerDelta: followerDelta, Communities: communityList,
		Evidence: buildEvidence(len(engagers) > 0, ownInterval != nil, len(lookbackIntervals) > 1),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return models.PostAttribution{}, apperr.Internal("marshal attribution payload", err)
	}

	return a.st.UpsertPostAttribution(ctx, models.PostAttribution{
		PostID: postID, IntervalID: intervalID, TimeframeDays: timeframeDays,
		CreatedAt: post.CreatedAt, Payload: payloadJSON,
	})
}

// resolveInterval finds the interval containing createdAt among the last 200
// intervals, falling back to the one among them whose end is nearest to it.
func (a *Attributor) resolveInterval(ctx context.Context, createdAt time.Time) (*models.Interval, error) {
	candidates, err := a.st.ListIntervals(ctx, intervalLookbackLimit)
	if err != nil {
		return nil, apperr.Internal("load intervals", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for i := range candidates {
		iv := candidates[i]
		if !createdAt.Before(iv.StartAt) && !createdAt.After(iv.EndAt) {
			return &iv, nil
		}
	}

	best := candidates[0]
	bestDelta := absDuration(best.EndAt.Sub(createdAt))
	for _, iv := range candidates[1:] {
		d := absDuration(iv.EndAt.Sub(createdAt))
		if d < bestDelta {
			bestDelta = d
			best = iv
		}
	}
	return &best, nil
}

// buildEvidence assembles the payload-level evidence list exactly as
// post_attribution.py does: each condition appends its own sentence,
// falling back to a single generic sentence when none apply.
func buildEvidence(hasEngagers, hasOwnInterval, spansMultipleIntervals bool) []string {
	var evidence []string
	if hasEngagers {
		evidence = append(evidence, "Direct engagement within attribution window")
	}
	if hasOwnInterval {
		evidence = append(evidence, "New followers in same interval as post")
	}
	if spansMultipleIntervals {
		evidence = append(evidence, "Followed within lookback window")
	}
	if len(evidence) == 0 {
		evidence = append(evidence, "Interval-based correlation")
	}
	return evidence
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// intervalsInRange returns every interval ending within [start, end], plus
// ownInterval if it falls outside that window.
func (a *Attributor) intervalsInRange(ctx context.Context, start, end time.Time, ownInterval *models.Interval) ([]models.Interval, error) {
	all, err := a.st.ListIntervalsBefore(ctx, end, intervalLookbackLimit)
	if err != nil {
		return nil, apperr.Internal("load intervals", err)
	}

	var out []models.Interval
	seen := make(map[int64]bool)
	for _, iv := range all {
		if iv.EndAt.Before(start) {
			continue
		}
		out = append(out, iv)
		seen[iv.ID] = true
	}
	if ownInterval != nil && !seen[ownInterval.ID] {
		out = append(out, *ownInterval)
	}
	return out, nil
}
