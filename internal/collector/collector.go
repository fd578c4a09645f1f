package collector

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"social-graph-atlas/internal/apperr"
	"social-graph-atlas/internal/config"
	"social-graph-atlas/internal/ingest"
	"social-graph-atlas/internal/models"
	"social-graph-atlas/internal/store"
)

// Collector drives one end-to-end collection run: resolve the ego account,
// page both snapshot kinds to the store, diff each against its prior
// snapshot, and collect engagement evidence on a best-effort basis.
type Collector struct {
	st     *store.Store
	client *ingest.Client
	cfg    config.Settings
}

func New(st *store.Store, client *ingest.Client, cfg config.Settings) *Collector {
	return &Collector{st: st, client: client, cfg: cfg}
}

// Recover runs the startup recovery pass (spec §5): any run left "running"
// by a crashed process is marked failed, and snapshots whose membership
// collection never completed are garbage collected.
func (c *Collector) Recover(ctx context.Context) error {
	stale, err := c.st.RecoverStaleRuns(ctx)
	if err != nil {
		return err
	}
	if stale > 0 {
		log.Printf("[collector] recovered %d stale run(s) as failed", stale)
	}
	gced, err := c.st.GCEmptySnapshots(ctx)
	if err != nil {
		return err
	}
	if gced > 0 {
		log.Printf("[collector] garbage-collected %d empty snapshot(s)", gced)
	}
	return nil
}

// Result summarizes one completed (or failed) collection run.
type Result struct {
	Run               models.Run
	EgoID             string
	FollowersCount    int64
	FollowingCount    int64
	FollowersInterval *models.Interval
	FollowingInterval *models.Interval
}

// RunCollection executes one full pass for the given ego handle: start a
// run, collect both snapshot kinds, diff each against the prior snapshot of
// the same kind, best-effort collect engagement for the ego's recent posts,
// and finish the run. A failure in ego resolution or in either snapshot
// collection marks the run failed and is returned as err; engagement
// failures are only logged and the run still completes.
func (c *Collector) RunCollection(ctx context.Context, username, userID string, maxPages int) (Result, error) {
	snap := c.cfg.Freeze()
	cfgJSON, err := json.Marshal(snap)
	if err != nil {
		return Result{}, apperr.Internal("marshal config snapshot", err)
	}

	run, err := c.st.StartRun(ctx, c.cfg.ConfigVersion, cfgJSON, uuid.NewString())
	if err != nil {
		return Result{}, apperr.Internal("start run", err)
	}
	log.Printf("[collector] run %d started for username=%q user_id=%q (trace=%s)", run.ID, username, userID, run.TraceID)

	result := Result{Run: run}

	ego, err := c.ResolveEgo(ctx, username, userID)
	if err != nil {
		_ = c.st.FinishRun(ctx, run.ID, models.RunFailed, "resolve ego: "+err.Error())
		return result, err
	}
	if err := c.st.UpsertAccount(ctx, accountFromUser(ego)); err != nil {
		_ = c.st.FinishRun(ctx, run.ID, models.RunFailed, "upsert ego: "+err.Error())
		return result, err
	}
	if err := c.st.SetRunEgo(ctx, run.ID, ego.ID); err != nil {
		_ = c.st.FinishRun(ctx, run.ID, models.RunFailed, "set run ego: "+err.Error())
		return result, err
	}
	result.EgoID = ego.ID
	result.FollowersCount = ego.FollowersCount
	result.FollowingCount = ego.FollowingCount

	followersIv, err := c.collectAndDiff(ctx, run.ID, ego, models.KindFollowers, maxPages)
	if err != nil {
		_ = c.st.FinishRun(ctx, run.ID, models.RunFailed, "followers: "+err.Error())
		return result, err
	}
	result.FollowersInterval = followersIv

	followingIv, err := c.collectAndDiff(ctx, run.ID, ego, models.KindFollowing, maxPages)
	if err != nil {
		_ = c.st.FinishRun(ctx, run.ID, models.RunFailed, "following: "+err.Error())
		return result, err
	}
	result.FollowingInterval = followingIv

	// Engagement collection is keyed on the follower interval if present,
	// else the following interval, else skipped entirely: a first-ever run
	// for an ego has no prior snapshot to diff against, so both intervals
	// are nil and there is nothing to key engagement collection on.
	// Best-effort otherwise: a failure here degrades the run but does not
	// fail it, since the snapshot/interval data is already safe (spec §5 —
	// engagement errors classify as apperr.Degraded).
	if followersIv != nil || followingIv != nil {
		if degradeErr := c.collectEngagement(ctx, run.ID, ego); degradeErr != nil {
			log.Printf("[collector] run %d engagement collection degraded: %v", run.ID, degradeErr)
		}
	} else {
		log.Printf("[collector] run %d has no follower or following interval, skipping engagement collection", run.ID)
	}

	if err := c.st.FinishRun(ctx, run.ID, models.RunCompleted, ""); err != nil {
		return result, apperr.Internal("finish run", err)
	}
	log.Printf("[collector] run %d completed", run.ID)
	return result, nil
}

// ResolveEgo accepts a username, an account id, or both, and returns the
// canonical user record. The upstream API only resolves by username, so an
// id-only request is satisfied from already-known accounts: we look up the
// stored handle for that id and resolve through it. An id we have never
// seen before cannot be resolved this way.
func (c *Collector) ResolveEgo(ctx context.Context, username, userID string) (ingest.User, error) {
	if username != "" {
		return c.client.GetUserByUsername(ctx, username)
	}
	if userID == "" {
		return ingest.User{}, apperr.Validation("username or user_id is required", nil)
	}
	known, err := c.st.GetAccount(ctx, userID)
	if err != nil {
		return ingest.User{}, apperr.Validation("user_id not recognized; resolve by username instead", map[string]string{"user_id": userID})
	}
	return c.client.GetUserByUsername(ctx, known.Handle)
}

func accountFromUser(u ingest.User) models.Account {
	return models.Account{
		AccountID:         u.ID,
		Handle:            u.Username,
		Name:              u.Name,
		AvatarURL:         u.AvatarURL,
		Bio:               u.Bio,
		FollowersCount:    u.FollowersCount,
		FollowingCount:    u.FollowingCount,
		TweetCount:        u.TweetCount,
		MediaCount:        u.MediaCount,
		FavouritesCount:   u.FavouritesCount,
		IsAutomated:       u.IsAutomated,
		CanDM:             u.CanDM,
		PossiblySensitive: u.PossiblySensitive,
		CreatedAt:         u.CreatedAt,
		LastSeenAt:        time.Now().UTC(),
	}
}

// collectAndDiff pages one snapshot kind to the store, then diffs it
// against the immediately preceding snapshot of the same kind (if any).
func (c *Collector) collectAndDiff(ctx context.Context, runID int64, ego ingest.User, kind models.SnapshotKind, maxPages int) (*models.Interval, error) {
	newSnap, err := c.collectSnapshot(ctx, runID, ego, kind, maxPages)
	if err != nil {
		return nil, err
	}

	prior, err := c.priorSnapshot(ctx, kind, newSnap.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			log.Printf("[collector] no prior %s snapshot to diff against, skipping interval", kind)
			return nil, nil
		}
		return nil, err
	}

	startMembers, err := c.st.GetSnapshotMemberIDs(ctx, prior.ID, kind)
	if err != nil {
		return nil, apperr.Internal("load prior snapshot members", err)
	}
	endMembers, err := c.st.GetSnapshotMemberIDs(ctx, newSnap.ID, kind)
	if err != nil {
		return nil, apperr.Internal("load new snapshot members", err)
	}

	events, err := ComputeIntervalDiff(prior.Kind, newSnap.Kind, startMembers, endMembers)
	if err != nil {
		return nil, err
	}

	newCount, lostCount := 0, 0
	for _, e := range events {
		if e.Kind == models.FollowNew {
			newCount++
		} else {
			lostCount++
		}
	}

	iv, err := c.st.CreateInterval(ctx, models.Interval{
		SnapshotStartID: prior.ID,
		SnapshotEndID:   newSnap.ID,
		Kind:            kind,
		StartAt:         prior.CapturedAt,
		EndAt:           newSnap.CapturedAt,
		NewCount:        newCount,
		LostCount:       lostCount,
	})
	if err != nil {
		return nil, apperr.Internal("create interval", err)
	}
	if err := c.st.InsertFollowEvents(ctx, iv.ID, events); err != nil {
		return nil, apperr.Internal("insert follow events", err)
	}
	log.Printf("[collector] interval %d (%s): +%d -%d", iv.ID, kind, newCount, lostCount)
	return &iv, nil
}

// priorSnapshot returns the snapshot of the given kind immediately before
// the just-created one, or a NotFound error if this is the first ever.
func (c *Collector) priorSnapshot(ctx context.Context, kind models.SnapshotKind, excludeID int64) (models.Snapshot, error) {
	snaps, err := c.st.ListSnapshots(ctx, kind, 2)
	if err != nil {
		return models.Snapshot{}, apperr.Internal("list snapshots", err)
	}
	for _, s := range snaps {
		if s.ID != excludeID {
			return s, nil
		}
	}
	return models.Snapshot{}, apperr.NotFound("no prior snapshot")
}

// collectSnapshot pages the target's follower or following list, upserting
// each observed account and committing membership rows page by page so a
// crash or cancellation loses at most the unfinished page (spec §5 per-page
// commit discipline). A snapshot cut short this way keeps account_count 0
// and is removed by the startup garbage collection. follow_position increases
// monotonically across the whole run, not per page.
func (c *Collector) collectSnapshot(ctx context.Context, runID int64, ego ingest.User, kind models.SnapshotKind, maxPages int) (models.Snapshot, error) {
	snap, err := c.st.CreateSnapshot(ctx, runID, kind)
	if err != nil {
		return snap, apperr.Internal("create snapshot", err)
	}

	var pages <-chan ingest.Result[ingest.User]
	if kind == models.KindFollowers {
		pages = c.client.PaginateFollowers(ctx, ego.Username, maxPages)
	} else {
		pages = c.client.PaginateFollowing(ctx, ego.Username, maxPages)
	}

	position := 0
	for res := range pages {
		if res.Err != nil {
			return snap, res.Err
		}

		payload, _ := json.Marshal(res.Page.Batch)
		if _, err := c.st.InsertRawFetch(ctx, models.RawFetch{
			RunID:      runID,
			Endpoint:   string(kind),
			ParamsHash: ego.ID,
			CursorIn:   res.Page.CursorIn,
			CursorOut:  res.Page.CursorOut,
			Truncated:  res.Page.Truncated,
			Payload:    payload,
		}); err != nil {
			return snap, apperr.Internal("insert raw fetch", err)
		}

		members := make([]models.SnapshotMember, 0, len(res.Page.Batch))
		for _, u := range res.Page.Batch {
			if err := c.st.UpsertAccount(ctx, accountFromUser(u)); err != nil {
				return snap, apperr.Internal("upsert account", err)
			}
			members = append(members, models.SnapshotMember{
				SnapshotID:     snap.ID,
				AccountID:      u.ID,
				FollowPosition: position,
			})
			position++
		}
		if err := c.st.AddSnapshotMembers(ctx, snap.ID, kind, members); err != nil {
			return snap, apperr.Internal("add snapshot members", err)
		}

		if ctx.Err() != nil {
			return snap, ctx.Err()
		}
	}

	if err := c.st.FinalizeSnapshotCount(ctx, snap.ID, kind); err != nil {
		return snap, apperr.Internal("finalize snapshot count", err)
	}
	return snap, nil
}

// collectEngagement gathers direct-interaction and co-engagement evidence
// for the ego's recent posts. Every upstream call here is best-effort: the
// caller logs and continues rather than failing the run (spec §5, §7
// Degraded classification).
func (c *Collector) collectEngagement(ctx context.Context, runID int64, ego ingest.User) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	tweetPages := c.client.PaginateUserLastTweets(ctx, ego.Username, 1)
	posts := 0
	for res := range tweetPages {
		if res.Err != nil {
			record(apperr.Degraded("fetch last tweets", res.Err))
			break
		}
		for _, tw := range res.Page.Batch {
			if posts >= c.cfg.MaxTopPostsPerRun {
				break
			}
			if err := c.collectPostEngagement(ctx, tw, ego.ID); err != nil {
				record(apperr.Degraded("collect post engagement for "+tw.ID, err))
				continue
			}
			posts++
		}
	}
	return firstErr
}

func (c *Collector) collectPostEngagement(ctx context.Context, tw ingest.Tweet, egoID string) error {
	metrics, _ := json.Marshal(map[string]int64{
		"like_count": tw.LikeCount, "retweet_count": tw.RetweetCount,
		"reply_count": tw.ReplyCount, "quote_count": tw.QuoteCount,
	})
	createdAt := time.Now().UTC()
	if tw.CreatedAt != nil {
		createdAt = *tw.CreatedAt
	}
	if err := c.st.UpsertPost(ctx, models.Post{
		PostID: tw.ID, AuthorID: authorID(tw, egoID), CreatedAt: createdAt,
		Text: tw.Text, MetricsJSON: metrics, ConversationID: tw.ConversationID,
		InReplyToID: tw.InReplyToID, LastSeenAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	var collected int64
	limit := int64(c.cfg.MaxEngagersPerPost)

	// Retweeters and likers are independent upstream paginations sharing only
	// the overall per-post engager cap; fetch both concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.drainEngagers(gctx, c.client.PaginateTweetRetweeters(gctx, tw.ID, 0), tw.ID, models.EngagerRetweet, limit, &collected)
	})
	g.Go(func() error {
		return c.drainEngagers(gctx, c.client.PaginateTweetLikingUsers(gctx, tw.ID, 0), tw.ID, models.EngagerLike, limit, &collected)
	})
	return g.Wait()
}

func (c *Collector) drainEngagers(ctx context.Context, pages <-chan ingest.Result[ingest.User], postID string, engagerType models.EngagerType, limit int64, collected *int64) error {
	for res := range pages {
		if res.Err != nil {
			return res.Err
		}
		for _, u := range res.Page.Batch {
			if atomic.LoadInt64(collected) >= limit {
				return nil
			}
			if err := c.st.UpsertAccount(ctx, accountFromUser(u)); err != nil {
				return err
			}
			if err := c.st.InsertPostEngager(ctx, models.PostEngager{PostID: postID, AccountID: u.ID, Type: engagerType}); err != nil {
				return err
			}
			atomic.AddInt64(collected, 1)
		}
	}
	return nil
}

func authorID(tw ingest.Tweet, egoID string) string {
	if tw.Author != nil {
		return tw.Author.ID
	}
	return egoID
}
