package ingest

import (
	"context"

	"social-graph-atlas/internal/apperr"
)

// GetUserByUsername resolves a handle to the canonical user shape (used by
// the collector when the ego is identified by handle rather than ID).
func (c *Client) GetUserByUsername(ctx context.Context, username string) (User, error) {
	data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/user/info",
		c.primaryHeaders(), map[string]string{"userName": username})
	if err != nil {
		return User{}, err
	}
	u := asMap(data["data"])
	if u == nil {
		return User{}, apperr.NotFound("user not found: " + username)
	}
	return normalizeUserFromProfileEndpoint(u), nil
}

// PaginateFollowers yields (batch, cursor_in, cursor_out, truncated) pages
// of the target's followers, newest-first (spec §4.1, §4.2 step 4).
func (c *Client) PaginateFollowers(ctx context.Context, username string, maxPages int) <-chan Result[User] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"userName": username, "pageSize": "200"}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/user/followers", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		return asSlice(data["followers"]), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, usersFromSlice)
}

// PaginateFollowing mirrors PaginateFollowers for the following list.
func (c *Client) PaginateFollowing(ctx context.Context, username string, maxPages int) <-chan Result[User] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"userName": username, "pageSize": "200"}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/user/followings", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		return asSlice(data["followings"]), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, usersFromSlice)
}

// PaginateUserLastTweets yields a user's recent posts, used by the collector
// to find candidate posts for attribution.
func (c *Client) PaginateUserLastTweets(ctx context.Context, username string, maxPages int) <-chan Result[Tweet] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"userName": username}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/user/last_tweets", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		return asSlice(data["tweets"]), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, tweetsFromSlice)
}

// PaginateTweetReplies yields replies to a post, a direct-interaction source.
func (c *Client) PaginateTweetReplies(ctx context.Context, tweetID string, maxPages int) <-chan Result[Tweet] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"tweetId": tweetID}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/tweet/replies", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		replies := data["replies"]
		if replies == nil {
			replies = data["tweets"]
		}
		return asSlice(replies), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, tweetsFromSlice)
}

// PaginateTweetQuotes yields quote tweets of a post.
func (c *Client) PaginateTweetQuotes(ctx context.Context, tweetID string, maxPages int) <-chan Result[Tweet] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"tweetId": tweetID, "includeReplies": "true"}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/tweet/quotes", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		return asSlice(data["tweets"]), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, tweetsFromSlice)
}

// PaginateTweetRetweeters yields the accounts that retweeted a post.
func (c *Client) PaginateTweetRetweeters(ctx context.Context, tweetID string, maxPages int) <-chan Result[User] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"tweetId": tweetID}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/tweet/retweeters", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		return asSlice(data["users"]), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, usersFromSlice)
}

// PaginateUserMentions yields posts mentioning the given user.
func (c *Client) PaginateUserMentions(ctx context.Context, username string, maxPages int) <-chan Result[Tweet] {
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{"userName": username}
		if cursor != "" {
			q["cursor"] = cursor
		}
		data, err := doJSON(ctx, c.primary, c.primaryLimiter, "GET", primaryBaseURL, "/twitter/user/mentions", c.primaryHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		return asSlice(data["tweets"]), asString(data["next_cursor"]), nil
	}
	return runPagination(ctx, maxPages, fetch, tweetsFromSlice)
}

// PaginateTweetLikingUsers yields likers of a post via the X API v2 fallback
// upstream. Returns a closed, empty channel if no fallback credential is
// configured (like-list collection is then simply skipped by the caller).
func (c *Client) PaginateTweetLikingUsers(ctx context.Context, tweetID string, maxPages int) <-chan Result[User] {
	if c.x == nil {
		ch := make(chan Result[User])
		close(ch)
		return ch
	}
	fetch := func(ctx context.Context, cursor string) ([]any, string, error) {
		q := map[string]string{
			"max_results": "100",
			"user.fields": "id,name,username,profile_image_url,public_metrics,created_at,description,location",
		}
		if cursor != "" {
			q["pagination_token"] = cursor
		}
		data, err := doJSON(ctx, c.x, c.xLimiter, "GET", xBaseURL, "/tweets/"+tweetID+"/liking_users", c.xHeaders(), q)
		if err != nil {
			return nil, "", err
		}
		meta := asMap(data["meta"])
		return asSlice(data["data"]), asString(meta["next_token"]), nil
	}
	return runPagination(ctx, maxPages, fetch, func(raw []any) []User {
		out := make([]User, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, normalizeXUser(m))
			}
		}
		return out
	})
}

// GetUsersBulk resolves multiple usernames, tolerating per-user 403/404
// (suspended or deleted accounts) the way twitter_client.py's
// get_users_bulk does — every other upstream class of error aborts the
// whole batch.
func (c *Client) GetUsersBulk(ctx context.Context, usernames []string) ([]User, error) {
	out := make([]User, 0, len(usernames))
	for _, username := range usernames {
		u, err := c.GetUserByUsername(ctx, username)
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				if appErr.Kind == apperr.KindNotFound {
					continue
				}
				if appErr.Kind == apperr.KindUpstreamHard && (appErr.Status == 403 || appErr.Status == 404) {
					continue
				}
			}
			return nil, err
		}
		if u.ID != "" {
			out = append(out, u)
		}
	}
	return out, nil
}
