package ingest

import "time"

func parseUpstreamTime(v any) *time.Time {
	s := asString(v)
	if s == "" {
		return nil
	}
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "Mon Jan 02 15:04:05 -0700 2006"}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// normalizeUser maps a primary-upstream user payload into the canonical
// shape, mirroring twitter_client.py's _normalize_user.
func normalizeUser(u map[string]any) User {
	return User{
		ID:                asString(u["id"]),
		Username:          asString(u["userName"]),
		Name:              asString(u["name"]),
		AvatarURL:         asString(u["profilePicture"]),
		CoverURL:          asString(u["coverPicture"]),
		Bio:               asString(u["description"]),
		Location:          asString(u["location"]),
		FollowersCount:    asInt64(u["followers"]),
		FollowingCount:    asInt64(u["following"]),
		TweetCount:        asInt64(u["statusesCount"]),
		MediaCount:        asInt64(u["mediaCount"]),
		FavouritesCount:   asInt64(u["favouritesCount"]),
		CreatedAt:         parseUpstreamTime(u["createdAt"]),
		IsAutomated:       asBool(u["isAutomated"]),
		CanDM:             asBool(u["canDm"]),
		PossiblySensitive: asBool(u["possiblySensitive"]),
	}
}

// normalizeUserFromProfileEndpoint maps the single-user profile response,
// which carries a slightly different field set than list entries.
func normalizeUserFromProfileEndpoint(u map[string]any) User {
	n := normalizeUser(u)
	return n
}

// normalizeXUser maps an X API v2 user payload (used only for like-lists).
func normalizeXUser(u map[string]any) User {
	metrics := asMap(u["public_metrics"])
	return User{
		ID:             asString(u["id"]),
		Username:       asString(u["username"]),
		Name:           asString(u["name"]),
		AvatarURL:      asString(u["profile_image_url"]),
		Bio:            asString(u["description"]),
		Location:       asString(u["location"]),
		FollowersCount: asInt64(metrics["followers_count"]),
		FollowingCount: asInt64(metrics["following_count"]),
		CreatedAt:      parseUpstreamTime(u["created_at"]),
	}
}

// normalizeTweet maps a primary-upstream tweet payload into the canonical
// shape, mirroring twitter_client.py's _normalize_tweet.
func normalizeTweet(t map[string]any) Tweet {
	tw := Tweet{
		ID:             asString(t["id"]),
		Text:           asString(t["text"]),
		CreatedAt:      parseUpstreamTime(t["createdAt"]),
		LikeCount:      asInt64(t["likeCount"]),
		RetweetCount:   asInt64(t["retweetCount"]),
		ReplyCount:     asInt64(t["replyCount"]),
		QuoteCount:     asInt64(t["quoteCount"]),
		ConversationID: asString(t["conversationId"]),
		InReplyToID:    asString(t["inReplyToId"]),
		Raw:            t,
	}
	if author := asMap(t["author"]); len(author) > 0 {
		a := normalizeUser(author)
		tw.Author = &a
	}
	return tw
}

func usersFromSlice(raw []any) []User {
	out := make([]User, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, normalizeUser(m))
		}
	}
	return out
}

func tweetsFromSlice(raw []any) []Tweet {
	out := make([]Tweet, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, normalizeTweet(m))
		}
	}
	return out
}
