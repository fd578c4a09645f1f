package ingest

import "time"

// User is the canonical normalized user shape every upstream adapter maps
// into (spec §9 "duck-typed payloads... define a single normalized user and
// tweet shape at the ingestion boundary").
type User struct {
	ID                string
	Username          string
	Name              string
	AvatarURL         string
	CoverURL          string
	Bio               string
	Location          string
	FollowersCount    int64
	FollowingCount    int64
	TweetCount        int64
	MediaCount        int64
	FavouritesCount   int64
	CreatedAt         *time.Time
	IsAutomated       bool
	CanDM             bool
	PossiblySensitive bool
}

// Tweet is the canonical normalized post shape.
type Tweet struct {
	ID             string
	Text           string
	CreatedAt      *time.Time
	LikeCount      int64
	RetweetCount   int64
	ReplyCount     int64
	QuoteCount     int64
	ConversationID string
	InReplyToID    string
	Author         *User
	Raw            map[string]any
}

// Page is one yielded step of a paginated sequence: the decoded batch plus
// the cursor bookkeeping described in spec §4.1.
type Page[T any] struct {
	Batch     []T
	CursorIn  string
	CursorOut string
	Truncated bool
}
