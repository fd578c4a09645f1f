// Package models holds the three-layer data model described in spec §3:
// raw (append-only), normalized (canonical), and derived (recomputable).
package models

import "time"

// SnapshotKind distinguishes a followers snapshot from a following snapshot.
type SnapshotKind string

const (
	KindFollowers SnapshotKind = "followers"
	KindFollowing SnapshotKind = "following"
)

// RunStatus is the lifecycle state of a collection Run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// FollowEventKind tags whether a FollowEvent is a gain or a loss.
type FollowEventKind string

const (
	FollowNew  FollowEventKind = "new"
	FollowLost FollowEventKind = "lost"
)

// InteractionType is the tagged enum of engagement kinds (spec §4.1/§9 —
// "dynamic dispatch... replaced by a tagged enum with exhaustive handling").
type InteractionType string

const (
	InteractionReply    InteractionType = "reply"
	InteractionQuote    InteractionType = "quote"
	InteractionMention  InteractionType = "mention"
	InteractionRetweet  InteractionType = "retweet"
	InteractionLike     InteractionType = "like"
)

// BaseWeight returns the static weight table from spec §4.4.1.
func (t InteractionType) BaseWeight() float64 {
	switch t {
	case InteractionReply:
		return 4
	case InteractionQuote:
		return 3
	case InteractionMention:
		return 2
	case InteractionRetweet:
		return 1
	case InteractionLike:
		return 0.5
	default:
		return 0
	}
}

// EngagerType is the tagged enum for PostEngager rows.
type EngagerType string

const (
	EngagerLike    EngagerType = "like"
	EngagerRetweet EngagerType = "retweet"
	EngagerReply   EngagerType = "reply"
	EngagerQuote   EngagerType = "quote"
)

// ---- Raw layer ----

// RawFetch records one paged upstream response. Append-only.
type RawFetch struct {
	ID         int64
	RunID      int64
	Endpoint   string
	ParamsHash string
	CursorIn   string
	CursorOut  string
	Truncated  bool
	Payload    []byte
	FetchedAt  time.Time
}

// ---- Normalized layer ----

type Run struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    *time.Time
	Status        RunStatus
	ConfigVersion string
	ConfigJSON    []byte
	Notes         string
	TraceID       string
	EgoAccountID  string
}

type Account struct {
	AccountID         string
	Handle            string
	Name              string
	AvatarURL         string
	Bio               string
	FollowersCount    int64
	FollowingCount    int64
	TweetCount        int64
	MediaCount        int64
	FavouritesCount   int64
	IsAutomated       bool
	CanDM             bool
	PossiblySensitive bool
	CreatedAt         *time.Time
	LastSeenAt        time.Time
}

type Snapshot struct {
	ID           int64
	RunID        int64
	CapturedAt   time.Time
	Kind         SnapshotKind
	AccountCount int
}

// SnapshotMember is the shared shape of SnapshotFollower/SnapshotFollowing.
// follow_position: 0 = newest-first, as returned upstream.
type SnapshotMember struct {
	SnapshotID     int64
	AccountID      string
	FollowPosition int
}

type Post struct {
	PostID           string
	AuthorID         string
	CreatedAt        time.Time
	Text             string
	MetricsJSON      []byte
	ConversationID   string
	InReplyToID      string
	LastSeenAt       time.Time
}

type InteractionEvent struct {
	ID          int64
	IntervalID  *int64
	CreatedAt   time.Time
	SrcID       string
	DstID       string
	Type        InteractionType
	PostID      string // optional
	RawFetchID  *int64
}

type PostEngager struct {
	IntervalID *int64
	PostID     string
	AccountID  string
	Type       EngagerType
}

// ---- Derived layer ----

type Interval struct {
	ID               int64
	SnapshotStartID  int64
	SnapshotEndID    int64
	Kind             SnapshotKind
	StartAt          time.Time
	EndAt            time.Time
	NewCount         int
	LostCount        int
}

type FollowEvent struct {
	ID         int64
	IntervalID int64
	AccountID  string
	Kind       FollowEventKind
}

type Edge struct {
	ID         int64
	IntervalID int64
	SrcID      string
	DstID      string
	Type       string
	Weight     float64
	Metadata   []byte
}

type Community struct {
	IntervalID   int64
	AccountID    string
	CommunityID  int
	Confidence   float64
}

type Position struct {
	IntervalID int64
	AccountID  string
	X, Y, Z    float64
}

type PositionHistory struct {
	ID         int64
	IntervalID int64
	AccountID  string
	X, Y, Z    float64
	RecordedAt time.Time
	Source     string
}

type Frame struct {
	ID             int64
	IntervalID     int64
	TimeframeDays  int
	Payload        []byte
	NodeCount      int
	EdgeCount      int
	BuildMetadata  []byte
	BuiltAt        time.Time
}

type PostAttribution struct {
	ID            int64
	PostID        string
	IntervalID    *int64
	TimeframeDays int
	CreatedAt     time.Time
	Payload       []byte
	BuiltAt       time.Time
}
