package store

import (
	"context"

	"social-graph-atlas/internal/models"
)

// UpsertAccount writes the latest-known profile for an account, advancing
// last_seen_at. Called once per observed account per page (spec §4.2).
func (s *Store) UpsertAccount(ctx context.Context, a models.Account) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (
			account_id, handle, name, avatar_url, bio,
			followers_count, following_count, tweet_count, media_count, favourites_count,
			is_automated, can_dm, possibly_sensitive, created_at, last_seen_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (account_id) DO UPDATE SET
			handle = EXCLUDED.handle,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			bio = EXCLUDED.bio,
			followers_count = EXCLUDED.followers_count,
			following_count = EXCLUDED.following_count,
			tweet_count = EXCLUDED.tweet_count,
			media_count = EXCLUDED.media_count,
			favourites_count = EXCLUDED.favourites_count,
			is_automated = EXCLUDED.is_automated,
			can_dm = EXCLUDED.can_dm,
			possibly_sensitive = EXCLUDED.possibly_sensitive,
			created_at = COALESCE(accounts.created_at, EXCLUDED.created_at),
			last_seen_at = EXCLUDED.last_seen_at`,
		a.AccountID, a.Handle, a.Name, a.AvatarURL, a.Bio,
		a.FollowersCount, a.FollowingCount, a.TweetCount, a.MediaCount, a.FavouritesCount,
		a.IsAutomated, a.CanDM, a.PossiblySensitive, a.CreatedAt, a.LastSeenAt,
	)
	return err
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	var a models.Account
	err := s.db.QueryRow(ctx, `
		SELECT account_id, handle, name, avatar_url, bio,
			followers_count, following_count, tweet_count, media_count, favourites_count,
			is_automated, can_dm, possibly_sensitive, created_at, last_seen_at
		FROM accounts WHERE account_id = $1`, accountID,
	).Scan(&a.AccountID, &a.Handle, &a.Name, &a.AvatarURL, &a.Bio,
		&a.FollowersCount, &a.FollowingCount, &a.TweetCount, &a.MediaCount, &a.FavouritesCount,
		&a.IsAutomated, &a.CanDM, &a.PossiblySensitive, &a.CreatedAt, &a.LastSeenAt)
	return a, err
}

// GetAccounts resolves a set of account ids in one round trip, used heavily
// by the frame builder when it hydrates node metadata.
func (s *Store) GetAccounts(ctx context.Context, accountIDs []string) (map[string]models.Account, error) {
	rows, err := s.db.Query(ctx, `
		SELECT account_id, handle, name, avatar_url, bio,
			followers_count, following_count, tweet_count, media_count, favourites_count,
			is_automated, can_dm, possibly_sensitive, created_at, last_seen_at
		FROM accounts WHERE account_id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.Account, len(accountIDs))
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.AccountID, &a.Handle, &a.Name, &a.AvatarURL, &a.Bio,
			&a.FollowersCount, &a.FollowingCount, &a.TweetCount, &a.MediaCount, &a.FavouritesCount,
			&a.IsAutomated, &a.CanDM, &a.PossiblySensitive, &a.CreatedAt, &a.LastSeenAt); err != nil {
			return nil, err
		}
		out[a.AccountID] = a
	}
	return out, rows.Err()
}

// ListAccounts supports the /accounts endpoint's handle search.
func (s *Store) ListAccounts(ctx context.Context, search string, limit, offset int) ([]models.Account, error) {
	rows, err := s.db.Query(ctx, `
		SELECT account_id, handle, name, avatar_url, bio,
			followers_count, following_count, tweet_count, media_count, favourites_count,
			is_automated, can_dm, possibly_sensitive, created_at, last_seen_at
		FROM accounts
		WHERE $1 = '' OR handle ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY followers_count DESC
		LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.AccountID, &a.Handle, &a.Name, &a.AvatarURL, &a.Bio,
			&a.FollowersCount, &a.FollowingCount, &a.TweetCount, &a.MediaCount, &a.FavouritesCount,
			&a.IsAutomated, &a.CanDM, &a.PossiblySensitive, &a.CreatedAt, &a.LastSeenAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
