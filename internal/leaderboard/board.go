package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pechomax/pechomax-api/internal/models"
)

const (
	scoresKey = "leaderboard:scores"
	namesKey  = "leaderboard:names"
)

// Board caches the score leaderboard in a Redis sorted set. It is purely
// advisory: callers fall back to Postgres when it is empty or failing.
type Board struct {
	rdb *redis.Client
}

func NewBoard(rdb *redis.Client) *Board {
	return &Board{rdb: rdb}
}

// SetScore records a user's current total after a score change.
func (b *Board) SetScore(ctx context.Context, userID, username string, score int) error {
	pipe := b.rdb.TxPipeline()
	pipe.ZAdd(ctx, scoresKey, redis.Z{Score: float64(score), Member: userID})
	pipe.HSet(ctx, namesKey, userID, username)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard set score: %w", err)
	}
	return nil
}

// Remove drops a user from the board, used when an account is deleted.
func (b *Board) Remove(ctx context.Context, userID string) error {
	pipe := b.rdb.TxPipeline()
	pipe.ZRem(ctx, scoresKey, userID)
	pipe.HDel(ctx, namesKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard remove: %w", err)
	}
	return nil
}

// Top returns the n highest-scoring users, best first. An empty board
// returns an empty slice, not an error.
func (b *Board) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	zs, err := b.rdb.ZRevRangeWithScores(ctx, scoresKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	if len(zs) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.Member.(string)
	}
	names, err := b.rdb.HMGet(ctx, namesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard names: %w", err)
	}

	entries := make([]models.LeaderboardEntry, len(zs))
	for i, z := range zs {
		name := ""
		if s, ok := names[i].(string); ok {
			name = s
		}
		entries[i] = models.LeaderboardEntry{
			UserID:   ids[i],
			Username: name,
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

// Rebuild replaces the board contents from authoritative entries.
func (b *Board) Rebuild(ctx context.Context, entries []models.LeaderboardEntry) error {
	pipe := b.rdb.TxPipeline()
	pipe.Del(ctx, scoresKey, namesKey)
	for _, e := range entries {
		pipe.ZAdd(ctx, scoresKey, redis.Z{Score: float64(e.Score), Member: e.UserID})
		pipe.HSet(ctx, namesKey, e.UserID, e.Username)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard rebuild: %w", err)
	}
	return nil
}
