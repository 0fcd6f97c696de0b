// Package engagement keeps a live idea-popularity ranking in Redis.
package engagement

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rankingKey = "launchpad:ideas:by_upvotes"
	metaPrefix = "launchpad:idea:"
)

// RankedIdea is one row of the live leaderboard.
type RankedIdea struct {
	IdeaID   string `json:"ideaId"`
	Title    string `json:"title"`
	Hospital string `json:"hospital,omitempty"`
	Upvotes  int    `json:"upvotes"`
}

type ideaMeta struct {
	Title    string `json:"title"`
	Hospital string `json:"hospital"`
}

// Board maintains a sorted set of ideas scored by upvote count. Postgres
// remains the source of truth; the board is a read-optimized projection and
// scores are overwritten, not incremented, so replays are harmless.
type Board struct {
	client *redis.Client
}

// NewBoard connects to Redis and verifies the connection.
func NewBoard(redisURL string) (*Board, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Board{client: client}, nil
}

// NewBoardWithClient creates a board from an existing Redis client.
func NewBoardWithClient(client *redis.Client) *Board {
	return &Board{client: client}
}

// RecordIdeaUpvotes sets the idea's ranking score to its authoritative upvote
// count and refreshes its display metadata. Failures are logged and dropped;
// the vote itself is already durable in Postgres.
func (b *Board) RecordIdeaUpvotes(ctx context.Context, ideaID, title, hospital string, upvotes int) {
	if err := b.client.ZAdd(ctx, rankingKey, redis.Z{
		Score:  float64(upvotes),
		Member: ideaID,
	}).Err(); err != nil {
		log.Printf("engagement: rank idea %s: %v", ideaID, err)
		return
	}

	meta, err := json.Marshal(ideaMeta{Title: title, Hospital: hospital})
	if err != nil {
		log.Printf("engagement: marshal idea meta %s: %v", ideaID, err)
		return
	}
	if err := b.client.Set(ctx, metaPrefix+ideaID, meta, 0).Err(); err != nil {
		log.Printf("engagement: store idea meta %s: %v", ideaID, err)
	}
}

// TopIdeas returns the highest-voted ideas, best first.
func (b *Board) TopIdeas(ctx context.Context, limit int) ([]RankedIdea, error) {
	if limit <= 0 {
		limit = 10
	}

	entries, err := b.client.ZRevRangeWithScores(ctx, rankingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read idea ranking: %w", err)
	}

	ranked := make([]RankedIdea, 0, len(entries))
	for _, entry := range entries {
		ideaID, ok := entry.Member.(string)
		if !ok {
			continue
		}
		idea := RankedIdea{IdeaID: ideaID, Upvotes: int(entry.Score)}

		raw, err := b.client.Get(ctx, metaPrefix+ideaID).Result()
		if err == nil {
			var meta ideaMeta
			if err := json.Unmarshal([]byte(raw), &meta); err == nil {
				idea.Title = meta.Title
				idea.Hospital = meta.Hospital
			}
		} else if err != redis.Nil {
			return nil, fmt.Errorf("read idea meta %s: %w", ideaID, err)
		}
		ranked = append(ranked, idea)
	}
	return ranked, nil
}

// RemoveIdea drops an idea from the ranking, e.g. when it is archived.
func (b *Board) RemoveIdea(ctx context.Context, ideaID string) error {
	if err := b.client.ZRem(ctx, rankingKey, ideaID).Err(); err != nil {
		return fmt.Errorf("remove idea %s from ranking: %w", ideaID, err)
	}
	if err := b.client.Del(ctx, metaPrefix+ideaID).Err(); err != nil {
		return fmt.Errorf("remove idea meta %s: %w", ideaID, err)
	}
	return nil
}

// Close closes the Redis connection.
func (b *Board) Close() error {
	return b.client.Close()
}

// Ping checks if Redis is reachable.
func (b *Board) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
