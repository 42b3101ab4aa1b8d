package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pixelarc/rankboard/pkg/metrics"
)

// RedisBoard implements Board on Redis sorted sets. One leaderboard key maps
// to one ZSET; the combined value rides in the float64 score column, which is
// exact because combined values never exceed 53 significant bits.
type RedisBoard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOption applies a configuration option to the RedisBoard.
type RedisOption func(*RedisBoard)

// WithKeyPrefix namespaces every leaderboard key, e.g. "rankboard:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(b *RedisBoard) {
		b.keyPrefix = prefix
	}
}

// NewRedisBoard wraps an existing Redis client as a Board.
func NewRedisBoard(client *redis.Client, opts ...RedisOption) *RedisBoard {
	b := &RedisBoard{client: client}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBoard) redisKey(key string) string {
	return b.keyPrefix + key
}

// Upsert implements Board.Upsert via ZADD (unconditional, last write wins).
func (b *RedisBoard) Upsert(ctx context.Context, key, member string, combined int64) error {
	start := time.Now()
	defer func() {
		metrics.RecordBoardUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	err := b.client.ZAdd(ctx, b.redisKey(key), redis.Z{
		Score:  float64(combined),
		Member: member,
	}).Err()
	if err != nil {
		metrics.RecordErrorByComponent("scoreboard", "redis_zadd")
		return fmt.Errorf("zadd %s: %w", key, err)
	}
	metrics.RecordBoardWrite()
	return nil
}

// TopRange implements Board.TopRange via ZREVRANGE WITHSCORES.
func (b *RedisBoard) TopRange(ctx context.Context, key string, start, stop int) ([]Member, error) {
	qstart := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(qstart).Milliseconds()))
	}()

	if start < 0 || stop < start {
		metrics.RecordErrorByComponent("scoreboard", "invalid_range")
		return nil, ErrInvalidRange
	}

	zs, err := b.client.ZRevRangeWithScores(ctx, b.redisKey(key), int64(start), int64(stop)).Result()
	if err != nil {
		metrics.RecordErrorByComponent("scoreboard", "redis_zrevrange")
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	out := make([]Member, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Member{ID: id, Combined: int64(z.Score)})
	}
	return out, nil
}

// Score implements Board.Score via ZSCORE.
func (b *RedisBoard) Score(ctx context.Context, key, member string) (int64, error) {
	v, err := b.client.ZScore(ctx, b.redisKey(key), member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		metrics.RecordErrorByComponent("scoreboard", "redis_zscore")
		return 0, fmt.Errorf("zscore %s: %w", key, err)
	}
	return int64(v), nil
}

// RevRank implements Board.RevRank via ZREVRANK.
func (b *RedisBoard) RevRank(ctx context.Context, key, member string) (int, error) {
	qstart := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(qstart).Milliseconds()))
	}()

	rank, err := b.client.ZRevRank(ctx, b.redisKey(key), member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		metrics.RecordErrorByComponent("scoreboard", "redis_zrevrank")
		return 0, fmt.Errorf("zrevrank %s: %w", key, err)
	}
	return int(rank), nil
}

// Count implements Board.Count via ZCARD.
func (b *RedisBoard) Count(ctx context.Context, key string) (int, error) {
	n, err := b.client.ZCard(ctx, b.redisKey(key)).Result()
	if err != nil {
		metrics.RecordErrorByComponent("scoreboard", "redis_zcard")
		return 0, fmt.Errorf("zcard %s: %w", key, err)
	}
	return int(n), nil
}
