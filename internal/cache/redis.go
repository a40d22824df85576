package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matchmaking/internal/config"
)

type RedisCache struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return NewFromClient(redis.NewClient(opts), cfg.Redis.LikeCountTTL)
}

// NewFromClient wraps an existing client. ttl <= 0 falls back to one hour.
func NewFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{Client: client, ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForLikeCount generates the Redis key for a user's liked-you counter.
// unanswered selects the "not yet swiped back" variant.
func (c *RedisCache) KeyForLikeCount(userID uint64, unanswered bool) string {
	if unanswered {
		return fmt.Sprintf("likedyou:count:%d:new", userID)
	}
	return fmt.Sprintf("likedyou:count:%d:all", userID)
}

func (c *RedisCache) SetLikeCount(ctx context.Context, userID uint64, unanswered bool, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(userID, unanswered), count, c.ttl).Err()
}

// GetLikeCount returns the cached counter. ok is false on a cache miss.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64, unanswered bool) (count int64, ok bool, err error) {
	key := c.KeyForLikeCount(userID, unanswered)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, c.ttl).Err()
	return count, true, nil
}

// InvalidateLikeCounts drops both counters for each user.
func (c *RedisCache) InvalidateLikeCounts(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForLikeCount(id, false), c.KeyForLikeCount(id, true))
	}
	return c.Client.Del(ctx, keys...).Err()
}
