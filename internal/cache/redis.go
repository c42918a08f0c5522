package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/oggyb/moodfriends/internal/config"
)

// UnreadTTL bounds how long an unread total may be served without a DB read.
const UnreadTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
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
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForUnread generates Redis key for a user's unread message total
func (c *RedisCache) KeyForUnread(userID uint64) string {
	return fmt.Sprintf("messages:unread:%d", userID)
}

// KeyForRecommendations generates Redis key for a user's cached matches
func (c *RedisCache) KeyForRecommendations(userID uint64) string {
	return fmt.Sprintf("recommend:%d", userID)
}

func (c *RedisCache) SetUnread(ctx context.Context, userID uint64, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForUnread(userID), count, UnreadTTL).Err()
}

// GetUnread returns the cached total and whether it was present.
func (c *RedisCache) GetUnread(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForUnread(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as a miss
		return 0, false, nil
	}
	// refresh TTL since this user is active
	_ = c.Client.Expire(ctx, key, UnreadTTL).Err()
	return n, true, nil
}

// InvalidateUnread drops the unread totals of the given users.
func (c *RedisCache) InvalidateUnread(ctx context.Context, userIDs ...uint64) error {
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.KeyForUnread(id)
	}
	return c.Del(ctx, keys...)
}

// SetJSON stores v encoded as JSON. A non-positive ttl stores nothing.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes the value at key into v and reports whether it was found.
// Undecodable entries are removed and reported as a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		_ = c.Client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// InvalidateRecommendations drops cached matches of the given users.
func (c *RedisCache) InvalidateRecommendations(ctx context.Context, userIDs ...uint64) error {
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.KeyForRecommendations(id)
	}
	return c.Del(ctx, keys...)
}
