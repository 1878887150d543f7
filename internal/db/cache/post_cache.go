package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"Postboard/internal/core/posts"
)

const postKeyPrefix = "post:"

// Hash fields of a cached post entry
const (
	fieldVersion = "v"
	fieldPost    = "p"
	fieldDeleted = "d"
)

// DefaultPostTTL bounds how long a cached post may be served after a missed invalidation
const DefaultPostTTL = 30 * time.Second

// fillScript stores a post unless the entry is tombstoned or records a newer version.
// KEYS[1] entry key; ARGV[1] version, ARGV[2] encoded post, ARGV[3] ttl in ms.
var fillScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'd') == 1 then
	return 0
end
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'p', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// invalidateScript replaces the entry with a bare version marker.
// KEYS[1] entry key; ARGV[1] version now stored, ARGV[2] ttl in ms.
var invalidateScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'd') == 1 then
	return 0
end
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'v', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// Connect initializes a Redis client from a redis:// URL or a host:port address
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// PostCache is a Redis-backed posts.Cache.
// Each post is a hash holding its version and, when filled, the encoded post.
// Invalidation leaves the version behind so a slower reader cannot refill an
// older copy; deletion leaves a tombstone.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPostCache creates a post cache. A non-positive ttl uses DefaultPostTTL.
// Version markers and tombstones expire after the same ttl.
func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = DefaultPostTTL
	}
	return &PostCache{client: client, ttl: ttl}
}

// Get returns the cached post, or nil on a miss
func (c *PostCache) Get(ctx context.Context, id string) (*posts.Post, error) {
	vals, err := c.client.HMGet(ctx, postKeyPrefix+id, fieldVersion, fieldPost).Result()
	if err != nil {
		return nil, fmt.Errorf("get cached post: %w", err)
	}

	rawVersion, _ := vals[0].(string)
	rawPost, _ := vals[1].(string)
	if rawPost == "" {
		return nil, nil
	}

	version, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode cached post version: %w", err)
	}
	var post posts.Post
	if err := json.Unmarshal([]byte(rawPost), &post); err != nil {
		return nil, fmt.Errorf("decode cached post: %w", err)
	}
	post.Version = version
	return &post, nil
}

// Set stores post under its id for the configured ttl, unless a newer version
// or a tombstone is already recorded
func (c *PostCache) Set(ctx context.Context, post *posts.Post) error {
	raw, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	err = fillScript.Run(ctx, c.client, []string{postKeyPrefix + post.ID},
		post.Version, string(raw), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("set cached post: %w", err)
	}
	return nil
}

// Invalidate evicts the cached copy of a post now stored at version
func (c *PostCache) Invalidate(ctx context.Context, id string, version int64) error {
	err := invalidateScript.Run(ctx, c.client, []string{postKeyPrefix + id},
		version, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("invalidate cached post: %w", err)
	}
	return nil
}

// Tombstone evicts a deleted post and blocks refills until the marker expires
func (c *PostCache) Tombstone(ctx context.Context, id string) error {
	key := postKeyPrefix + id
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldDeleted, "1")
		pipe.PExpire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("tombstone cached post: %w", err)
	}
	return nil
}
