package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"miniblog/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const recentPostsKey = "posts:recent"

// PostCache is a best-effort, TTL-bounded cache for the newest-first post list.
// A nil *PostCache is valid and disables caching.
type PostCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPostCache(rdb *redis.Client, ttl time.Duration) *PostCache {
	if rdb == nil {
		return nil
	}
	return &PostCache{rdb: rdb, ttl: ttl}
}

func (c *PostCache) GetRecent(ctx context.Context) ([]model.Post, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, recentPostsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (c *PostCache) SetRecent(ctx context.Context, posts []model.Post) {
	if c == nil {
		return
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, recentPostsKey, data, c.ttl).Err(); err != nil {
		log.Printf("post cache set failed: %v", err)
	}
}

func (c *PostCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, recentPostsKey).Err(); err != nil {
		log.Printf("post cache invalidate failed: %v", err)
	}
}
