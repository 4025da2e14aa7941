package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusCache is an optional redis read-through cache for per-user status
// maps. A nil *StatusCache disables caching entirely; every method is
// nil-safe so the service never has to branch on whether redis is configured.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func statusCacheKey(userAddress string) string {
	return "verification-status:" + userAddress
}

// Get returns the cached status map for a user, or ok=false on miss.
func (c *StatusCache) Get(ctx context.Context, userAddress string) (map[string]string, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, statusCacheKey(userAddress)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("status cache get failed for %s: %v", userAddress, err)
		}
		return nil, false
	}
	var statuses map[string]string
	if err := json.Unmarshal([]byte(val), &statuses); err != nil {
		return nil, false
	}
	return statuses, true
}

// Set stores the status map for a user. Cache errors are logged, not returned.
func (c *StatusCache) Set(ctx context.Context, userAddress string, statuses map[string]string) {
	if c == nil {
		return
	}
	data, err := json.Marshal(statuses)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusCacheKey(userAddress), data, c.ttl).Err(); err != nil {
		log.Printf("status cache set failed for %s: %v", userAddress, err)
	}
}

// Invalidate drops the cached status map after a submit or review.
func (c *StatusCache) Invalidate(ctx context.Context, userAddress string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, statusCacheKey(userAddress)).Err(); err != nil {
		log.Printf("status cache invalidate failed for %s: %v", userAddress, err)
	}
}
