package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "authz:owned-loans:"

// Cache stores owned-loan-id sets in redis with TTL expiry.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, accountID string, now time.Time) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+accountID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var loanIDs []string
	if err := json.Unmarshal([]byte(raw), &loanIDs); err != nil {
		// Treat a corrupt entry as a miss and let the caller refill it.
		_ = c.client.Del(ctx, keyPrefix+accountID).Err()
		return nil, false, nil
	}
	return loanIDs, true, nil
}

func (c *Cache) Set(ctx context.Context, accountID string, loanIDs []string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(loanIDs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+accountID, payload, ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, accountID string) error {
	return c.client.Del(ctx, keyPrefix+accountID).Err()
}
