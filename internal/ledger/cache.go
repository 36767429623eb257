package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Cache keeps computed group balances in Redis so repeated balance reads do
// not replay the full bill history. Replay stays the source of truth: the
// cache is invalidated whenever a bill, settlement or supersession lands.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	observe func(result string)
}

// NewCache wraps the Redis client. A nil client disables caching; every
// lookup falls through to the loader.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// SetObserver registers a callback invoked with "hit" or "miss" on every
// cached lookup. Used to feed the cache read metrics.
func (c *Cache) SetObserver(fn func(result string)) {
	if c != nil {
		c.observe = fn
	}
}

func (c *Cache) note(result string) {
	if c.observe != nil {
		c.observe(result)
	}
}

func balancesKey(groupID string) string {
	return fmt.Sprintf("balances:%s", groupID)
}

// Fetch returns the cached balances for the group, computing and storing
// them via loader on a miss.
func (c *Cache) Fetch(ctx context.Context, groupID string, loader func(context.Context) (map[string]decimal.Decimal, error)) (map[string]decimal.Decimal, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := balancesKey(groupID)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached map[string]decimal.Decimal
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.note("hit")
			return cached, nil
		}
		// Corrupt entry: drop it and recompute.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		return nil, fmt.Errorf("ledger cache: %w", err)
	}

	c.note("miss")
	balances, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(balances); err == nil {
		c.client.Set(ctx, key, encoded, c.ttl)
	}
	return balances, nil
}

// Invalidate drops the cached balances for the group.
func (c *Cache) Invalidate(ctx context.Context, groupID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, balancesKey(groupID))
}
