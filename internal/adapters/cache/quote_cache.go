package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aethernova/habits-api/internal/core/services"
)

var _ services.QuoteCache = (*RedisQuoteCache)(nil)

// RedisQuoteCache keeps the quote of the day under quotes:daily:<date>.
type RedisQuoteCache struct {
	client *redis.Client
}

func NewRedisQuoteCache(client *redis.Client) *RedisQuoteCache {
	return &RedisQuoteCache{client: client}
}

func quoteKey(date string) string {
	return fmt.Sprintf("quotes:daily:%s", date)
}

// GetQuote returns nil, nil when nothing is cached for date.
func (c *RedisQuoteCache) GetQuote(ctx context.Context, date string) (*services.Quote, error) {
	val, err := c.client.Get(ctx, quoteKey(date)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("quote cache get: %w", err)
	}

	var q services.Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		c.client.Del(ctx, quoteKey(date))
		return nil, nil
	}
	return &q, nil
}

func (c *RedisQuoteCache) SetQuote(ctx context.Context, q services.Quote, ttl time.Duration) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, quoteKey(q.Date), data, ttl).Err(); err != nil {
		return fmt.Errorf("quote cache set: %w", err)
	}
	return nil
}
