package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	rplatform "referral-giveaway-bot/internal/platform/redis"
)

// SettingsCache mirrors boolean settings with a short TTL. Postgres stays the
// source of truth; a write invalidates the key for every instance.
type SettingsCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewSettingsCache(client *rplatform.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

func (c *SettingsCache) key(name string) string { return fmt.Sprintf("settings:%s", name) }

// GetBool returns (value, true) on hit and (false, false) on miss.
func (c *SettingsCache) GetBool(ctx context.Context, name string) (bool, bool, error) {
	v, err := c.client.Get(ctx, c.key(name)).Result()
	if err != nil {
		if isNil(err) {
			return false, false, nil
		}
		return false, false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, err
	}
	return b, true, nil
}

func (c *SettingsCache) SetBool(ctx context.Context, name string, value bool) error {
	return c.client.Set(ctx, c.key(name), strconv.FormatBool(value), c.ttl).Err()
}

func (c *SettingsCache) Invalidate(ctx context.Context, name string) error {
	return c.client.Del(ctx, c.key(name)).Err()
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
