package redis

import (
	"context"
	"encoding/json"
	"time"

	"referral-giveaway-bot/internal/domain/season"
	rplatform "referral-giveaway-bot/internal/platform/redis"
)

const keyActiveSeason = "season:active"

// SeasonCache keeps the active season in Redis so hot paths skip Postgres.
// Entries never outlive the season they describe.
type SeasonCache struct {
	client *rplatform.Client
	maxTTL time.Duration
}

func NewSeasonCache(client *rplatform.Client, maxTTL time.Duration) *SeasonCache {
	return &SeasonCache{client: client, maxTTL: maxTTL}
}

// Get returns the cached season or nil on miss.
func (c *SeasonCache) Get(ctx context.Context) (*season.Season, error) {
	v, err := c.client.Get(ctx, keyActiveSeason).Bytes()
	if err != nil {
		if isNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var s season.Season
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Set stores s until it ends or maxTTL elapses, whichever is first.
func (c *SeasonCache) Set(ctx context.Context, s *season.Season, now time.Time) error {
	ttl := s.EndsAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	if c.maxTTL > 0 && ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyActiveSeason, b, ttl).Err()
}

// Invalidate drops the cached season.
func (c *SeasonCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keyActiveSeason).Err()
}
