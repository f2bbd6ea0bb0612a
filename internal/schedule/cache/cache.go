// Package cache provides a redis-backed read-through cache for quarter
// summary records. Reads dodge the primary store on the hot athlete
// dashboard path; every slot mutation invalidates the entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"whereabouts/internal/domain"
	id "whereabouts/pkg/domain"
	"whereabouts/pkg/platform/sentinel"
)

// DefaultTTL bounds staleness for cached summaries. Completion numbers are
// recomputed after every mutation anyway; the TTL only covers missed
// invalidations.
const DefaultTTL = 5 * time.Minute

// QuarterCache caches quarter records in redis, keyed by quarter id.
type QuarterCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *QuarterCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QuarterCache{client: client, ttl: ttl}
}

func key(quarterID id.QuarterID) string {
	return "whereabouts:quarter:" + quarterID.String()
}

func (c *QuarterCache) GetQuarter(ctx context.Context, quarterID id.QuarterID) (*domain.Quarter, error) {
	raw, err := c.client.Get(ctx, key(quarterID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("cache get quarter: %w", err)
	}

	var quarter domain.Quarter
	if err := json.Unmarshal(raw, &quarter); err != nil {
		return nil, fmt.Errorf("cache decode quarter: %w", err)
	}
	return &quarter, nil
}

func (c *QuarterCache) SetQuarter(ctx context.Context, quarter *domain.Quarter) error {
	raw, err := json.Marshal(quarter)
	if err != nil {
		return fmt.Errorf("cache encode quarter: %w", err)
	}
	if err := c.client.Set(ctx, key(quarter.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set quarter: %w", err)
	}
	return nil
}

func (c *QuarterCache) Invalidate(ctx context.Context, quarterID id.QuarterID) error {
	if err := c.client.Del(ctx, key(quarterID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate quarter: %w", err)
	}
	return nil
}
