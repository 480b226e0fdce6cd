package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"garagehub/internal/model"
)

// StatsCache tracks per-tenant evaluation counters in Redis for the
// dashboard: total evaluations, per-kind counts and per-recommendation
// counts.
type StatsCache interface {
	RecordSurface(ctx context.Context, tenantID string, score int) error
	RecordTyres(ctx context.Context, tenantID string, rec model.TyreRecommendationLevel) error
	GetStats(ctx context.Context, tenantID string) (map[string]int64, error)
}

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new stats cache
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{client: client}
}

func (c *statsCache) key(tenantID string) string {
	return fmt.Sprintf("tenant:%s:stats", tenantID)
}

func (c *statsCache) RecordSurface(ctx context.Context, tenantID string, score int) error {
	key := c.key(tenantID)
	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, key, "total", 1)
	pipe.HIncrBy(ctx, key, "surface", 1)
	pipe.HIncrBy(ctx, key, "surface_score_sum", int64(score))
	_, err := pipe.Exec(ctx)
	return err
}

func (c *statsCache) RecordTyres(ctx context.Context, tenantID string, rec model.TyreRecommendationLevel) error {
	key := c.key(tenantID)
	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, key, "total", 1)
	pipe.HIncrBy(ctx, key, "tyres", 1)
	pipe.HIncrBy(ctx, key, "rec:"+string(rec), 1)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *statsCache) GetStats(ctx context.Context, tenantID string) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, c.key(tenantID)).Result()
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		stats[field] = n
	}
	return stats, nil
}
