package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"garagehub/internal/model"
)

// PolicyCache caches tenant tyre policies in Redis. The engine reads a
// single snapshot per evaluation; the cache is invalidated whenever
// tenant administration updates the policy.
type PolicyCache interface {
	Get(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error)
	Set(ctx context.Context, policy *model.TenantTyrePolicy) error
	Invalidate(ctx context.Context, tenantID string) error
}

type policyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPolicyCache creates a new policy cache
func NewPolicyCache(client *redis.Client) PolicyCache {
	return &policyCache{
		client: client,
		ttl:    10 * time.Minute,
	}
}

func (c *policyCache) key(tenantID string) string {
	return fmt.Sprintf("tenant:%s:policy:tyres", tenantID)
}

func (c *policyCache) Get(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error) {
	data, err := c.client.Get(ctx, c.key(tenantID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var policy model.TenantTyrePolicy
	if err := json.Unmarshal([]byte(data), &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (c *policyCache) Set(ctx context.Context, policy *model.TenantTyrePolicy) error {
	data, err := json.Marshal(policy)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(policy.TenantID), data, c.ttl).Err()
}

func (c *policyCache) Invalidate(ctx context.Context, tenantID string) error {
	return c.client.Del(ctx, c.key(tenantID)).Err()
}
