package service

import (
	"context"
	"fmt"
	"log"

	"garagehub/internal/cache"
	"garagehub/internal/engine"
	"garagehub/internal/model"
	"garagehub/internal/repository"
)

// PolicyService resolves and administers tenant tyre threshold
// policies. The engine receives a point-in-time snapshot per
// evaluation; it never reads policy through ambient state.
type PolicyService struct {
	policyRepo  repository.PolicyRepo
	policyCache cache.PolicyCache
	broadcaster Broadcaster
}

// NewPolicyService creates a new policy service
func NewPolicyService(policyRepo repository.PolicyRepo, policyCache cache.PolicyCache) *PolicyService {
	return &PolicyService{
		policyRepo:  policyRepo,
		policyCache: policyCache,
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *PolicyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Snapshot returns the tenant's policy as configured at this moment.
// Returns ErrPolicyNotConfigured when the tenant has none; the engine
// never substitutes hard-coded defaults for a tyre evaluation.
func (s *PolicyService) Snapshot(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error) {
	cached, err := s.policyCache.Get(ctx, tenantID)
	if err != nil {
		// Cache trouble must not block evaluations; fall through to Mongo.
		log.Printf("[Policy] Cache read failed for tenant %s: %v", tenantID, err)
	}
	if cached != nil {
		return cached, nil
	}

	policy, err := s.policyRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: tenant %s", engine.ErrPolicyNotConfigured, tenantID)
	}

	if err := s.policyCache.Set(ctx, policy); err != nil {
		log.Printf("[Policy] Cache write failed for tenant %s: %v", tenantID, err)
	}
	return policy, nil
}

// Get returns the tenant's policy for the admin UI, nil when unset
func (s *PolicyService) Get(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error) {
	return s.policyRepo.GetByTenantID(ctx, tenantID)
}

// Update validates and stores the tenant's policy, invalidates the
// cached snapshot and notifies connected dashboards.
func (s *PolicyService) Update(ctx context.Context, tenantID string, policy *model.TenantTyrePolicy) error {
	policy.TenantID = tenantID
	if err := policy.Validate(); err != nil {
		return engine.Validationf("invalid policy: %v", err)
	}

	if err := s.policyRepo.Upsert(ctx, policy); err != nil {
		return err
	}
	if err := s.policyCache.Invalidate(ctx, tenantID); err != nil {
		log.Printf("[Policy] Cache invalidation failed for tenant %s: %v", tenantID, err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToTenant(tenantID, "policy_updated", map[string]string{
			"tenantId": tenantID,
		})
	}
	return nil
}
