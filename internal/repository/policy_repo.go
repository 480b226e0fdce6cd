package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garagehub/internal/model"
)

// PolicyRepo handles MongoDB operations for tenant tyre threshold
// policies. Written by tenant administration, read-only to the engine.
type PolicyRepo interface {
	GetByTenantID(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error)
	Upsert(ctx context.Context, policy *model.TenantTyrePolicy) error
}

type policyRepo struct {
	collection *mongo.Collection
}

// NewPolicyRepo creates a new policy repository
func NewPolicyRepo(db *mongo.Database) PolicyRepo {
	return &policyRepo{
		collection: db.Collection("tyre_policies"),
	}
}

func (r *policyRepo) GetByTenantID(ctx context.Context, tenantID string) (*model.TenantTyrePolicy, error) {
	var policy model.TenantTyrePolicy
	err := r.collection.FindOne(ctx, bson.M{"tenantId": tenantID}).Decode(&policy)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepo) Upsert(ctx context.Context, policy *model.TenantTyrePolicy) error {
	policy.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"tenantId": policy.TenantID},
		policy,
		options.Replace().SetUpsert(true),
	)
	return err
}
