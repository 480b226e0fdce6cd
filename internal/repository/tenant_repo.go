package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"garagehub/internal/model"
)

// TenantRepo handles MongoDB operations for tenant accounts
type TenantRepo interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

type tenantRepo struct {
	collection *mongo.Collection
}

// NewTenantRepo creates a new tenant repository
func NewTenantRepo(db *mongo.Database) TenantRepo {
	return &tenantRepo{
		collection: db.Collection("tenants"),
	}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	tenant.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tenant)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tenant)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&tenant)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
