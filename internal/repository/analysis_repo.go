package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garagehub/internal/model"
)

// AnalysisRepo handles MongoDB operations for the analysis audit trail
type AnalysisRepo interface {
	Save(ctx context.Context, record *model.AnalysisRecord) error
	GetByAnalysisID(ctx context.Context, tenantID, analysisID string) (*model.AnalysisRecord, error)
	ListByTenant(ctx context.Context, tenantID string, limit int64) ([]*model.AnalysisRecord, error)
}

type analysisRepo struct {
	collection *mongo.Collection
}

// NewAnalysisRepo creates a new analysis repository
func NewAnalysisRepo(db *mongo.Database) AnalysisRepo {
	return &analysisRepo{
		collection: db.Collection("analyses"),
	}
}

func (r *analysisRepo) Save(ctx context.Context, record *model.AnalysisRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	record.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *analysisRepo) GetByAnalysisID(ctx context.Context, tenantID, analysisID string) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	err := r.collection.FindOne(ctx, bson.M{"tenantId": tenantID, "analysisId": analysisID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *analysisRepo) ListByTenant(ctx context.Context, tenantID string, limit int64) ([]*model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.AnalysisRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
