package repository

import (
	"context"
	"errors"
	"time"

	"tractionservice/apperrors"
	"tractionservice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MeasureDataRepository interface {
	Create(ctx context.Context, data *models.MeasureData) error
	GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureData, error)
	Update(ctx context.Context, data *models.MeasureData) error
	FindByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, category models.DataCategory) ([]models.MeasureData, error)
	LatestByCategory(ctx context.Context, tenantID string, measureID primitive.ObjectID, category models.DataCategory) (*models.MeasureData, error)
	SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error
	SoftDeleteByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, updatedBy string) error
}

type measureDataRepository struct {
	collection *mongo.Collection
}

func NewMeasureDataRepository(db *mongo.Database) MeasureDataRepository {
	return &measureDataRepository{
		collection: db.Collection("measure_data"),
	}
}

func (r *measureDataRepository) Create(ctx context.Context, data *models.MeasureData) error {
	data.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, data)
	return err
}

func (r *measureDataRepository) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureData, error) {
	var data models.MeasureData
	err := r.collection.FindOne(ctx, liveFilter(tenantID, id)).Decode(&data)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("measure data %s not found", id.Hex())
		}
		return nil, err
	}

	return &data, nil
}

func (r *measureDataRepository) Update(ctx context.Context, data *models.MeasureData) error {
	filter := liveFilter(data.TenantID, data.ID)
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": data})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure data %s not found", data.ID.Hex())
	}

	return nil
}

func (r *measureDataRepository) FindByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, category models.DataCategory) ([]models.MeasureData, error) {
	query := bson.M{
		"tenant_id":  tenantID,
		"measure_id": measureID,
		"is_deleted": bson.M{"$ne": true},
	}
	if category != "" {
		query["data_category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "post_date", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var series []models.MeasureData
	if err = cursor.All(ctx, &series); err != nil {
		return nil, err
	}

	return series, nil
}

// LatestByCategory returns the newest live entry by post date, or nil when
// the series is empty.
func (r *measureDataRepository) LatestByCategory(ctx context.Context, tenantID string, measureID primitive.ObjectID, category models.DataCategory) (*models.MeasureData, error) {
	query := bson.M{
		"tenant_id":     tenantID,
		"measure_id":    measureID,
		"data_category": category,
		"is_deleted":    bson.M{"$ne": true},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "post_date", Value: -1}})

	var data models.MeasureData
	err := r.collection.FindOne(ctx, query, opts).Decode(&data)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &data, nil
}

func (r *measureDataRepository) SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"is_deleted":          true,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, liveFilter(tenantID, id), update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure data %s not found or already deleted", id.Hex())
	}

	return nil
}

func (r *measureDataRepository) SoftDeleteByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, updatedBy string) error {
	filter := bson.M{
		"tenant_id":  tenantID,
		"measure_id": measureID,
		"is_deleted": bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			"is_deleted":          true,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
