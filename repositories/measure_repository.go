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
)

type MeasureRepository interface {
	Create(ctx context.Context, measure *models.Measure) error
	GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Measure, error)
	GetAll(ctx context.Context, tenantID string) ([]models.Measure, error)
	Update(ctx context.Context, measure *models.Measure) error
	UpdateOwner(ctx context.Context, tenantID string, measureID, ownerID primitive.ObjectID, updatedBy string) error
	SetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, options []models.MeasureOption, updatedBy string) error
	UnsetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error
	AppendValue(ctx context.Context, tenantID string, id primitive.ObjectID, point models.ValuePoint, updatedBy string) error
	SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error
}

type measureRepository struct {
	collection *mongo.Collection
}

func NewMeasureRepository(db *mongo.Database) MeasureRepository {
	return &measureRepository{
		collection: db.Collection("measures"),
	}
}

func liveFilter(tenantID string, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "tenant_id": tenantID, "is_deleted": bson.M{"$ne": true}}
}

func (r *measureRepository) Create(ctx context.Context, measure *models.Measure) error {
	measure.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, measure)
	return err
}

func (r *measureRepository) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Measure, error) {
	var measure models.Measure
	err := r.collection.FindOne(ctx, liveFilter(tenantID, id)).Decode(&measure)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("measure %s not found", id.Hex())
		}
		return nil, err
	}

	return &measure, nil
}

func (r *measureRepository) GetAll(ctx context.Context, tenantID string) ([]models.Measure, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID, "is_deleted": bson.M{"$ne": true}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var measures []models.Measure
	if err = cursor.All(ctx, &measures); err != nil {
		return nil, err
	}

	return measures, nil
}

func (r *measureRepository) Update(ctx context.Context, measure *models.Measure) error {
	filter := liveFilter(measure.TenantID, measure.ID)
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": measure})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure %s not found", measure.ID.Hex())
	}

	return nil
}

func (r *measureRepository) UpdateOwner(ctx context.Context, tenantID string, measureID, ownerID primitive.ObjectID, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"owner_id":            ownerID,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, liveFilter(tenantID, measureID), update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure %s not found", measureID.Hex())
	}

	return nil
}

func (r *measureRepository) SetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, options []models.MeasureOption, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"options":             options,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, liveFilter(tenantID, id), update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure %s not found", id.Hex())
	}

	return nil
}

func (r *measureRepository) UnsetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
	update := bson.M{
		"$unset": bson.M{"options": ""},
		"$set": bson.M{
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, liveFilter(tenantID, id), update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure %s not found", id.Hex())
	}

	return nil
}

func (r *measureRepository) AppendValue(ctx context.Context, tenantID string, id primitive.ObjectID, point models.ValuePoint, updatedBy string) error {
	update := bson.M{
		"$push": bson.M{"historical_values": point},
		"$set": bson.M{
			"current_value":       point.Value,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, liveFilter(tenantID, id), update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure %s not found", id.Hex())
	}

	return nil
}

func (r *measureRepository) SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
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
		return apperrors.NotFound("measure %s not found or already deleted", id.Hex())
	}

	return nil
}
