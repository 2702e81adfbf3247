package repository

import (
	"context"
	"errors"

	"tractionservice/apperrors"
	"tractionservice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepository reads the shared measure catalog. The catalog is
// reference data; the engine never writes to it.
type CatalogRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogEntry, error)
	GetAll(ctx context.Context) ([]models.CatalogEntry, error)
}

type catalogRepository struct {
	collection *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) CatalogRepository {
	return &catalogRepository{
		collection: db.Collection("measure_catalog"),
	}
}

func (r *catalogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("catalog entry %s not found", id.Hex())
		}
		return nil, err
	}

	return &entry, nil
}

func (r *catalogRepository) GetAll(ctx context.Context) ([]models.CatalogEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.CatalogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
