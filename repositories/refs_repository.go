package repository

import (
	"context"
	"errors"

	"tractionservice/apperrors"
	"tractionservice/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RefsRepository checks referenced persons, goals and strategies, which are
// owned and mutated by surrounding services.
type RefsRepository interface {
	PersonExists(ctx context.Context, tenantID string, id primitive.ObjectID) (bool, error)
	GoalExists(ctx context.Context, tenantID string, id primitive.ObjectID) (bool, error)
	GetStrategy(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Strategy, error)
}

type refsRepository struct {
	persons    *mongo.Collection
	goals      *mongo.Collection
	strategies *mongo.Collection
}

func NewRefsRepository(db *mongo.Database) RefsRepository {
	return &refsRepository{
		persons:    db.Collection("persons"),
		goals:      db.Collection("goals"),
		strategies: db.Collection("strategies"),
	}
}

func (r *refsRepository) PersonExists(ctx context.Context, tenantID string, id primitive.ObjectID) (bool, error) {
	count, err := r.persons.CountDocuments(ctx, liveFilter(tenantID, id))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *refsRepository) GoalExists(ctx context.Context, tenantID string, id primitive.ObjectID) (bool, error) {
	count, err := r.goals.CountDocuments(ctx, liveFilter(tenantID, id))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *refsRepository) GetStrategy(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Strategy, error) {
	var strategy models.Strategy
	err := r.strategies.FindOne(ctx, liveFilter(tenantID, id)).Decode(&strategy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("strategy %s not found", id.Hex())
		}
		return nil, err
	}

	return &strategy, nil
}
