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

type MeasureLinkRepository interface {
	Create(ctx context.Context, link *models.MeasureLink) error
	GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureLink, error)
	Update(ctx context.Context, link *models.MeasureLink) error
	Find(ctx context.Context, tenantID string, filter models.LinkQueryFilter) ([]models.MeasureLink, error)
	FindByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID) ([]models.MeasureLink, error)
	FindDuplicate(ctx context.Context, tenantID string, measureID, personID primitive.ObjectID, goalID, strategyID, excludeID *primitive.ObjectID) (*models.MeasureLink, error)
	ClearPrimary(ctx context.Context, tenantID string, measureID primitive.ObjectID, goalID *primitive.ObjectID, exceptID primitive.ObjectID, updatedBy string) error
	UpdatePersonForMeasure(ctx context.Context, tenantID string, measureID, personID primitive.ObjectID, updatedBy string) error
	CountByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID) (int64, error)
	SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error
	SoftDeleteByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, updatedBy string) error
	GetLinkTypeDistribution(ctx context.Context, tenantID string) ([]models.LinkTypeStats, error)
}

type measureLinkRepository struct {
	collection *mongo.Collection
}

func NewMeasureLinkRepository(db *mongo.Database) MeasureLinkRepository {
	return &measureLinkRepository{
		collection: db.Collection("measure_links"),
	}
}

func (r *measureLinkRepository) Create(ctx context.Context, link *models.MeasureLink) error {
	link.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, link)
	return err
}

func (r *measureLinkRepository) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureLink, error) {
	var link models.MeasureLink
	err := r.collection.FindOne(ctx, liveFilter(tenantID, id)).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("measure link %s not found", id.Hex())
		}
		return nil, err
	}

	return &link, nil
}

func (r *measureLinkRepository) Update(ctx context.Context, link *models.MeasureLink) error {
	filter := liveFilter(link.TenantID, link.ID)
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": link})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return apperrors.NotFound("measure link %s not found", link.ID.Hex())
	}

	return nil
}

func (r *measureLinkRepository) Find(ctx context.Context, tenantID string, filter models.LinkQueryFilter) ([]models.MeasureLink, error) {
	query := bson.M{"tenant_id": tenantID, "is_deleted": bson.M{"$ne": true}}

	if filter.MeasureID != nil {
		query["measure_id"] = *filter.MeasureID
	}
	if filter.StrategyID != nil {
		query["strategy_id"] = *filter.StrategyID
	}
	if filter.GoalID != nil {
		query["goal_id"] = *filter.GoalID
		if !filter.IncludeAll && filter.StrategyID == nil {
			// Goal-level links only; strategy-scoped links are opted in
			// through include_all or an explicit strategy filter.
			query["strategy_id"] = nil
		}
	}
	if filter.PersonID != nil {
		query["person_id"] = *filter.PersonID
		if !filter.IncludeAll && filter.GoalID == nil && filter.StrategyID == nil {
			// Personal-only links unless the caller asks for the person's
			// goal/strategy-scoped links too.
			query["goal_id"] = nil
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}, {Key: "linked_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []models.MeasureLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}

	return links, nil
}

func (r *measureLinkRepository) FindByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID) ([]models.MeasureLink, error) {
	return r.Find(ctx, tenantID, models.LinkQueryFilter{MeasureID: &measureID, IncludeAll: true})
}

func (r *measureLinkRepository) FindDuplicate(ctx context.Context, tenantID string, measureID, personID primitive.ObjectID, goalID, strategyID, excludeID *primitive.ObjectID) (*models.MeasureLink, error) {
	query := bson.M{
		"tenant_id":   tenantID,
		"measure_id":  measureID,
		"person_id":   personID,
		"goal_id":     goalID,
		"strategy_id": strategyID,
		"is_deleted":  bson.M{"$ne": true},
	}
	if excludeID != nil {
		query["_id"] = bson.M{"$ne": *excludeID}
	}

	var link models.MeasureLink
	err := r.collection.FindOne(ctx, query).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &link, nil
}

func (r *measureLinkRepository) ClearPrimary(ctx context.Context, tenantID string, measureID primitive.ObjectID, goalID *primitive.ObjectID, exceptID primitive.ObjectID, updatedBy string) error {
	filter := bson.M{
		"tenant_id":  tenantID,
		"measure_id": measureID,
		"goal_id":    goalID,
		"is_primary": true,
		"_id":        bson.M{"$ne": exceptID},
		"is_deleted": bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			"is_primary":          false,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

func (r *measureLinkRepository) UpdatePersonForMeasure(ctx context.Context, tenantID string, measureID, personID primitive.ObjectID, updatedBy string) error {
	filter := bson.M{
		"tenant_id":  tenantID,
		"measure_id": measureID,
		"is_deleted": bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			"person_id":           personID,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

func (r *measureLinkRepository) CountByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"tenant_id":  tenantID,
		"measure_id": measureID,
		"is_deleted": bson.M{"$ne": true},
	}

	return r.collection.CountDocuments(ctx, filter)
}

func (r *measureLinkRepository) SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
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
		return apperrors.NotFound("measure link %s not found or already deleted", id.Hex())
	}

	return nil
}

func (r *measureLinkRepository) SoftDeleteByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, updatedBy string) error {
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

// Distribution of live links bucketed by derived link type.
func (r *measureLinkRepository) GetLinkTypeDistribution(ctx context.Context, tenantID string) ([]models.LinkTypeStats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"tenant_id": tenantID, "is_deleted": bson.M{"$ne": true}}}},

		bson.D{{Key: "$addFields", Value: bson.M{
			"link_type": bson.M{
				"$switch": bson.M{
					"branches": []bson.M{
						{"case": bson.M{"$ne": []interface{}{"$strategy_id", nil}}, "then": "strategy"},
						{"case": bson.M{"$ne": []interface{}{"$goal_id", nil}}, "then": "goal"},
					},
					"default": "personal",
				},
			},
		}}},

		bson.D{{Key: "$group", Value: bson.M{
			"_id":               "$link_type",
			"count":             bson.M{"$sum": 1},
			"avg_weight":        bson.M{"$avg": "$weight"},
			"avg_threshold_pct": bson.M{"$avg": "$threshold_pct"},
			"primary_count":     bson.M{"$sum": bson.M{"$cond": []interface{}{"$is_primary", 1, 0}}},
		}}},

		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.LinkTypeStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}
