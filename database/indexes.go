package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	measureIndexes := []mongo.IndexModel{
		// TENANT READS: default measure listings
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "is_deleted", Value: 1},
			},
			Options: options.Index().SetName("idx_tenant_is_deleted"),
		},
		// OWNER PROPAGATION: owner reassignment lookups
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "owner_id", Value: 1},
			},
			Options: options.Index().SetName("idx_tenant_owner"),
		},
	}
	if _, err := db.Collection("measures").Indexes().CreateMany(ctx, measureIndexes); err != nil {
		return fmt.Errorf("failed to create measure indexes: %v", err)
	}

	linkIndexes := []mongo.IndexModel{
		// DUPLICATE DETECTION: the link tuple is unique among live links
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "measure_id", Value: 1},
				{Key: "person_id", Value: 1},
				{Key: "goal_id", Value: 1},
				{Key: "strategy_id", Value: 1},
			},
			Options: options.Index().
				SetName("idx_unique_link_tuple").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_deleted": bson.M{"$ne": true}}),
		},
		// PRIMARY REASSIGNMENT: clearing the previous primary on a (measure, goal) pair
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "measure_id", Value: 1},
				{Key: "goal_id", Value: 1},
				{Key: "is_primary", Value: 1},
			},
			Options: options.Index().SetName("idx_measure_goal_primary"),
		},
		// QUERY FILTERS: person and goal scoped link listings
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "person_id", Value: 1},
				{Key: "is_deleted", Value: 1},
			},
			Options: options.Index().SetName("idx_tenant_person_is_deleted"),
		},
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "goal_id", Value: 1},
				{Key: "is_deleted", Value: 1},
			},
			Options: options.Index().SetName("idx_tenant_goal_is_deleted"),
		},
	}
	if _, err := db.Collection("measure_links").Indexes().CreateMany(ctx, linkIndexes); err != nil {
		return fmt.Errorf("failed to create measure link indexes: %v", err)
	}

	dataIndexes := []mongo.IndexModel{
		// SERIES READS: latest-by-category and chronological charting
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "measure_id", Value: 1},
				{Key: "data_category", Value: 1},
				{Key: "post_date", Value: -1},
			},
			Options: options.Index().SetName("idx_measure_category_post_date"),
		},
		// CASCADE DELETE: marking a measure's whole series
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "measure_id", Value: 1},
				{Key: "is_deleted", Value: 1},
			},
			Options: options.Index().SetName("idx_measure_is_deleted"),
		},
	}
	if _, err := db.Collection("measure_data").Indexes().CreateMany(ctx, dataIndexes); err != nil {
		return fmt.Errorf("failed to create measure data indexes: %v", err)
	}

	return nil
}
