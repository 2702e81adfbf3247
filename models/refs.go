package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Person, Goal and Strategy are owned by surrounding services; the engine
// only reads them for existence and membership checks on link mutations.

type Person struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  string             `json:"tenant_id" bson:"tenant_id"`
	Name      string             `json:"name" bson:"name"`
	IsDeleted bool               `json:"is_deleted" bson:"is_deleted"`
}

type Goal struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  string             `json:"tenant_id" bson:"tenant_id"`
	Name      string             `json:"name" bson:"name"`
	IsDeleted bool               `json:"is_deleted" bson:"is_deleted"`
}

type Strategy struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  string             `json:"tenant_id" bson:"tenant_id"`
	GoalID    primitive.ObjectID `json:"goal_id" bson:"goal_id"`
	Name      string             `json:"name" bson:"name"`
	IsDeleted bool               `json:"is_deleted" bson:"is_deleted"`
}
