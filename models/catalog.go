package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogEntry is read-only reference data; tenant-custom measures created
// from an entry inherit its defaults and, for qualitative entries, its
// option set.
type CatalogEntry struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Unit        string             `json:"unit" bson:"unit"`
	Direction   MeasureDirection   `json:"direction" bson:"direction"`
	MeasureType MeasureType        `json:"measure_type" bson:"measure_type"`
	Category    string             `json:"category" bson:"category"`
	Aggregation Aggregation        `json:"aggregation" bson:"aggregation"`
	Options     []MeasureOption    `json:"options,omitempty" bson:"options,omitempty"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
}
