package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeasureDirection string

const (
	DirectionIncrease MeasureDirection = "increase"
	DirectionDecrease MeasureDirection = "decrease"
)

type MeasureType string

const (
	MeasureTypeQuantitative MeasureType = "Quantitative"
	MeasureTypeQualitative  MeasureType = "Qualitative"
)

// Aggregation describes how raw actuals roll up for a measure.
type Aggregation struct {
	Type   string `json:"type" bson:"type" validate:"omitempty,oneof=sum average last min max"`
	Period string `json:"period" bson:"period" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
}

// MeasureOption is one qualitative option; NumericValue is what actuals record.
type MeasureOption struct {
	Label        string  `json:"label" bson:"label" validate:"required"`
	NumericValue float64 `json:"numeric_value" bson:"numeric_value"`
}

// ValuePoint is one entry of the measure's own recorded-value history,
// independent of the target/actual series used for link progress.
type ValuePoint struct {
	Value      float64   `json:"value" bson:"value"`
	RecordedBy string    `json:"recorded_by" bson:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}

type Measure struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID         string              `json:"tenant_id" bson:"tenant_id"`
	Name             string              `json:"name" bson:"name" validate:"required,max=255"`
	Description      string              `json:"description" bson:"description" validate:"max=2000"`
	Unit             string              `json:"unit" bson:"unit"`
	Direction        MeasureDirection    `json:"direction" bson:"direction" validate:"omitempty,oneof=increase decrease"`
	MeasureType      MeasureType         `json:"measure_type" bson:"measure_type" validate:"omitempty,oneof=Quantitative Qualitative"`
	Category         string              `json:"category" bson:"category"`
	OwnerID          primitive.ObjectID  `json:"owner_id" bson:"owner_id"`
	Aggregation      Aggregation         `json:"aggregation" bson:"aggregation"`
	CatalogID        *primitive.ObjectID `json:"catalog_id,omitempty" bson:"catalog_id,omitempty"`
	Options          []MeasureOption     `json:"options,omitempty" bson:"options,omitempty"`
	CurrentValue     float64             `json:"current_value" bson:"current_value"`
	HistoricalValues []ValuePoint        `json:"historical_values" bson:"historical_values"`
	IsDeleted        bool                `json:"is_deleted" bson:"is_deleted"`
	Metadata         Metadata            `json:"metadata" bson:"metadata"`
}

// UpdateMeasureRequest covers the mutable metadata of a measure. CatalogID is
// immutable after creation; supplying a different value is a conflict.
type UpdateMeasureRequest struct {
	Name        *string           `json:"name" validate:"omitempty,max=255"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Unit        *string           `json:"unit"`
	Direction   *MeasureDirection `json:"direction" validate:"omitempty,oneof=increase decrease"`
	MeasureType *MeasureType      `json:"measure_type" validate:"omitempty,oneof=Quantitative Qualitative"`
	Category    *string           `json:"category"`
	OwnerID     *string           `json:"owner_id"`
	Aggregation *Aggregation      `json:"aggregation"`
	CatalogID   *string           `json:"catalog_id"`
}

type RecordValueRequest struct {
	Value float64 `json:"value"`
}

type SetOptionsRequest struct {
	Options []MeasureOption `json:"options" validate:"required,min=2,dive"`
}
