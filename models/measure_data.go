package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DataCategory string

const (
	DataCategoryTarget DataCategory = "Target"
	DataCategoryActual DataCategory = "Actual"
)

type ActualSubtype string

const (
	ActualSubtypeMeasured ActualSubtype = "Measured"
	ActualSubtypeEstimate ActualSubtype = "Estimate"
)

// MeasureData is one entry of a measure's target/actual time series. Targets
// carry the consolidated post/optimal/minimal triple; actuals carry the
// subtype and override audit fields. The series belongs to the measure, not
// to any link: all links to a measure read the same series.
type MeasureData struct {
	ID                      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID                string             `json:"tenant_id" bson:"tenant_id"`
	MeasureID               primitive.ObjectID `json:"measure_id" bson:"measure_id"`
	DataCategory            DataCategory       `json:"data_category" bson:"data_category"`
	PostValue               float64            `json:"post_value" bson:"post_value"`
	OptimalValue            *float64           `json:"optimal_value,omitempty" bson:"optimal_value,omitempty"`
	MinimalValue            *float64           `json:"minimal_value,omitempty" bson:"minimal_value,omitempty"`
	ActualSubtype           ActualSubtype      `json:"actual_subtype,omitempty" bson:"actual_subtype,omitempty"`
	PostDate                time.Time          `json:"post_date" bson:"post_date"`
	MeasuredPeriodStartDate *time.Time         `json:"measured_period_start_date,omitempty" bson:"measured_period_start_date,omitempty"`
	Label                   string             `json:"label,omitempty" bson:"label,omitempty"`
	ConfidenceLevel         *float64           `json:"confidence_level,omitempty" bson:"confidence_level,omitempty"`
	Rationale               string             `json:"rationale,omitempty" bson:"rationale,omitempty"`
	OriginalValue           *float64           `json:"original_value,omitempty" bson:"original_value,omitempty"`
	IsManualOverride        bool               `json:"is_manual_override" bson:"is_manual_override"`
	OverrideComment         string             `json:"override_comment,omitempty" bson:"override_comment,omitempty"`
	DataSource              string             `json:"data_source,omitempty" bson:"data_source,omitempty"`
	SourceReferenceID       string             `json:"source_reference_id,omitempty" bson:"source_reference_id,omitempty"`
	IsDeleted               bool               `json:"is_deleted" bson:"is_deleted"`
	Metadata                Metadata           `json:"metadata" bson:"metadata"`
}

// ValidateTargetOrdering enforces optimal >= post >= minimal whenever both
// bounds are present.
func (d *MeasureData) ValidateTargetOrdering() bool {
	if d.OptimalValue == nil || d.MinimalValue == nil {
		return true
	}
	return *d.OptimalValue >= d.PostValue && d.PostValue >= *d.MinimalValue
}

type CreateTargetRequest struct {
	TargetValue             float64    `json:"target_value"`
	OptimalValue            *float64   `json:"optimal_value"`
	MinimalValue            *float64   `json:"minimal_value"`
	TargetDate              time.Time  `json:"target_date" validate:"required"`
	MeasuredPeriodStartDate *time.Time `json:"measured_period_start_date"`
	Label                   string     `json:"label"`
	ConfidenceLevel         *float64   `json:"confidence_level" validate:"omitempty,min=0,max=100"`
	Rationale               string     `json:"rationale"`
	DataSource              string     `json:"data_source"`
	SourceReferenceID       string     `json:"source_reference_id"`
}

// UpdateTargetRequest mutates a target in place. The post date is immutable
// and deliberately absent.
type UpdateTargetRequest struct {
	TargetValue     *float64 `json:"target_value"`
	OptimalValue    *float64 `json:"optimal_value"`
	MinimalValue    *float64 `json:"minimal_value"`
	Label           *string  `json:"label"`
	ConfidenceLevel *float64 `json:"confidence_level" validate:"omitempty,min=0,max=100"`
	Rationale       *string  `json:"rationale"`
}

type CreateActualRequest struct {
	Value                   float64       `json:"value"`
	ActualSubtype           ActualSubtype `json:"actual_subtype" validate:"omitempty,oneof=Measured Estimate"`
	MeasurementDate         time.Time     `json:"measurement_date" validate:"required"`
	MeasuredPeriodStartDate *time.Time    `json:"measured_period_start_date"`
	Label                   string        `json:"label"`
	ConfidenceLevel         *float64      `json:"confidence_level" validate:"omitempty,min=0,max=100"`
	Rationale               string        `json:"rationale"`
	DataSource              string        `json:"data_source"`
	SourceReferenceID       string        `json:"source_reference_id"`
}

type OverrideActualRequest struct {
	Value   float64 `json:"value"`
	Comment string  `json:"comment" validate:"required"`
}

// MeasureSeries is the combined charting view of a measure's data.
type MeasureSeries struct {
	MeasureID    primitive.ObjectID `json:"measure_id"`
	Targets      []MeasureData      `json:"targets"`
	Actuals      []MeasureData      `json:"actuals"`
	LatestActual *MeasureData       `json:"latest_actual"`
}

// SeriesStats summarizes the live actuals of a measure.
type SeriesStats struct {
	MeasureID primitive.ObjectID `json:"measure_id"`
	Count     int                `json:"count"`
	Mean      float64            `json:"mean"`
	Median    float64            `json:"median"`
	StdDev    float64            `json:"std_dev"`
	Min       float64            `json:"min"`
	Max       float64            `json:"max"`
}
