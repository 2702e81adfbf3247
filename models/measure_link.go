package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LinkType string

const (
	LinkTypePersonal LinkType = "personal"
	LinkTypeGoal     LinkType = "goal"
	LinkTypeStrategy LinkType = "strategy"
)

const (
	DefaultThresholdPct     = 80.0
	DefaultRiskThresholdPct = 50.0
	DefaultWeight           = 1.0
)

// MeasureLink binds a measure to a person and optionally a goal/strategy,
// carrying the per-link thresholds progress is classified against.
type MeasureLink struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID         string              `json:"tenant_id" bson:"tenant_id"`
	MeasureID        primitive.ObjectID  `json:"measure_id" bson:"measure_id"`
	PersonID         primitive.ObjectID  `json:"person_id" bson:"person_id"`
	GoalID           *primitive.ObjectID `json:"goal_id" bson:"goal_id"`
	StrategyID       *primitive.ObjectID `json:"strategy_id" bson:"strategy_id"`
	ThresholdPct     float64             `json:"threshold_pct" bson:"threshold_pct"`
	RiskThresholdPct float64             `json:"risk_threshold_pct" bson:"risk_threshold_pct"`
	Weight           float64             `json:"weight" bson:"weight"`
	DisplayOrder     int                 `json:"display_order" bson:"display_order"`
	IsPrimary        bool                `json:"is_primary" bson:"is_primary"`
	LinkedAt         time.Time           `json:"linked_at" bson:"linked_at"`
	IsDeleted        bool                `json:"is_deleted" bson:"is_deleted"`
	Metadata         Metadata            `json:"metadata" bson:"metadata"`

	// Derived on read, never persisted.
	LinkType LinkType  `json:"link_type" bson:"-"`
	Progress *Progress `json:"progress,omitempty" bson:"-"`
}

// DeriveLinkType computes the link's scope from which foreign keys are set.
func (l *MeasureLink) DeriveLinkType() LinkType {
	switch {
	case l.StrategyID != nil:
		return LinkTypeStrategy
	case l.GoalID != nil:
		return LinkTypeGoal
	default:
		return LinkTypePersonal
	}
}

type CreateMeasureLinkRequest struct {
	MeasureID        string   `json:"measure_id" validate:"required"`
	PersonID         string   `json:"person_id" validate:"required"`
	GoalID           *string  `json:"goal_id"`
	StrategyID       *string  `json:"strategy_id"`
	ThresholdPct     *float64 `json:"threshold_pct" validate:"omitempty,min=0,max=100"`
	RiskThresholdPct *float64 `json:"risk_threshold_pct" validate:"omitempty,min=0,max=100"`
	Weight           *float64 `json:"weight" validate:"omitempty,min=0,max=1"`
	DisplayOrder     *int     `json:"display_order"`
	IsPrimary        *bool    `json:"is_primary"`
	// Derived field; supplying it is an error.
	LinkType *string `json:"link_type"`
}

// UpdateMeasureLinkRequest has partial-update semantics: only supplied fields
// change. Clearing the optional foreign keys is explicit, since JSON null and
// absent are indistinguishable after decoding into pointers.
type UpdateMeasureLinkRequest struct {
	PersonID         *string  `json:"person_id"`
	GoalID           *string  `json:"goal_id"`
	ClearGoal        bool     `json:"clear_goal"`
	StrategyID       *string  `json:"strategy_id"`
	ClearStrategy    bool     `json:"clear_strategy"`
	ThresholdPct     *float64 `json:"threshold_pct" validate:"omitempty,min=0,max=100"`
	RiskThresholdPct *float64 `json:"risk_threshold_pct" validate:"omitempty,min=0,max=100"`
	Weight           *float64 `json:"weight" validate:"omitempty,min=0,max=1"`
	DisplayOrder     *int     `json:"display_order"`
	IsPrimary        *bool    `json:"is_primary"`
	LinkType         *string  `json:"link_type"`
}

// LinkQueryFilter narrows a measure-link query; at least one id filter is
// required. IncludeAll widens goal filters to the goal's strategy-scoped
// links and person filters to the person's goal/strategy-scoped links.
type LinkQueryFilter struct {
	MeasureID  *primitive.ObjectID
	PersonID   *primitive.ObjectID
	GoalID     *primitive.ObjectID
	StrategyID *primitive.ObjectID
	IncludeAll bool
}

// Empty reports whether no id filter was supplied.
func (f LinkQueryFilter) Empty() bool {
	return f.MeasureID == nil && f.PersonID == nil && f.GoalID == nil && f.StrategyID == nil
}

// DeleteLinkResult reports a completed link deletion; Warning is set when the
// deletion left a tenant-custom measure with no remaining links.
type DeleteLinkResult struct {
	DeletedID       primitive.ObjectID `json:"deleted_id"`
	OrphanedMeasure bool               `json:"orphaned_measure"`
	Warning         string             `json:"warning,omitempty"`
}

// LinkTypeStats is one bucket of the link distribution analytics.
type LinkTypeStats struct {
	LinkType        string  `json:"link_type" bson:"_id"`
	Count           int     `json:"count" bson:"count"`
	AvgWeight       float64 `json:"avg_weight" bson:"avg_weight"`
	AvgThresholdPct float64 `json:"avg_threshold_pct" bson:"avg_threshold_pct"`
	PrimaryCount    int     `json:"primary_count" bson:"primary_count"`
}
