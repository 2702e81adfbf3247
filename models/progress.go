package models

import "time"

type ProgressStatus string

const (
	StatusOnTrack ProgressStatus = "on_track"
	StatusBehind  ProgressStatus = "behind"
	StatusAtRisk  ProgressStatus = "at_risk"
	StatusNoData  ProgressStatus = "no_data"
)

// Progress is the per-link scoring of a measure's latest target against its
// latest actual. Computed fresh on every read, never persisted.
type Progress struct {
	Status             ProgressStatus `json:"status"`
	ProgressPercentage float64        `json:"progress_percentage"`
	Variance           float64        `json:"variance"`
	VariancePercentage float64        `json:"variance_percentage"`
	TargetValue        float64        `json:"target_value"`
	ActualValue        float64        `json:"actual_value"`
	TargetDate         time.Time      `json:"target_date"`
	DaysUntilTarget    int            `json:"days_until_target"`
	IsOverdue          bool           `json:"is_overdue"`
}
