package services

import (
	"math"
	"time"

	"tractionservice/models"
)

// ComputeProgress scores a measure's latest actual against its latest target
// and classifies the result on the link's own thresholds, so the same measure
// can carry a different status per link. Returns nil when either series is
// still empty.
//
// The function is pure: now is a parameter, nothing is cached, and identical
// inputs always produce identical output.
func ComputeProgress(measure *models.Measure, link *models.MeasureLink, latestTarget, latestActual *models.MeasureData, now time.Time) *models.Progress {
	if latestTarget == nil || latestActual == nil {
		return nil
	}

	target := latestTarget.PostValue
	actual := latestActual.PostValue

	variance := actual - target
	variancePct := directionalVariancePct(measure.Direction, target, actual)

	// Thresholds are expressed as "percent of target reached"; shifting them
	// by -100 puts them on the variance-percentage scale.
	var status models.ProgressStatus
	switch {
	case variancePct >= link.ThresholdPct-100:
		status = models.StatusOnTrack
	case variancePct >= link.RiskThresholdPct-100:
		status = models.StatusBehind
	default:
		status = models.StatusAtRisk
	}

	// Floored so a target past its date by less than a day already reads
	// as day -1 rather than 0.
	daysUntilTarget := int(math.Floor(latestTarget.PostDate.Sub(now).Hours() / 24))

	return &models.Progress{
		Status:             status,
		ProgressPercentage: progressPercentage(measure.Direction, target, actual),
		Variance:           variance,
		VariancePercentage: variancePct,
		TargetValue:        target,
		ActualValue:        actual,
		TargetDate:         latestTarget.PostDate,
		DaysUntilTarget:    daysUntilTarget,
		IsOverdue:          daysUntilTarget < 0 && status != models.StatusOnTrack,
	}
}

// directionalVariancePct normalizes variance so that favorable is always
// positive: for decrease measures, exceeding the target in the bad direction
// lowers the percentage rather than raising it.
func directionalVariancePct(direction models.MeasureDirection, target, actual float64) float64 {
	if target == 0 {
		// A zero target makes the percentage formula undefined; pin the
		// degenerate case to 0 / +-100 by favorability.
		if actual == 0 {
			return 0
		}
		favorable := actual > 0
		if direction == models.DirectionDecrease {
			favorable = actual < 0
		}
		if favorable {
			return 100
		}
		return -100
	}

	raw := (actual - target) / math.Abs(target) * 100
	if direction == models.DirectionDecrease {
		return -raw
	}
	return raw
}

// progressPercentage expresses the actual as percent of target along the
// measure's direction, 0 to 100+.
func progressPercentage(direction models.MeasureDirection, target, actual float64) float64 {
	var pct float64
	switch {
	case direction == models.DirectionDecrease && actual == 0:
		pct = 100
	case direction == models.DirectionDecrease && target == 0:
		pct = 0
	case direction == models.DirectionDecrease:
		pct = target / actual * 100
	case target == 0:
		if actual > 0 {
			pct = 100
		}
	default:
		pct = actual / target * 100
	}

	return math.Max(0, pct)
}
