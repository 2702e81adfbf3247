package services

import (
	"context"
	"strings"
	"time"

	"tractionservice/apperrors"
	"tractionservice/models"
	repository "tractionservice/repositories"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeasureDataService manages the append-only target/actual series of a
// measure. Entries are only ever soft-deleted so the historical trend stays
// intact.
type MeasureDataService interface {
	CreateTarget(ctx context.Context, tenantID string, measureID primitive.ObjectID, req *models.CreateTargetRequest, actor string) (*models.MeasureData, error)
	UpdateTarget(ctx context.Context, tenantID string, targetID primitive.ObjectID, req *models.UpdateTargetRequest, actor string) (*models.MeasureData, error)
	DeleteTarget(ctx context.Context, tenantID string, targetID primitive.ObjectID, actor string) error
	CreateActual(ctx context.Context, tenantID string, measureID primitive.ObjectID, req *models.CreateActualRequest, actor string) (*models.MeasureData, error)
	OverrideActual(ctx context.Context, tenantID string, actualID primitive.ObjectID, req *models.OverrideActualRequest, actor string) (*models.MeasureData, error)
	DeleteActual(ctx context.Context, tenantID string, actualID primitive.ObjectID, actor string) error
	GetAllSeries(ctx context.Context, tenantID string, measureID primitive.ObjectID) (*models.MeasureSeries, error)
	GetSeriesStats(ctx context.Context, tenantID string, measureID primitive.ObjectID) (*models.SeriesStats, error)
}

type measureDataService struct {
	data     repository.MeasureDataRepository
	measures repository.MeasureRepository
	logger   zerolog.Logger
}

func NewMeasureDataService(
	data repository.MeasureDataRepository,
	measures repository.MeasureRepository,
	logger zerolog.Logger,
) MeasureDataService {
	return &measureDataService{
		data:     data,
		measures: measures,
		logger:   logger,
	}
}

func (s *measureDataService) CreateTarget(ctx context.Context, tenantID string, measureID primitive.ObjectID, req *models.CreateTargetRequest, actor string) (*models.MeasureData, error) {
	if _, err := s.measures.GetByID(ctx, tenantID, measureID); err != nil {
		return nil, err
	}

	now := time.Now()
	target := &models.MeasureData{
		TenantID:                tenantID,
		MeasureID:               measureID,
		DataCategory:            models.DataCategoryTarget,
		PostValue:               req.TargetValue,
		OptimalValue:            req.OptimalValue,
		MinimalValue:            req.MinimalValue,
		PostDate:                req.TargetDate,
		MeasuredPeriodStartDate: req.MeasuredPeriodStartDate,
		Label:                   req.Label,
		ConfidenceLevel:         req.ConfidenceLevel,
		Rationale:               req.Rationale,
		DataSource:              req.DataSource,
		SourceReferenceID:       req.SourceReferenceID,
		Metadata: models.Metadata{
			CreatedBy: actor,
			UpdatedBy: actor,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if !target.ValidateTargetOrdering() {
		return nil, apperrors.Validation("target values must satisfy optimal_value >= target_value >= minimal_value")
	}

	if err := s.data.Create(ctx, target); err != nil {
		return nil, err
	}

	return target, nil
}

// UpdateTarget applies a partial update; the post date is immutable and the
// three-value ordering is re-validated against the merged result.
func (s *measureDataService) UpdateTarget(ctx context.Context, tenantID string, targetID primitive.ObjectID, req *models.UpdateTargetRequest, actor string) (*models.MeasureData, error) {
	target, err := s.getByCategory(ctx, tenantID, targetID, models.DataCategoryTarget)
	if err != nil {
		return nil, err
	}

	if req.TargetValue != nil {
		target.PostValue = *req.TargetValue
	}
	if req.OptimalValue != nil {
		target.OptimalValue = req.OptimalValue
	}
	if req.MinimalValue != nil {
		target.MinimalValue = req.MinimalValue
	}
	if req.Label != nil {
		target.Label = *req.Label
	}
	if req.ConfidenceLevel != nil {
		target.ConfidenceLevel = req.ConfidenceLevel
	}
	if req.Rationale != nil {
		target.Rationale = *req.Rationale
	}

	if !target.ValidateTargetOrdering() {
		return nil, apperrors.Validation("target values must satisfy optimal_value >= target_value >= minimal_value")
	}

	target.Metadata.UpdatedBy = actor
	target.Metadata.UpdatedAt = time.Now()

	if err := s.data.Update(ctx, target); err != nil {
		return nil, err
	}

	return target, nil
}

func (s *measureDataService) DeleteTarget(ctx context.Context, tenantID string, targetID primitive.ObjectID, actor string) error {
	if _, err := s.getByCategory(ctx, tenantID, targetID, models.DataCategoryTarget); err != nil {
		return err
	}

	return s.data.SoftDelete(ctx, tenantID, targetID, actor)
}

func (s *measureDataService) CreateActual(ctx context.Context, tenantID string, measureID primitive.ObjectID, req *models.CreateActualRequest, actor string) (*models.MeasureData, error) {
	if _, err := s.measures.GetByID(ctx, tenantID, measureID); err != nil {
		return nil, err
	}

	if req.MeasurementDate.After(time.Now()) {
		return nil, apperrors.Validation("measurement date must not be in the future")
	}

	subtype := req.ActualSubtype
	if subtype == "" {
		subtype = models.ActualSubtypeMeasured
	}

	now := time.Now()
	actual := &models.MeasureData{
		TenantID:                tenantID,
		MeasureID:               measureID,
		DataCategory:            models.DataCategoryActual,
		PostValue:               req.Value,
		ActualSubtype:           subtype,
		PostDate:                req.MeasurementDate,
		MeasuredPeriodStartDate: req.MeasuredPeriodStartDate,
		Label:                   req.Label,
		ConfidenceLevel:         req.ConfidenceLevel,
		Rationale:               req.Rationale,
		DataSource:              req.DataSource,
		SourceReferenceID:       req.SourceReferenceID,
		Metadata: models.Metadata{
			CreatedBy: actor,
			UpdatedBy: actor,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.data.Create(ctx, actual); err != nil {
		return nil, err
	}

	return actual, nil
}

// OverrideActual mutates the post value in place while stamping the audit
// trail. The document is re-read inside the operation so a concurrent
// independent override is not clobbered into original_value.
func (s *measureDataService) OverrideActual(ctx context.Context, tenantID string, actualID primitive.ObjectID, req *models.OverrideActualRequest, actor string) (*models.MeasureData, error) {
	if strings.TrimSpace(req.Comment) == "" {
		return nil, apperrors.Validation("override comment is required")
	}

	actual, err := s.getByCategory(ctx, tenantID, actualID, models.DataCategoryActual)
	if err != nil {
		return nil, err
	}

	previous := actual.PostValue
	actual.OriginalValue = &previous
	actual.PostValue = req.Value
	actual.IsManualOverride = true
	actual.OverrideComment = req.Comment
	actual.Metadata.UpdatedBy = actor
	actual.Metadata.UpdatedAt = time.Now()

	if err := s.data.Update(ctx, actual); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("actual_id", actualID.Hex()).
		Float64("previous_value", previous).
		Float64("override_value", req.Value).
		Msg("actual overridden")

	return actual, nil
}

func (s *measureDataService) DeleteActual(ctx context.Context, tenantID string, actualID primitive.ObjectID, actor string) error {
	if _, err := s.getByCategory(ctx, tenantID, actualID, models.DataCategoryActual); err != nil {
		return err
	}

	return s.data.SoftDelete(ctx, tenantID, actualID, actor)
}

func (s *measureDataService) GetAllSeries(ctx context.Context, tenantID string, measureID primitive.ObjectID) (*models.MeasureSeries, error) {
	if _, err := s.measures.GetByID(ctx, tenantID, measureID); err != nil {
		return nil, err
	}

	targets, err := s.data.FindByMeasure(ctx, tenantID, measureID, models.DataCategoryTarget)
	if err != nil {
		return nil, err
	}
	actuals, err := s.data.FindByMeasure(ctx, tenantID, measureID, models.DataCategoryActual)
	if err != nil {
		return nil, err
	}
	latest, err := s.data.LatestByCategory(ctx, tenantID, measureID, models.DataCategoryActual)
	if err != nil {
		return nil, err
	}

	return &models.MeasureSeries{
		MeasureID:    measureID,
		Targets:      targets,
		Actuals:      actuals,
		LatestActual: latest,
	}, nil
}

func (s *measureDataService) GetSeriesStats(ctx context.Context, tenantID string, measureID primitive.ObjectID) (*models.SeriesStats, error) {
	if _, err := s.measures.GetByID(ctx, tenantID, measureID); err != nil {
		return nil, err
	}

	actuals, err := s.data.FindByMeasure(ctx, tenantID, measureID, models.DataCategoryActual)
	if err != nil {
		return nil, err
	}

	result := &models.SeriesStats{MeasureID: measureID, Count: len(actuals)}
	if len(actuals) == 0 {
		return result, nil
	}

	values := make([]float64, len(actuals))
	for i, a := range actuals {
		values[i] = a.PostValue
	}

	if result.Mean, err = stats.Mean(values); err != nil {
		return nil, err
	}
	if result.Median, err = stats.Median(values); err != nil {
		return nil, err
	}
	if result.StdDev, err = stats.StandardDeviation(values); err != nil {
		return nil, err
	}
	if result.Min, err = stats.Min(values); err != nil {
		return nil, err
	}
	if result.Max, err = stats.Max(values); err != nil {
		return nil, err
	}

	return result, nil
}

// getByCategory loads a data record and hides category mismatches behind not
// found, so a target id cannot be mutated through the actual endpoints.
func (s *measureDataService) getByCategory(ctx context.Context, tenantID string, id primitive.ObjectID, category models.DataCategory) (*models.MeasureData, error) {
	record, err := s.data.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if record.DataCategory != category {
		return nil, apperrors.NotFound("%s %s not found", strings.ToLower(string(category)), id.Hex())
	}

	return record, nil
}
