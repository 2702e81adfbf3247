package services

import (
	"context"
	"sort"
	"time"

	"tractionservice/apperrors"
	"tractionservice/models"
	repository "tractionservice/repositories"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeasureService interface {
	CreateMeasure(ctx context.Context, measure *models.Measure, actor string) (*models.Measure, error)
	GetMeasureByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Measure, error)
	GetAllMeasures(ctx context.Context, tenantID string) ([]models.Measure, error)
	UpdateMeasure(ctx context.Context, tenantID string, id primitive.ObjectID, req *models.UpdateMeasureRequest, actor string) (*models.Measure, error)
	RecordValue(ctx context.Context, tenantID string, id primitive.ObjectID, value float64, actor string) (*models.Measure, error)
	SoftDeleteMeasure(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) error
	GetOptions(ctx context.Context, tenantID string, id primitive.ObjectID) ([]models.MeasureOption, error)
	SetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, options []models.MeasureOption, actor string) ([]models.MeasureOption, error)
	DeleteOptions(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) error
	CopyOptionsFromCatalog(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) ([]models.MeasureOption, error)
	GetCatalog(ctx context.Context) ([]models.CatalogEntry, error)
	GetCatalogEntry(ctx context.Context, id primitive.ObjectID) (*models.CatalogEntry, error)
}

type measureService struct {
	measures repository.MeasureRepository
	links    repository.MeasureLinkRepository
	data     repository.MeasureDataRepository
	catalog  repository.CatalogRepository
	txn      repository.TxnRunner
	logger   zerolog.Logger
}

func NewMeasureService(
	measures repository.MeasureRepository,
	links repository.MeasureLinkRepository,
	data repository.MeasureDataRepository,
	catalog repository.CatalogRepository,
	txn repository.TxnRunner,
	logger zerolog.Logger,
) MeasureService {
	return &measureService{
		measures: measures,
		links:    links,
		data:     data,
		catalog:  catalog,
		txn:      txn,
		logger:   logger,
	}
}

func (s *measureService) CreateMeasure(ctx context.Context, measure *models.Measure, actor string) (*models.Measure, error) {
	if measure.CatalogID != nil {
		entry, err := s.catalog.GetByID(ctx, *measure.CatalogID)
		if err != nil {
			return nil, err
		}
		applyCatalogDefaults(measure, entry)
	}

	if measure.Direction == "" {
		measure.Direction = models.DirectionIncrease
	}
	if measure.MeasureType == "" {
		measure.MeasureType = models.MeasureTypeQuantitative
	}
	if measure.OwnerID.IsZero() {
		return nil, apperrors.Validation("owner_id is required")
	}

	if len(measure.Options) > 0 {
		sorted, err := normalizeOptionSet(measure.Options)
		if err != nil {
			return nil, err
		}
		measure.Options = sorted
	}
	if measure.MeasureType == models.MeasureTypeQualitative && len(measure.Options) == 0 {
		return nil, apperrors.Validation("qualitative measure requires an option set, measure-owned or catalog-inherited")
	}

	now := time.Now()
	measure.Metadata.CreatedBy = actor
	measure.Metadata.UpdatedBy = actor
	measure.Metadata.CreatedAt = now
	measure.Metadata.UpdatedAt = now
	measure.IsDeleted = false
	if measure.HistoricalValues == nil {
		measure.HistoricalValues = []models.ValuePoint{}
	}

	if err := s.measures.Create(ctx, measure); err != nil {
		return nil, err
	}

	return measure, nil
}

func (s *measureService) GetMeasureByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Measure, error) {
	return s.measures.GetByID(ctx, tenantID, id)
}

func (s *measureService) GetAllMeasures(ctx context.Context, tenantID string) ([]models.Measure, error) {
	return s.measures.GetAll(ctx, tenantID)
}

func (s *measureService) UpdateMeasure(ctx context.Context, tenantID string, id primitive.ObjectID, req *models.UpdateMeasureRequest, actor string) (*models.Measure, error) {
	measure, err := s.measures.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.CatalogID != nil {
		current := ""
		if measure.CatalogID != nil {
			current = measure.CatalogID.Hex()
		}
		if *req.CatalogID != current {
			return nil, apperrors.Conflict("catalog_id cannot be changed after creation")
		}
	}

	if req.Name != nil {
		measure.Name = *req.Name
	}
	if req.Description != nil {
		measure.Description = *req.Description
	}
	if req.Unit != nil {
		measure.Unit = *req.Unit
	}
	if req.Direction != nil {
		measure.Direction = *req.Direction
	}
	if req.MeasureType != nil {
		measure.MeasureType = *req.MeasureType
	}
	if req.Category != nil {
		measure.Category = *req.Category
	}
	if req.Aggregation != nil {
		measure.Aggregation = *req.Aggregation
	}
	if req.OwnerID != nil {
		ownerID, err := parseID("owner_id", *req.OwnerID)
		if err != nil {
			return nil, err
		}
		measure.OwnerID = ownerID
	}

	if measure.MeasureType == models.MeasureTypeQualitative {
		options, err := s.resolveOptions(ctx, measure)
		if err != nil {
			return nil, err
		}
		if len(options) == 0 {
			return nil, apperrors.Validation("qualitative measure requires an option set, measure-owned or catalog-inherited")
		}
	}

	measure.Metadata.UpdatedBy = actor
	measure.Metadata.UpdatedAt = time.Now()

	if err := s.measures.Update(ctx, measure); err != nil {
		return nil, err
	}

	return measure, nil
}

func (s *measureService) RecordValue(ctx context.Context, tenantID string, id primitive.ObjectID, value float64, actor string) (*models.Measure, error) {
	if _, err := s.measures.GetByID(ctx, tenantID, id); err != nil {
		return nil, err
	}

	point := models.ValuePoint{
		Value:      value,
		RecordedBy: actor,
		RecordedAt: time.Now(),
	}
	if err := s.measures.AppendValue(ctx, tenantID, id, point, actor); err != nil {
		return nil, err
	}

	return s.measures.GetByID(ctx, tenantID, id)
}

// SoftDeleteMeasure cascades to the measure's links, targets and actuals in a
// single transaction. A partial cascade leaves orphaned children, so any
// failure here is fatal rather than partially retried.
func (s *measureService) SoftDeleteMeasure(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) error {
	if _, err := s.measures.GetByID(ctx, tenantID, id); err != nil {
		return err
	}

	err := s.txn.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.measures.SoftDelete(txCtx, tenantID, id, actor); err != nil {
			return err
		}
		if err := s.links.SoftDeleteByMeasure(txCtx, tenantID, id, actor); err != nil {
			return err
		}
		return s.data.SoftDeleteByMeasure(txCtx, tenantID, id, actor)
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindUnknown {
			return err
		}
		s.logger.Error().Err(err).Str("measure_id", id.Hex()).Msg("measure cascade delete failed")
		return apperrors.Integrity("measure cascade delete failed", err)
	}

	s.logger.Info().Str("measure_id", id.Hex()).Msg("measure soft-deleted with links and data")
	return nil
}

// GetOptions resolves the effective option set: measure-owned when present,
// otherwise inherited from the linked catalog entry.
func (s *measureService) GetOptions(ctx context.Context, tenantID string, id primitive.ObjectID) ([]models.MeasureOption, error) {
	measure, err := s.measures.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	return s.resolveOptions(ctx, measure)
}

func (s *measureService) SetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, options []models.MeasureOption, actor string) ([]models.MeasureOption, error) {
	if _, err := s.measures.GetByID(ctx, tenantID, id); err != nil {
		return nil, err
	}

	if len(options) < 2 {
		return nil, apperrors.Validation("option set requires at least 2 options")
	}
	sorted, err := normalizeOptionSet(options)
	if err != nil {
		return nil, err
	}

	if err := s.measures.SetOptions(ctx, tenantID, id, sorted, actor); err != nil {
		return nil, err
	}

	return sorted, nil
}

// DeleteOptions removes the measure-owned set; a linked catalog entry then
// takes over through inheritance.
func (s *measureService) DeleteOptions(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) error {
	measure, err := s.measures.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if measure.MeasureType == models.MeasureTypeQualitative && measure.CatalogID == nil {
		return apperrors.BusinessRule("qualitative measure has no catalog entry to inherit options from")
	}

	return s.measures.UnsetOptions(ctx, tenantID, id, actor)
}

func (s *measureService) CopyOptionsFromCatalog(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) ([]models.MeasureOption, error) {
	measure, err := s.measures.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if measure.CatalogID == nil {
		return nil, apperrors.BusinessRule("measure is not linked to a catalog entry")
	}

	entry, err := s.catalog.GetByID(ctx, *measure.CatalogID)
	if err != nil {
		return nil, err
	}
	if len(entry.Options) == 0 {
		return nil, apperrors.BusinessRule("catalog entry %s has no option set", entry.ID.Hex())
	}

	sorted, err := normalizeOptionSet(entry.Options)
	if err != nil {
		return nil, err
	}
	if err := s.measures.SetOptions(ctx, tenantID, id, sorted, actor); err != nil {
		return nil, err
	}

	return sorted, nil
}

func (s *measureService) GetCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	return s.catalog.GetAll(ctx)
}

func (s *measureService) GetCatalogEntry(ctx context.Context, id primitive.ObjectID) (*models.CatalogEntry, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *measureService) resolveOptions(ctx context.Context, measure *models.Measure) ([]models.MeasureOption, error) {
	if len(measure.Options) > 0 {
		return measure.Options, nil
	}
	if measure.CatalogID == nil {
		return nil, nil
	}

	entry, err := s.catalog.GetByID(ctx, *measure.CatalogID)
	if err != nil {
		return nil, err
	}

	return normalizeOptionSet(entry.Options)
}

func applyCatalogDefaults(measure *models.Measure, entry *models.CatalogEntry) {
	if measure.Name == "" {
		measure.Name = entry.Name
	}
	if measure.Description == "" {
		measure.Description = entry.Description
	}
	if measure.Unit == "" {
		measure.Unit = entry.Unit
	}
	if measure.Direction == "" {
		measure.Direction = entry.Direction
	}
	if measure.MeasureType == "" {
		measure.MeasureType = entry.MeasureType
	}
	if measure.Category == "" {
		measure.Category = entry.Category
	}
	if measure.Aggregation == (models.Aggregation{}) {
		measure.Aggregation = entry.Aggregation
	}
	if len(measure.Options) == 0 {
		measure.Options = entry.Options
	}
}

// normalizeOptionSet rejects duplicate numeric values and returns the set
// sorted ascending by numeric value.
func normalizeOptionSet(options []models.MeasureOption) ([]models.MeasureOption, error) {
	if len(options) == 0 {
		return nil, nil
	}

	seen := make(map[float64]bool, len(options))
	for _, opt := range options {
		if seen[opt.NumericValue] {
			return nil, apperrors.Validation("duplicate option numeric_value %v", opt.NumericValue)
		}
		seen[opt.NumericValue] = true
	}

	sorted := make([]models.MeasureOption, len(options))
	copy(sorted, options)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].NumericValue < sorted[j].NumericValue
	})

	return sorted, nil
}
