package services

import (
	"context"
	"time"

	"tractionservice/apperrors"
	"tractionservice/models"
	repository "tractionservice/repositories"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeasureLinkService owns the link lifecycle and the cross-entity invariants
// around it: reference validation, duplicate detection, primary-link
// reassignment, owner propagation and orphan detection.
type MeasureLinkService interface {
	CreateLink(ctx context.Context, tenantID string, req *models.CreateMeasureLinkRequest, actor string) (*models.MeasureLink, error)
	GetLinkByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureLink, error)
	UpdateLink(ctx context.Context, tenantID string, id primitive.ObjectID, req *models.UpdateMeasureLinkRequest, actor string) (*models.MeasureLink, error)
	DeleteLink(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) (*models.DeleteLinkResult, error)
	QueryLinks(ctx context.Context, tenantID string, filter models.LinkQueryFilter) ([]models.MeasureLink, error)
	GetLinkTypeDistribution(ctx context.Context, tenantID string) ([]models.LinkTypeStats, error)
}

type measureLinkService struct {
	links    repository.MeasureLinkRepository
	measures repository.MeasureRepository
	data     repository.MeasureDataRepository
	refs     repository.RefsRepository
	txn      repository.TxnRunner
	logger   zerolog.Logger
}

func NewMeasureLinkService(
	links repository.MeasureLinkRepository,
	measures repository.MeasureRepository,
	data repository.MeasureDataRepository,
	refs repository.RefsRepository,
	txn repository.TxnRunner,
	logger zerolog.Logger,
) MeasureLinkService {
	return &measureLinkService{
		links:    links,
		measures: measures,
		data:     data,
		refs:     refs,
		txn:      txn,
		logger:   logger,
	}
}

func parseID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("invalid %s format", field)
	}
	return id, nil
}

func parseOptionalID(field string, value *string) (*primitive.ObjectID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := parseID(field, *value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *measureLinkService) CreateLink(ctx context.Context, tenantID string, req *models.CreateMeasureLinkRequest, actor string) (*models.MeasureLink, error) {
	if req.LinkType != nil {
		return nil, apperrors.Validation("link_type is derived and cannot be supplied")
	}

	measureID, err := parseID("measure_id", req.MeasureID)
	if err != nil {
		return nil, err
	}
	personID, err := parseID("person_id", req.PersonID)
	if err != nil {
		return nil, err
	}
	goalID, err := parseOptionalID("goal_id", req.GoalID)
	if err != nil {
		return nil, err
	}
	strategyID, err := parseOptionalID("strategy_id", req.StrategyID)
	if err != nil {
		return nil, err
	}

	if strategyID != nil && goalID == nil {
		return nil, apperrors.Validation("strategy requires goal")
	}

	now := time.Now()
	link := &models.MeasureLink{
		TenantID:         tenantID,
		MeasureID:        measureID,
		PersonID:         personID,
		GoalID:           goalID,
		StrategyID:       strategyID,
		ThresholdPct:     models.DefaultThresholdPct,
		RiskThresholdPct: models.DefaultRiskThresholdPct,
		Weight:           models.DefaultWeight,
		LinkedAt:         now,
		Metadata: models.Metadata{
			CreatedBy: actor,
			UpdatedBy: actor,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if req.ThresholdPct != nil {
		link.ThresholdPct = *req.ThresholdPct
	}
	if req.RiskThresholdPct != nil {
		link.RiskThresholdPct = *req.RiskThresholdPct
	}
	if req.Weight != nil {
		link.Weight = *req.Weight
	}
	if req.DisplayOrder != nil {
		link.DisplayOrder = *req.DisplayOrder
	}
	if req.IsPrimary != nil {
		link.IsPrimary = *req.IsPrimary
	}

	if link.RiskThresholdPct > link.ThresholdPct {
		return nil, apperrors.Validation("risk_threshold_pct must not exceed threshold_pct")
	}

	if err := s.validateReferences(ctx, tenantID, link); err != nil {
		return nil, err
	}

	duplicate, err := s.links.FindDuplicate(ctx, tenantID, measureID, personID, goalID, strategyID, nil)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, apperrors.Conflict("measure link already exists for this measure, person, goal and strategy")
	}

	if link.IsPrimary {
		// Creating a new primary must atomically demote the previous one on
		// the same (measure, goal) pair.
		err = s.txn.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := s.links.Create(txCtx, link); err != nil {
				return err
			}
			return s.links.ClearPrimary(txCtx, tenantID, measureID, goalID, link.ID, actor)
		})
		if err != nil {
			return nil, s.wrapTxnErr("primary link reassignment failed", err)
		}
		s.logger.Info().
			Str("link_id", link.ID.Hex()).
			Str("measure_id", measureID.Hex()).
			Msg("primary link reassigned")
	} else {
		if err := s.links.Create(ctx, link); err != nil {
			return nil, err
		}
	}

	link.LinkType = link.DeriveLinkType()
	return link, nil
}

func (s *measureLinkService) GetLinkByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureLink, error) {
	link, err := s.links.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	links, err := s.enrich(ctx, tenantID, []models.MeasureLink{*link})
	if err != nil {
		return nil, err
	}
	return &links[0], nil
}

func (s *measureLinkService) UpdateLink(ctx context.Context, tenantID string, id primitive.ObjectID, req *models.UpdateMeasureLinkRequest, actor string) (*models.MeasureLink, error) {
	if req.LinkType != nil {
		return nil, apperrors.Validation("link_type is derived and cannot be supplied")
	}

	link, err := s.links.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	previousGoalID := link.GoalID

	personChanged := false
	if req.PersonID != nil {
		personID, err := parseID("person_id", *req.PersonID)
		if err != nil {
			return nil, err
		}
		personChanged = personID != link.PersonID
		link.PersonID = personID
	}

	if req.ClearGoal {
		// Clearing the goal also clears the strategy beneath it.
		link.GoalID = nil
		link.StrategyID = nil
	} else if req.GoalID != nil {
		goalID, err := parseID("goal_id", *req.GoalID)
		if err != nil {
			return nil, err
		}
		link.GoalID = &goalID
	}

	if req.ClearStrategy {
		link.StrategyID = nil
	} else if req.StrategyID != nil {
		strategyID, err := parseID("strategy_id", *req.StrategyID)
		if err != nil {
			return nil, err
		}
		link.StrategyID = &strategyID
	}

	if req.ThresholdPct != nil {
		link.ThresholdPct = *req.ThresholdPct
	}
	if req.RiskThresholdPct != nil {
		link.RiskThresholdPct = *req.RiskThresholdPct
	}
	if req.Weight != nil {
		link.Weight = *req.Weight
	}
	if req.DisplayOrder != nil {
		link.DisplayOrder = *req.DisplayOrder
	}
	becamePrimary := false
	if req.IsPrimary != nil {
		becamePrimary = *req.IsPrimary && !link.IsPrimary
		link.IsPrimary = *req.IsPrimary
	}
	goalChanged := (previousGoalID == nil) != (link.GoalID == nil) ||
		(previousGoalID != nil && link.GoalID != nil && *previousGoalID != *link.GoalID)

	if link.StrategyID != nil && link.GoalID == nil {
		return nil, apperrors.Validation("strategy requires goal")
	}
	if link.RiskThresholdPct > link.ThresholdPct {
		return nil, apperrors.Validation("risk_threshold_pct must not exceed threshold_pct")
	}

	if err := s.validateReferences(ctx, tenantID, link); err != nil {
		return nil, err
	}

	duplicate, err := s.links.FindDuplicate(ctx, tenantID, link.MeasureID, link.PersonID, link.GoalID, link.StrategyID, &link.ID)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, apperrors.Conflict("measure link already exists for this measure, person, goal and strategy")
	}

	link.Metadata.UpdatedBy = actor
	link.Metadata.UpdatedAt = time.Now()

	err = s.txn.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.links.Update(txCtx, link); err != nil {
			return err
		}
		if personChanged {
			// Owner reassignment fans out to the measure and every sibling
			// link; a partial fan-out is a correctness bug.
			if err := s.links.UpdatePersonForMeasure(txCtx, tenantID, link.MeasureID, link.PersonID, actor); err != nil {
				return err
			}
			if err := s.measures.UpdateOwner(txCtx, tenantID, link.MeasureID, link.PersonID, actor); err != nil {
				return err
			}
		}
		// A primary entering a (measure, goal) pair demotes that pair's
		// existing primary, whether it got here by promotion or by moving
		// goal scope.
		if link.IsPrimary && (becamePrimary || goalChanged) {
			if err := s.links.ClearPrimary(txCtx, tenantID, link.MeasureID, link.GoalID, link.ID, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapTxnErr("link update failed", err)
	}

	if personChanged {
		s.logger.Info().
			Str("measure_id", link.MeasureID.Hex()).
			Str("person_id", link.PersonID.Hex()).
			Msg("owner propagated to measure and sibling links")
	}

	link.LinkType = link.DeriveLinkType()
	return link, nil
}

func (s *measureLinkService) DeleteLink(ctx context.Context, tenantID string, id primitive.ObjectID, actor string) (*models.DeleteLinkResult, error) {
	link, err := s.links.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.links.SoftDelete(ctx, tenantID, id, actor); err != nil {
		return nil, err
	}

	result := &models.DeleteLinkResult{DeletedID: id}

	remaining, err := s.links.CountByMeasure(ctx, tenantID, link.MeasureID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		measure, err := s.measures.GetByID(ctx, tenantID, link.MeasureID)
		if err == nil && measure.CatalogID == nil {
			result.OrphanedMeasure = true
			result.Warning = "measure " + link.MeasureID.Hex() + " has no remaining links"
			s.logger.Warn().
				Str("measure_id", link.MeasureID.Hex()).
				Msg("custom measure orphaned by link deletion")
		}
	}

	return result, nil
}

func (s *measureLinkService) QueryLinks(ctx context.Context, tenantID string, filter models.LinkQueryFilter) ([]models.MeasureLink, error) {
	if filter.Empty() {
		return nil, apperrors.Validation("at least one of measure_id, person_id, goal_id or strategy_id is required")
	}

	links, err := s.links.Find(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, tenantID, links)
}

func (s *measureLinkService) GetLinkTypeDistribution(ctx context.Context, tenantID string) ([]models.LinkTypeStats, error) {
	return s.links.GetLinkTypeDistribution(ctx, tenantID)
}

// validateReferences checks every referenced entity in tenant scope and that
// a strategy, when present, belongs to the referenced goal.
func (s *measureLinkService) validateReferences(ctx context.Context, tenantID string, link *models.MeasureLink) error {
	if _, err := s.measures.GetByID(ctx, tenantID, link.MeasureID); err != nil {
		return err
	}

	exists, err := s.refs.PersonExists(ctx, tenantID, link.PersonID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFound("person %s not found", link.PersonID.Hex())
	}

	if link.GoalID != nil {
		exists, err := s.refs.GoalExists(ctx, tenantID, *link.GoalID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NotFound("goal %s not found", link.GoalID.Hex())
		}
	}

	if link.StrategyID != nil {
		strategy, err := s.refs.GetStrategy(ctx, tenantID, *link.StrategyID)
		if err != nil {
			return err
		}
		if strategy.GoalID != *link.GoalID {
			return apperrors.BusinessRule("strategy %s does not belong to goal %s", link.StrategyID.Hex(), link.GoalID.Hex())
		}
	}

	return nil
}

// enrich derives link types and computes progress per link, sharing a single
// series lookup per measure within the request.
func (s *measureLinkService) enrich(ctx context.Context, tenantID string, links []models.MeasureLink) ([]models.MeasureLink, error) {
	type measureSeries struct {
		measure *models.Measure
		target  *models.MeasureData
		actual  *models.MeasureData
	}

	cache := make(map[primitive.ObjectID]*measureSeries)
	now := time.Now()

	for i := range links {
		links[i].LinkType = links[i].DeriveLinkType()

		series, ok := cache[links[i].MeasureID]
		if !ok {
			series = &measureSeries{}
			measure, err := s.measures.GetByID(ctx, tenantID, links[i].MeasureID)
			if err != nil {
				if apperrors.KindOf(err) != apperrors.KindNotFound {
					return nil, err
				}
			} else {
				series.measure = measure
				if series.target, err = s.data.LatestByCategory(ctx, tenantID, links[i].MeasureID, models.DataCategoryTarget); err != nil {
					return nil, err
				}
				if series.actual, err = s.data.LatestByCategory(ctx, tenantID, links[i].MeasureID, models.DataCategoryActual); err != nil {
					return nil, err
				}
			}
			cache[links[i].MeasureID] = series
		}

		if series.measure == nil {
			continue
		}

		progress := ComputeProgress(series.measure, &links[i], series.target, series.actual, now)
		if progress == nil {
			progress = &models.Progress{Status: models.StatusNoData}
		}
		links[i].Progress = progress
	}

	return links, nil
}

// wrapTxnErr keeps taxonomy errors raised inside a transaction intact and
// marks everything else as an integrity violation.
func (s *measureLinkService) wrapTxnErr(message string, err error) error {
	if apperrors.KindOf(err) != apperrors.KindUnknown {
		return err
	}
	s.logger.Error().Err(err).Msg(message)
	return apperrors.Integrity(message, err)
}
