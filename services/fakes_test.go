package services

import (
	"context"
	"sort"

	"tractionservice/apperrors"
	"tractionservice/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the mongo repositories. They mirror the tenant and
// soft-delete scoping of the real implementations so service behavior can be
// exercised without a running database.

type fakeTxnRunner struct {
	calls int
}

func (r *fakeTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

type fakeMeasureRepo struct {
	measures map[primitive.ObjectID]*models.Measure
}

func newFakeMeasureRepo() *fakeMeasureRepo {
	return &fakeMeasureRepo{measures: make(map[primitive.ObjectID]*models.Measure)}
}

func (r *fakeMeasureRepo) Create(ctx context.Context, measure *models.Measure) error {
	measure.ID = primitive.NewObjectID()
	stored := *measure
	r.measures[measure.ID] = &stored
	return nil
}

func (r *fakeMeasureRepo) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Measure, error) {
	measure, ok := r.measures[id]
	if !ok || measure.TenantID != tenantID || measure.IsDeleted {
		return nil, apperrors.NotFound("measure %s not found", id.Hex())
	}
	clone := *measure
	return &clone, nil
}

func (r *fakeMeasureRepo) GetAll(ctx context.Context, tenantID string) ([]models.Measure, error) {
	var out []models.Measure
	for _, m := range r.measures {
		if m.TenantID == tenantID && !m.IsDeleted {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMeasureRepo) Update(ctx context.Context, measure *models.Measure) error {
	if _, err := r.GetByID(ctx, measure.TenantID, measure.ID); err != nil {
		return err
	}
	stored := *measure
	r.measures[measure.ID] = &stored
	return nil
}

func (r *fakeMeasureRepo) UpdateOwner(ctx context.Context, tenantID string, measureID, ownerID primitive.ObjectID, updatedBy string) error {
	measure, ok := r.measures[measureID]
	if !ok || measure.TenantID != tenantID || measure.IsDeleted {
		return apperrors.NotFound("measure %s not found", measureID.Hex())
	}
	measure.OwnerID = ownerID
	measure.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *fakeMeasureRepo) SetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, options []models.MeasureOption, updatedBy string) error {
	measure, ok := r.measures[id]
	if !ok || measure.TenantID != tenantID || measure.IsDeleted {
		return apperrors.NotFound("measure %s not found", id.Hex())
	}
	measure.Options = options
	measure.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *fakeMeasureRepo) UnsetOptions(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
	measure, ok := r.measures[id]
	if !ok || measure.TenantID != tenantID || measure.IsDeleted {
		return apperrors.NotFound("measure %s not found", id.Hex())
	}
	measure.Options = nil
	measure.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *fakeMeasureRepo) AppendValue(ctx context.Context, tenantID string, id primitive.ObjectID, point models.ValuePoint, updatedBy string) error {
	measure, ok := r.measures[id]
	if !ok || measure.TenantID != tenantID || measure.IsDeleted {
		return apperrors.NotFound("measure %s not found", id.Hex())
	}
	measure.HistoricalValues = append(measure.HistoricalValues, point)
	measure.CurrentValue = point.Value
	measure.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *fakeMeasureRepo) SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
	measure, ok := r.measures[id]
	if !ok || measure.TenantID != tenantID || measure.IsDeleted {
		return apperrors.NotFound("measure %s not found or already deleted", id.Hex())
	}
	measure.IsDeleted = true
	measure.Metadata.UpdatedBy = updatedBy
	return nil
}

type fakeLinkRepo struct {
	links map[primitive.ObjectID]*models.MeasureLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[primitive.ObjectID]*models.MeasureLink)}
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *models.MeasureLink) error {
	link.ID = primitive.NewObjectID()
	stored := *link
	r.links[link.ID] = &stored
	return nil
}

func (r *fakeLinkRepo) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureLink, error) {
	link, ok := r.links[id]
	if !ok || link.TenantID != tenantID || link.IsDeleted {
		return nil, apperrors.NotFound("measure link %s not found", id.Hex())
	}
	clone := *link
	return &clone, nil
}

func (r *fakeLinkRepo) Update(ctx context.Context, link *models.MeasureLink) error {
	if _, err := r.GetByID(ctx, link.TenantID, link.ID); err != nil {
		return err
	}
	stored := *link
	r.links[link.ID] = &stored
	return nil
}

func oidEqual(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeLinkRepo) Find(ctx context.Context, tenantID string, filter models.LinkQueryFilter) ([]models.MeasureLink, error) {
	var out []models.MeasureLink
	for _, link := range r.links {
		if link.TenantID != tenantID || link.IsDeleted {
			continue
		}
		if filter.MeasureID != nil && link.MeasureID != *filter.MeasureID {
			continue
		}
		if filter.StrategyID != nil && !oidEqual(link.StrategyID, filter.StrategyID) {
			continue
		}
		if filter.GoalID != nil {
			if !oidEqual(link.GoalID, filter.GoalID) {
				continue
			}
			if !filter.IncludeAll && filter.StrategyID == nil && link.StrategyID != nil {
				continue
			}
		}
		if filter.PersonID != nil {
			if link.PersonID != *filter.PersonID {
				continue
			}
			if !filter.IncludeAll && filter.GoalID == nil && filter.StrategyID == nil && link.GoalID != nil {
				continue
			}
		}
		out = append(out, *link)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].LinkedAt.Before(out[j].LinkedAt)
	})
	return out, nil
}

func (r *fakeLinkRepo) FindByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID) ([]models.MeasureLink, error) {
	return r.Find(ctx, tenantID, models.LinkQueryFilter{MeasureID: &measureID, IncludeAll: true})
}

func (r *fakeLinkRepo) FindDuplicate(ctx context.Context, tenantID string, measureID, personID primitive.ObjectID, goalID, strategyID, excludeID *primitive.ObjectID) (*models.MeasureLink, error) {
	for _, link := range r.links {
		if link.TenantID != tenantID || link.IsDeleted {
			continue
		}
		if excludeID != nil && link.ID == *excludeID {
			continue
		}
		if link.MeasureID == measureID && link.PersonID == personID &&
			oidEqual(link.GoalID, goalID) && oidEqual(link.StrategyID, strategyID) {
			clone := *link
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeLinkRepo) ClearPrimary(ctx context.Context, tenantID string, measureID primitive.ObjectID, goalID *primitive.ObjectID, exceptID primitive.ObjectID, updatedBy string) error {
	for _, link := range r.links {
		if link.TenantID != tenantID || link.IsDeleted || link.ID == exceptID {
			continue
		}
		if link.MeasureID == measureID && oidEqual(link.GoalID, goalID) && link.IsPrimary {
			link.IsPrimary = false
			link.Metadata.UpdatedBy = updatedBy
		}
	}
	return nil
}

func (r *fakeLinkRepo) UpdatePersonForMeasure(ctx context.Context, tenantID string, measureID, personID primitive.ObjectID, updatedBy string) error {
	for _, link := range r.links {
		if link.TenantID != tenantID || link.IsDeleted || link.MeasureID != measureID {
			continue
		}
		link.PersonID = personID
		link.Metadata.UpdatedBy = updatedBy
	}
	return nil
}

func (r *fakeLinkRepo) CountByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID) (int64, error) {
	var count int64
	for _, link := range r.links {
		if link.TenantID == tenantID && !link.IsDeleted && link.MeasureID == measureID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLinkRepo) SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
	link, ok := r.links[id]
	if !ok || link.TenantID != tenantID || link.IsDeleted {
		return apperrors.NotFound("measure link %s not found or already deleted", id.Hex())
	}
	link.IsDeleted = true
	link.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *fakeLinkRepo) SoftDeleteByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, updatedBy string) error {
	for _, link := range r.links {
		if link.TenantID == tenantID && !link.IsDeleted && link.MeasureID == measureID {
			link.IsDeleted = true
			link.Metadata.UpdatedBy = updatedBy
		}
	}
	return nil
}

func (r *fakeLinkRepo) GetLinkTypeDistribution(ctx context.Context, tenantID string) ([]models.LinkTypeStats, error) {
	buckets := make(map[string]*models.LinkTypeStats)
	for _, link := range r.links {
		if link.TenantID != tenantID || link.IsDeleted {
			continue
		}
		key := string(link.DeriveLinkType())
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.LinkTypeStats{LinkType: key}
			buckets[key] = bucket
		}
		bucket.Count++
		if link.IsPrimary {
			bucket.PrimaryCount++
		}
	}
	var out []models.LinkTypeStats
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	return out, nil
}

type fakeDataRepo struct {
	records map[primitive.ObjectID]*models.MeasureData
}

func newFakeDataRepo() *fakeDataRepo {
	return &fakeDataRepo{records: make(map[primitive.ObjectID]*models.MeasureData)}
}

func (r *fakeDataRepo) Create(ctx context.Context, data *models.MeasureData) error {
	data.ID = primitive.NewObjectID()
	stored := *data
	r.records[data.ID] = &stored
	return nil
}

func (r *fakeDataRepo) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.MeasureData, error) {
	record, ok := r.records[id]
	if !ok || record.TenantID != tenantID || record.IsDeleted {
		return nil, apperrors.NotFound("measure data %s not found", id.Hex())
	}
	clone := *record
	return &clone, nil
}

func (r *fakeDataRepo) Update(ctx context.Context, data *models.MeasureData) error {
	if _, err := r.GetByID(ctx, data.TenantID, data.ID); err != nil {
		return err
	}
	stored := *data
	r.records[data.ID] = &stored
	return nil
}

func (r *fakeDataRepo) FindByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, category models.DataCategory) ([]models.MeasureData, error) {
	var out []models.MeasureData
	for _, record := range r.records {
		if record.TenantID != tenantID || record.IsDeleted || record.MeasureID != measureID {
			continue
		}
		if category != "" && record.DataCategory != category {
			continue
		}
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PostDate.Before(out[j].PostDate)
	})
	return out, nil
}

func (r *fakeDataRepo) LatestByCategory(ctx context.Context, tenantID string, measureID primitive.ObjectID, category models.DataCategory) (*models.MeasureData, error) {
	series, err := r.FindByMeasure(ctx, tenantID, measureID, category)
	if err != nil || len(series) == 0 {
		return nil, err
	}
	latest := series[len(series)-1]
	return &latest, nil
}

func (r *fakeDataRepo) SoftDelete(ctx context.Context, tenantID string, id primitive.ObjectID, updatedBy string) error {
	record, ok := r.records[id]
	if !ok || record.TenantID != tenantID || record.IsDeleted {
		return apperrors.NotFound("measure data %s not found or already deleted", id.Hex())
	}
	record.IsDeleted = true
	record.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *fakeDataRepo) SoftDeleteByMeasure(ctx context.Context, tenantID string, measureID primitive.ObjectID, updatedBy string) error {
	for _, record := range r.records {
		if record.TenantID == tenantID && !record.IsDeleted && record.MeasureID == measureID {
			record.IsDeleted = true
			record.Metadata.UpdatedBy = updatedBy
		}
	}
	return nil
}

type fakeCatalogRepo struct {
	entries map[primitive.ObjectID]*models.CatalogEntry
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{entries: make(map[primitive.ObjectID]*models.CatalogEntry)}
}

func (r *fakeCatalogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CatalogEntry, error) {
	entry, ok := r.entries[id]
	if !ok || !entry.IsActive {
		return nil, apperrors.NotFound("catalog entry %s not found", id.Hex())
	}
	clone := *entry
	return &clone, nil
}

func (r *fakeCatalogRepo) GetAll(ctx context.Context) ([]models.CatalogEntry, error) {
	var out []models.CatalogEntry
	for _, entry := range r.entries {
		if entry.IsActive {
			out = append(out, *entry)
		}
	}
	return out, nil
}

type fakeRefsRepo struct {
	persons    map[primitive.ObjectID]bool
	goals      map[primitive.ObjectID]bool
	strategies map[primitive.ObjectID]primitive.ObjectID // strategy -> goal
}

func newFakeRefsRepo() *fakeRefsRepo {
	return &fakeRefsRepo{
		persons:    make(map[primitive.ObjectID]bool),
		goals:      make(map[primitive.ObjectID]bool),
		strategies: make(map[primitive.ObjectID]primitive.ObjectID),
	}
}

func (r *fakeRefsRepo) PersonExists(ctx context.Context, tenantID string, id primitive.ObjectID) (bool, error) {
	return r.persons[id], nil
}

func (r *fakeRefsRepo) GoalExists(ctx context.Context, tenantID string, id primitive.ObjectID) (bool, error) {
	return r.goals[id], nil
}

func (r *fakeRefsRepo) GetStrategy(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Strategy, error) {
	goalID, ok := r.strategies[id]
	if !ok {
		return nil, apperrors.NotFound("strategy %s not found", id.Hex())
	}
	return &models.Strategy{ID: id, TenantID: tenantID, GoalID: goalID}, nil
}
