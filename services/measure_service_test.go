package services

import (
	"context"
	"testing"

	"tractionservice/apperrors"
	"tractionservice/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type measureFixture struct {
	measures *fakeMeasureRepo
	links    *fakeLinkRepo
	data     *fakeDataRepo
	catalog  *fakeCatalogRepo
	txn      *fakeTxnRunner
	svc      MeasureService

	owner primitive.ObjectID
}

func newMeasureFixture(t *testing.T) *measureFixture {
	t.Helper()
	f := &measureFixture{
		measures: newFakeMeasureRepo(),
		links:    newFakeLinkRepo(),
		data:     newFakeDataRepo(),
		catalog:  newFakeCatalogRepo(),
		txn:      &fakeTxnRunner{},
	}
	f.svc = NewMeasureService(f.measures, f.links, f.data, f.catalog, f.txn, zerolog.Nop())
	f.owner = primitive.NewObjectID()
	return f
}

func (f *measureFixture) seedCatalogEntry() *models.CatalogEntry {
	entry := &models.CatalogEntry{
		ID:          primitive.NewObjectID(),
		Name:        "Employee Engagement",
		Description: "Quarterly engagement survey score",
		Unit:        "score",
		Direction:   models.DirectionIncrease,
		MeasureType: models.MeasureTypeQualitative,
		Category:    "People",
		Options: []models.MeasureOption{
			{Label: "Disengaged", NumericValue: 1},
			{Label: "Neutral", NumericValue: 2},
			{Label: "Engaged", NumericValue: 3},
		},
		IsActive: true,
	}
	f.catalog.entries[entry.ID] = entry
	return entry
}

func TestCreateMeasureDefaults(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Net New Customers",
		OwnerID:  f.owner,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, models.DirectionIncrease, created.Direction)
	assert.Equal(t, models.MeasureTypeQuantitative, created.MeasureType)
	assert.NotNil(t, created.HistoricalValues)
	assert.Equal(t, "tester", created.Metadata.CreatedBy)
	assert.False(t, created.ID.IsZero())
}

func TestCreateMeasureRequiresOwner(t *testing.T) {
	f := newMeasureFixture(t)

	_, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Net New Customers",
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateMeasureInheritsCatalogDefaults(t *testing.T) {
	f := newMeasureFixture(t)
	entry := f.seedCatalogEntry()

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:  testTenant,
		OwnerID:   f.owner,
		CatalogID: &entry.ID,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, entry.Name, created.Name)
	assert.Equal(t, entry.Unit, created.Unit)
	assert.Equal(t, models.MeasureTypeQualitative, created.MeasureType)
	require.Len(t, created.Options, 3)
	assert.Equal(t, float64(1), created.Options[0].NumericValue)
}

func TestCreateMeasureCatalogOverrides(t *testing.T) {
	f := newMeasureFixture(t)
	entry := f.seedCatalogEntry()

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:  testTenant,
		Name:      "Engineering Engagement",
		OwnerID:   f.owner,
		CatalogID: &entry.ID,
	}, "tester")
	require.NoError(t, err)

	// Supplied fields win over the catalog defaults.
	assert.Equal(t, "Engineering Engagement", created.Name)
	assert.Equal(t, entry.Unit, created.Unit)
}

func TestCreateMeasureQualitativeRequiresOptions(t *testing.T) {
	f := newMeasureFixture(t)

	_, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:    testTenant,
		Name:        "Team Morale",
		OwnerID:     f.owner,
		MeasureType: models.MeasureTypeQualitative,
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateMeasureRejectsDuplicateOptionValues(t *testing.T) {
	f := newMeasureFixture(t)

	_, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:    testTenant,
		Name:        "Team Morale",
		OwnerID:     f.owner,
		MeasureType: models.MeasureTypeQualitative,
		Options: []models.MeasureOption{
			{Label: "Low", NumericValue: 1},
			{Label: "Also Low", NumericValue: 1},
		},
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateMeasureSortsOptions(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:    testTenant,
		Name:        "Team Morale",
		OwnerID:     f.owner,
		MeasureType: models.MeasureTypeQualitative,
		Options: []models.MeasureOption{
			{Label: "High", NumericValue: 3},
			{Label: "Low", NumericValue: 1},
			{Label: "Medium", NumericValue: 2},
		},
	}, "tester")
	require.NoError(t, err)

	require.Len(t, created.Options, 3)
	assert.Equal(t, "Low", created.Options[0].Label)
	assert.Equal(t, "Medium", created.Options[1].Label)
	assert.Equal(t, "High", created.Options[2].Label)
}

func TestUpdateMeasureCatalogIDImmutable(t *testing.T) {
	f := newMeasureFixture(t)
	entry := f.seedCatalogEntry()

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:  testTenant,
		OwnerID:   f.owner,
		CatalogID: &entry.ID,
	}, "tester")
	require.NoError(t, err)

	_, err = f.svc.UpdateMeasure(context.Background(), testTenant, created.ID, &models.UpdateMeasureRequest{
		CatalogID: strPtr(primitive.NewObjectID().Hex()),
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Re-sending the unchanged catalog id is not a conflict.
	name := "Renamed"
	updated, err := f.svc.UpdateMeasure(context.Background(), testTenant, created.ID, &models.UpdateMeasureRequest{
		CatalogID: strPtr(entry.ID.Hex()),
		Name:      &name,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateMeasureQualitativeKeepsOptionInvariant(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Deploy Frequency",
		OwnerID:  f.owner,
	}, "tester")
	require.NoError(t, err)

	// Flipping a quantitative measure to qualitative without options fails.
	qualitative := models.MeasureTypeQualitative
	_, err = f.svc.UpdateMeasure(context.Background(), testTenant, created.ID, &models.UpdateMeasureRequest{
		MeasureType: &qualitative,
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRecordValueAppendsHistory(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Weekly Signups",
		OwnerID:  f.owner,
	}, "tester")
	require.NoError(t, err)

	_, err = f.svc.RecordValue(context.Background(), testTenant, created.ID, 42, "tester")
	require.NoError(t, err)
	updated, err := f.svc.RecordValue(context.Background(), testTenant, created.ID, 55, "tester")
	require.NoError(t, err)

	assert.Equal(t, float64(55), updated.CurrentValue)
	require.Len(t, updated.HistoricalValues, 2)
	assert.Equal(t, float64(42), updated.HistoricalValues[0].Value)
	assert.Equal(t, "tester", updated.HistoricalValues[1].RecordedBy)
}

func TestSoftDeleteMeasureCascades(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Weekly Signups",
		OwnerID:  f.owner,
	}, "tester")
	require.NoError(t, err)

	link := &models.MeasureLink{TenantID: testTenant, MeasureID: created.ID, PersonID: f.owner}
	require.NoError(t, f.links.Create(context.Background(), link))
	record := &models.MeasureData{TenantID: testTenant, MeasureID: created.ID, DataCategory: models.DataCategoryActual, PostValue: 10}
	require.NoError(t, f.data.Create(context.Background(), record))

	require.NoError(t, f.svc.SoftDeleteMeasure(context.Background(), testTenant, created.ID, "tester"))
	assert.Equal(t, 1, f.txn.calls)

	_, err = f.measures.GetByID(context.Background(), testTenant, created.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	count, err := f.links.CountByMeasure(context.Background(), testTenant, created.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	series, err := f.data.FindByMeasure(context.Background(), testTenant, created.ID, "")
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestSetOptionsRequiresAtLeastTwo(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Team Morale",
		OwnerID:  f.owner,
	}, "tester")
	require.NoError(t, err)

	_, err = f.svc.SetOptions(context.Background(), testTenant, created.ID, []models.MeasureOption{
		{Label: "Only", NumericValue: 1},
	}, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestGetOptionsInheritsFromCatalog(t *testing.T) {
	f := newMeasureFixture(t)
	entry := f.seedCatalogEntry()

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:  testTenant,
		OwnerID:   f.owner,
		CatalogID: &entry.ID,
	}, "tester")
	require.NoError(t, err)

	// Drop the inherited copy; resolution falls back to the catalog entry.
	require.NoError(t, f.measures.UnsetOptions(context.Background(), testTenant, created.ID, "tester"))

	options, err := f.svc.GetOptions(context.Background(), testTenant, created.ID)
	require.NoError(t, err)
	assert.Len(t, options, 3)
}

func TestDeleteOptionsQualitativeWithoutCatalog(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:    testTenant,
		Name:        "Team Morale",
		OwnerID:     f.owner,
		MeasureType: models.MeasureTypeQualitative,
		Options: []models.MeasureOption{
			{Label: "Low", NumericValue: 1},
			{Label: "High", NumericValue: 2},
		},
	}, "tester")
	require.NoError(t, err)

	err = f.svc.DeleteOptions(context.Background(), testTenant, created.ID, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBusinessRule, apperrors.KindOf(err))
}

func TestCopyOptionsFromCatalog(t *testing.T) {
	f := newMeasureFixture(t)
	entry := f.seedCatalogEntry()

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID:  testTenant,
		OwnerID:   f.owner,
		CatalogID: &entry.ID,
	}, "tester")
	require.NoError(t, err)

	options, err := f.svc.CopyOptionsFromCatalog(context.Background(), testTenant, created.ID, "tester")
	require.NoError(t, err)
	assert.Len(t, options, 3)

	stored, err := f.measures.GetByID(context.Background(), testTenant, created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Options, 3)
}

func TestCopyOptionsWithoutCatalogLink(t *testing.T) {
	f := newMeasureFixture(t)

	created, err := f.svc.CreateMeasure(context.Background(), &models.Measure{
		TenantID: testTenant,
		Name:     "Weekly Signups",
		OwnerID:  f.owner,
	}, "tester")
	require.NoError(t, err)

	_, err = f.svc.CopyOptionsFromCatalog(context.Background(), testTenant, created.ID, "tester")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBusinessRule, apperrors.KindOf(err))
}
