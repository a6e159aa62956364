package services

import (
	"context"
	"sort"
	"time"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/apperrors"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
)

// mockBrandRepository is an in-memory BrandRepository for service tests.
// It mirrors the store's semantics closely enough to exercise the engines:
// set unions, first-classification-wins, SKU re-pointing.
type mockBrandRepository struct {
	brands map[string]*models.Brand

	upsertErr      error
	listErr        error
	consolidateErr error

	resetCalls  int
	repairMoved int
}

func newMockBrandRepository() *mockBrandRepository {
	return &mockBrandRepository{brands: make(map[string]*models.Brand)}
}

func (m *mockBrandRepository) UpsertPermitRecord(_ context.Context, rec *models.IngestRecord, cls *models.Classification) (*models.UpsertResult, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	result := &models.UpsertResult{}
	brand, ok := m.brands[rec.BrandName]
	if !ok {
		brand = models.NewBrand(rec.BrandName, time.Now())
		m.brands[rec.BrandName] = brand
		result.BrandCreated = true
	}
	brand.AddPermitNumber(rec.PermitNumber)
	if cls != nil && cls.Permit != rec.PermitNumber {
		brand.AddPermitNumber(cls.Permit)
	}
	brand.AddCountry(rec.Country())
	brand.AddClassType(rec.ClassTypeValue())
	brand.ApplyClassification(cls)

	var existing *models.SKU
	for _, sku := range brand.SKUs {
		if sku.TTBID == rec.TTBID {
			existing = sku
		}
	}
	if existing == nil {
		brand.SKUs = append(brand.SKUs, &models.SKU{
			TTBID:                rec.TTBID,
			BrandName:            rec.BrandName,
			PermitNumber:         rec.PermitNumber,
			SerialNumber:         rec.SerialNumber,
			CompletionDate:       rec.CompletionDate,
			FancifulName:         rec.FancifulName,
			Origin:               rec.Origin,
			OriginDescription:    rec.OriginDescription,
			ClassType:            rec.ClassType,
			ClassTypeDescription: rec.ClassTypeDescription,
			AddedAt:              time.Now(),
			UpdatedAt:            time.Now(),
		})
		result.SKUCreated = true
	} else {
		existing.SerialNumber = rec.SerialNumber
		existing.CompletionDate = rec.CompletionDate
		existing.UpdatedAt = time.Now()
		result.SKUUpdated = true
	}
	return result, nil
}

func (m *mockBrandRepository) Get(_ context.Context, name string) (*models.Brand, error) {
	return m.brands[name], nil
}

func (m *mockBrandRepository) List(_ context.Context) ([]*models.Brand, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.Brand
	for _, b := range m.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockBrandRepository) UpdateEnrichment(_ context.Context, name string, payload models.Enrichment) error {
	brand, ok := m.brands[name]
	if !ok {
		return apperrors.ErrNotFound
	}
	brand.Enrichment = payload
	return nil
}

func (m *mockBrandRepository) ClearEnrichment(_ context.Context, name string) error {
	brand, ok := m.brands[name]
	if !ok {
		return apperrors.ErrNotFound
	}
	brand.Enrichment = nil
	return nil
}

func (m *mockBrandRepository) Consolidate(_ context.Context, canonical string, members []string) (*models.MergeSummary, error) {
	if m.consolidateErr != nil {
		return nil, m.consolidateErr
	}
	var found []*models.Brand
	for _, name := range members {
		if b, ok := m.brands[name]; ok {
			found = append(found, b)
		}
	}
	if len(found) == 0 {
		return nil, apperrors.ErrNotFound
	}
	merged, summary := models.MergeBrands(canonical, found, time.Now())
	for _, name := range members {
		if name == canonical {
			continue
		}
		if member, ok := m.brands[name]; ok {
			for _, sku := range member.SKUs {
				sku.BrandName = canonical
				merged.SKUs = append(merged.SKUs, sku)
			}
			delete(m.brands, name)
		}
	}
	if prior, ok := m.brands[canonical]; ok {
		merged.SKUs = append(prior.SKUs, merged.SKUs...)
		for _, sku := range merged.SKUs {
			sku.BrandName = canonical
		}
	}
	m.brands[canonical] = merged
	return summary, nil
}

func (m *mockBrandRepository) Reset(_ context.Context) error {
	m.resetCalls++
	m.brands = make(map[string]*models.Brand)
	return nil
}

func (m *mockBrandRepository) RepairImporterClassifications(_ context.Context) (int, error) {
	moved := 0
	for _, b := range m.brands {
		for permit := range b.Importers {
			if !models.IsImporterPermit(permit) {
				delete(b.Importers, permit)
				b.BrandPermits = append(b.BrandPermits, permit)
				moved++
			}
		}
	}
	m.repairMoved = moved
	return moved, nil
}

// mockRegistryRepository is an in-memory RegistryRepository.
type mockRegistryRepository struct {
	importers map[string]*models.ImporterRecord
	producers map[models.ProducerRegistry]map[string]*models.ProducerRecord
	lookupErr error
}

func newMockRegistryRepository() *mockRegistryRepository {
	return &mockRegistryRepository{
		importers: make(map[string]*models.ImporterRecord),
		producers: map[models.ProducerRegistry]map[string]*models.ProducerRecord{
			models.RegistrySpirit: {},
			models.RegistryWine:   {},
		},
	}
}

func (m *mockRegistryRepository) addProducer(registry models.ProducerRegistry, permit, owner string) {
	m.producers[registry][permit] = &models.ProducerRecord{
		PermitNumber: permit,
		Registry:     registry,
		OwnerName:    owner,
	}
}

func (m *mockRegistryRepository) LookupImporter(_ context.Context, permit string) (*models.ImporterRecord, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.importers[permit], nil
}

func (m *mockRegistryRepository) LookupProducer(_ context.Context, registry models.ProducerRegistry, permit string) (*models.ProducerRecord, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.producers[registry][permit], nil
}

func (m *mockRegistryRepository) UpsertImporters(_ context.Context, records []*models.ImporterRecord) (int, error) {
	for _, rec := range records {
		m.importers[rec.PermitNumber] = rec
	}
	return len(records), nil
}

func (m *mockRegistryRepository) UpsertProducers(_ context.Context, records []*models.ProducerRecord) (int, error) {
	for _, rec := range records {
		m.producers[rec.Registry][rec.PermitNumber] = rec
	}
	return len(records), nil
}
