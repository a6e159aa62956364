package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/apperrors"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
)

func enrichmentFixture() (EnrichmentService, *mockBrandRepository) {
	brandRepo := newMockBrandRepository()
	brandRepo.brands["ACME SPIRITS"] = models.NewBrand("ACME SPIRITS", time.Now())
	return NewEnrichmentService(brandRepo, zap.NewNop()), brandRepo
}

func TestEnrichmentUpdateStoresPayload(t *testing.T) {
	svc, brandRepo := enrichmentFixture()

	err := svc.Update(context.Background(), "ACME SPIRITS",
		[]byte(`{"url":"https://acme.example","verification_status":"verified"}`))
	require.NoError(t, err)

	e := brandRepo.brands["ACME SPIRITS"].Enrichment
	assert.Equal(t, "https://acme.example", e.URL())
	assert.True(t, e.Verified())
}

func TestEnrichmentUpdateOpaquePayloadSurvives(t *testing.T) {
	svc, brandRepo := enrichmentFixture()

	err := svc.Update(context.Background(), "ACME SPIRITS",
		[]byte(`{"custom_field":"kept as-is","nested":{"a":1}}`))
	require.NoError(t, err)

	e := brandRepo.brands["ACME SPIRITS"].Enrichment
	assert.Equal(t, "kept as-is", e["custom_field"])
	assert.False(t, e.HasWebsite())
}

func TestEnrichmentUpdateUnparseableClears(t *testing.T) {
	svc, brandRepo := enrichmentFixture()
	brandRepo.brands["ACME SPIRITS"].Enrichment = models.Enrichment{"url": "https://old.example"}

	err := svc.Update(context.Background(), "ACME SPIRITS", []byte(`{not json`))
	require.NoError(t, err)
	assert.Nil(t, brandRepo.brands["ACME SPIRITS"].Enrichment)
}

func TestEnrichmentUpdateNullClears(t *testing.T) {
	svc, brandRepo := enrichmentFixture()
	brandRepo.brands["ACME SPIRITS"].Enrichment = models.Enrichment{"url": "https://old.example"}

	err := svc.Update(context.Background(), "ACME SPIRITS", []byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, brandRepo.brands["ACME SPIRITS"].Enrichment)
}

func TestEnrichmentUnknownBrand(t *testing.T) {
	svc, _ := enrichmentFixture()

	err := svc.Update(context.Background(), "NO SUCH BRAND", []byte(`{"url":"https://x.example"}`))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = svc.Clear(context.Background(), "NO SUCH BRAND")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
