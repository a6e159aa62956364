package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
)

func TestLoadImporters(t *testing.T) {
	registry := newMockRegistryRepository()
	svc := NewFeedService(registry, zap.NewNop())

	count, err := svc.LoadImporters(context.Background(), []*models.ImporterRecord{
		{PermitNumber: "TX-I-200", OwnerName: "MHW LTD"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, registry.importers, "TX-I-200")
}

func TestLoadProducersStampsRegistry(t *testing.T) {
	registry := newMockRegistryRepository()
	svc := NewFeedService(registry, zap.NewNop())

	count, err := svc.LoadProducers(context.Background(), models.RegistryWine, []*models.ProducerRecord{
		{PermitNumber: "CA-W-55", OwnerName: "NAPA CELLARS"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec := registry.producers[models.RegistryWine]["CA-W-55"]
	require.NotNil(t, rec)
	assert.Equal(t, models.RegistryWine, rec.Registry)
}

func TestLoadProducersRejectsUnknownRegistry(t *testing.T) {
	svc := NewFeedService(newMockRegistryRepository(), zap.NewNop())

	_, err := svc.LoadProducers(context.Background(), "beer", nil)
	assert.Error(t, err)
}
