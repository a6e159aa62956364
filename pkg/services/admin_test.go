package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
)

func TestResetRegistry(t *testing.T) {
	brandRepo := newMockBrandRepository()
	brandRepo.brands["ACME"] = models.NewBrand("ACME", time.Now())
	svc := NewAdminService(brandRepo, zap.NewNop())

	require.NoError(t, svc.ResetRegistry(context.Background()))
	assert.Equal(t, 1, brandRepo.resetCalls)
	assert.Empty(t, brandRepo.brands)
}

func TestRepairImporterClassifications(t *testing.T) {
	brandRepo := newMockBrandRepository()
	b := models.NewBrand("ACME", time.Now())
	b.Importers["TX-I-200"] = models.ImporterDetail{PermitNumber: "TX-I-200", OwnerName: "MHW LTD"}
	b.Importers["DSP-TX-999"] = models.ImporterDetail{PermitNumber: "DSP-TX-999", OwnerName: "GHOST CORP"}
	brandRepo.brands["ACME"] = b
	svc := NewAdminService(brandRepo, zap.NewNop())

	moved, err := svc.RepairImporterClassifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	assert.Contains(t, b.Importers, "TX-I-200")
	assert.NotContains(t, b.Importers, "DSP-TX-999")
	assert.Contains(t, b.BrandPermits, "DSP-TX-999")
}
