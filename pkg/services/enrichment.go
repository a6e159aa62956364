package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// EnrichmentService persists website/verification payloads produced by the
// external enrichment workflow. The engine does not compute enrichment; it
// only stores, inspects, and clears it.
type EnrichmentService interface {
	// Update replaces the brand's enrichment payload wholesale. An
	// unparseable payload degrades to a cleared field rather than failing.
	Update(ctx context.Context, brand string, payload []byte) error

	// Clear nulls out the brand's enrichment payload.
	Clear(ctx context.Context, brand string) error
}

type enrichmentService struct {
	brandRepo repositories.BrandRepository
	logger    *zap.Logger
}

// NewEnrichmentService creates a new EnrichmentService.
func NewEnrichmentService(brandRepo repositories.BrandRepository, logger *zap.Logger) EnrichmentService {
	return &enrichmentService{
		brandRepo: brandRepo,
		logger:    logger.Named("enrichment"),
	}
}

var _ EnrichmentService = (*enrichmentService)(nil)

func (s *enrichmentService) Update(ctx context.Context, brand string, payload []byte) error {
	decoded, err := models.DecodeEnrichment(payload)
	if err != nil {
		s.logger.Warn("Unparseable enrichment payload, clearing field instead",
			zap.String("brand", brand),
			zap.Error(err))
		return s.Clear(ctx, brand)
	}
	if decoded == nil {
		return s.Clear(ctx, brand)
	}
	if err := s.brandRepo.UpdateEnrichment(ctx, brand, decoded); err != nil {
		return fmt.Errorf("update enrichment for %q: %w", brand, err)
	}
	return nil
}

func (s *enrichmentService) Clear(ctx context.Context, brand string) error {
	if err := s.brandRepo.ClearEnrichment(ctx, brand); err != nil {
		return fmt.Errorf("clear enrichment for %q: %w", brand, err)
	}
	return nil
}
