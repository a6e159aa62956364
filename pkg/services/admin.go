package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// AdminService exposes the destructive and maintenance operations of the
// registry.
type AdminService interface {
	// ResetRegistry clears the brand and SKU tables entirely.
	ResetRegistry(ctx context.Context) error

	// RepairImporterClassifications folds legacy importer entries whose keys
	// lack the importer marker back into brand_permits. Returns the number of
	// entries moved.
	RepairImporterClassifications(ctx context.Context) (int, error)
}

type adminService struct {
	brandRepo repositories.BrandRepository
	logger    *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(brandRepo repositories.BrandRepository, logger *zap.Logger) AdminService {
	return &adminService{
		brandRepo: brandRepo,
		logger:    logger.Named("admin"),
	}
}

var _ AdminService = (*adminService)(nil)

func (s *adminService) ResetRegistry(ctx context.Context) error {
	s.logger.Warn("Full registry reset requested")
	if err := s.brandRepo.Reset(ctx); err != nil {
		return fmt.Errorf("reset registry: %w", err)
	}
	s.logger.Info("Registry reset complete")
	return nil
}

func (s *adminService) RepairImporterClassifications(ctx context.Context) (int, error) {
	moved, err := s.brandRepo.RepairImporterClassifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("repair importer classifications: %w", err)
	}
	return moved, nil
}
