package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/apperrors"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/models"
	"github.com/SCtryline/TTB-Enirchment-sub001/pkg/repositories"
)

// FeedService loads the importer and producer reference registries from their
// upstream feeds. Rows without a permit number are dropped by the store.
type FeedService interface {
	// LoadImporters upserts an importer feed batch and returns the number of
	// rows written.
	LoadImporters(ctx context.Context, records []*models.ImporterRecord) (int, error)

	// LoadProducers upserts a producer feed batch into the given registry and
	// returns the number of rows written.
	LoadProducers(ctx context.Context, registry models.ProducerRegistry, records []*models.ProducerRecord) (int, error)
}

type feedService struct {
	registryRepo repositories.RegistryRepository
	logger       *zap.Logger
}

// NewFeedService creates a new FeedService.
func NewFeedService(registryRepo repositories.RegistryRepository, logger *zap.Logger) FeedService {
	return &feedService{
		registryRepo: registryRepo,
		logger:       logger.Named("feed"),
	}
}

var _ FeedService = (*feedService)(nil)

func (s *feedService) LoadImporters(ctx context.Context, records []*models.ImporterRecord) (int, error) {
	count, err := s.registryRepo.UpsertImporters(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("load importer feed: %w", err)
	}
	s.logger.Info("Loaded importer feed",
		zap.Int("rows", len(records)),
		zap.Int("written", count))
	return count, nil
}

func (s *feedService) LoadProducers(ctx context.Context, registry models.ProducerRegistry, records []*models.ProducerRecord) (int, error) {
	if registry != models.RegistrySpirit && registry != models.RegistryWine {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownRegistry, registry)
	}
	for _, rec := range records {
		rec.Registry = registry
	}
	count, err := s.registryRepo.UpsertProducers(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("load %s producer feed: %w", registry, err)
	}
	s.logger.Info("Loaded producer feed",
		zap.String("registry", string(registry)),
		zap.Int("rows", len(records)),
		zap.Int("written", count))
	return count, nil
}
